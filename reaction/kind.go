// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reaction

import "strings"

// Solvent is the bulk solvent label; it is never an unknown.
const Solvent = "H2O"

// Kind tags a reaction with the rule deciding which of its terms become unknowns.
// Tags other than the named kinds are kept as written.
type Kind string

const (
	// Unset is the zero Kind. Validate rejects it.
	Unset Kind = ""
	// WaterDissociation reactions omit their leading (solvent) term.
	WaterDissociation Kind = "WD"
	// AcidDissociation reactions keep every term, the undissociated acid included.
	AcidDissociation Kind = "AD"
)

var aliases = map[string]Kind{
	"water-dissociation": WaterDissociation,
	"acid-dissociation":  AcidDissociation,
}

func (k Kind) String() string {
	if k == Unset {
		return "unset"
	}
	return string(k)
}

// ParseKind maps the long forms onto the short tags and keeps any other
// non-blank tag verbatim.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unset, &ParseError{Term: s, Msg: "blank reaction kind"}
	}
	if k, ok := aliases[s]; ok {
		return k, nil
	}
	return Kind(s), nil
}

// exclusionPolicy reports whether the term at index must be left out of the unknowns.
type exclusionPolicy func(index int, t Term) bool

func skipLeading(index int, _ Term) bool { return index == 0 }

var policies = map[Kind]exclusionPolicy{
	WaterDissociation: skipLeading,
	AcidDissociation:  func(int, Term) bool { return false },
}

// Excludes applies the kind's exclusion policy followed by the solvent rule.
// Kinds without a policy of their own skip the leading term.
func (k Kind) Excludes(index int, t Term) bool {
	p, ok := policies[k]
	if !ok {
		p = skipLeading
	}
	if p(index, t) {
		return true
	}
	return t.Species == Solvent
}
