// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reaction

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Arrow separates the two sides of an equation.
	Arrow = "<=>"
	// Plus separates terms on one side of an equation.
	Plus = "&"
	// fieldSep separates coefficient, species and charge inside a term.
	fieldSep = "_"
)

// ParseError reports a malformed equation or term.
type ParseError struct {
	Reaction string // reaction id, when known
	Term     string // offending text
	Msg      string
	Err      error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("parse")
	if e.Reaction != "" {
		sb.WriteString(" reaction ")
		sb.WriteString(strconv.Quote(e.Reaction))
	}
	sb.WriteString(": term ")
	sb.WriteString(strconv.Quote(e.Term))
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Term is a single coefficient_species_charge entry of an equation.
// Reactants carry negative coefficients, products positive ones.
type Term struct {
	Coefficient int
	Species     string
	Charge      int
}

// Name returns the unknown name species_charge with the charge in signed form (H_+1, OH_-1, H3PO4_0).
func (t Term) Name() string {
	return UnknownName(t.Species, t.Charge)
}

// UnknownName composes the canonical unknown name of a species and charge.
func UnknownName(species string, charge int) string {
	if charge == 0 {
		return species + fieldSep + "0"
	}
	return fmt.Sprintf("%s%s%+d", species, fieldSep, charge)
}

func (t Term) String() string {
	return strconv.Itoa(t.Coefficient) + fieldSep + t.Name()
}

// ParseTerm parses coefficient_species_charge.
func ParseTerm(s string) (t Term, err error) {
	fields := strings.Split(s, fieldSep)
	if len(fields) != 3 {
		return t, &ParseError{Term: s, Msg: fmt.Sprintf("expect 3 fields separated by %q, got %d", fieldSep, len(fields))}
	}
	if t.Coefficient, err = strconv.Atoi(fields[0]); err != nil {
		return t, &ParseError{Term: s, Msg: "invalid coefficient", Err: err}
	}
	if t.Species = fields[1]; t.Species == "" {
		return t, &ParseError{Term: s, Msg: "empty species"}
	}
	if t.Charge, err = strconv.Atoi(fields[2]); err != nil {
		return t, &ParseError{Term: s, Msg: "invalid charge", Err: err}
	}
	return t, nil
}

// ParseEquation splits an equation on both Arrow and Plus and parses every term in order.
// Both separators are treated alike: the residual of a reaction is one signed linear
// combination, so which side a term sits on is carried by the sign of its coefficient.
func ParseEquation(eq string) ([]Term, error) {
	flat := strings.NewReplacer(Arrow, " ", Plus, " ").Replace(eq)
	fields := strings.Fields(flat)
	if len(fields) == 0 {
		return nil, &ParseError{Term: eq, Msg: "empty equation"}
	}
	terms := make([]Term, 0, len(fields))
	for _, f := range fields {
		t, err := ParseTerm(f)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}
