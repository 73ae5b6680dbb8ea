// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import "github.com/curioloop/equilibrium/reaction"

// Unknown is a species whose log10 concentration is solved for.
type Unknown struct {
	Name    string // species_charge, e.g. H2PO4_-1
	Species string
	Charge  int
}

// registry keeps unknowns in discovery order.
type registry struct {
	list  []Unknown
	index map[string]int
}

func newRegistry() *registry {
	return &registry{index: make(map[string]int)}
}

// register adds the unknown named by t unless present and returns its position.
func (r *registry) register(t reaction.Term) int {
	name := t.Name()
	if i, ok := r.index[name]; ok {
		return i
	}
	r.index[name] = len(r.list)
	r.list = append(r.list, Unknown{Name: name, Species: t.Species, Charge: t.Charge})
	return len(r.list) - 1
}

func (r *registry) lookup(name string) (int, error) {
	if i, ok := r.index[name]; ok {
		return i, nil
	}
	return -1, &LookupError{What: "unknown", Name: name}
}
