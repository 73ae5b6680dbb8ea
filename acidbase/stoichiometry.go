// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import "github.com/curioloop/equilibrium/reaction"

// Equilibrium is a compiled reaction: pK + Σ coefficient·log10[unknown] = 0.
type Equilibrium struct {
	ID           string
	PK           float64
	Kind         reaction.Kind
	Unknowns     []int // registry positions
	Coefficients []float64
}

// compile parses every reaction, applies the exclusion policy of its kind
// and registers the surviving terms as unknowns.
func compile(reactions []reaction.Reaction, reg *registry) ([]Equilibrium, error) {
	eqs := make([]Equilibrium, 0, len(reactions))
	for i := range reactions {
		r := &reactions[i]
		terms, err := r.Terms()
		if err != nil {
			return nil, err
		}
		eq := Equilibrium{ID: r.ID, PK: r.PK, Kind: r.Kind}
		for j, t := range terms {
			if r.Kind.Excludes(j, t) {
				continue
			}
			eq.Unknowns = append(eq.Unknowns, reg.register(t))
			eq.Coefficients = append(eq.Coefficients, float64(t.Coefficient))
		}
		eqs = append(eqs, eq)
	}
	return eqs, nil
}
