// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import (
	"strings"

	"github.com/curioloop/equilibrium/reaction"
)

// Balance is a compiled conservation group: Σ coefficient·10^value = Total.
type Balance struct {
	Label        string
	Total        float64
	Unknowns     []int
	Coefficients []float64
}

// multiplicity returns how many times label is contained in the unknown name.
// A label closed by ')' and a digit (PO4 in Ca3(PO4)2_0) counts that digit; otherwise 1.
func multiplicity(name, label string) float64 {
	pos := strings.Index(name, label)
	if pos < 0 {
		return 1
	}
	p := pos + len(label)
	if p+1 < len(name) && name[p] == ')' && '0' <= name[p+1] && name[p+1] <= '9' {
		return float64(name[p+1] - '0')
	}
	return 1
}

// derive builds one Balance per group.
// Without an explicit species list an unknown is a member when the label is a substring of its name.
func derive(groups []reaction.Group, reg *registry) ([]Balance, error) {
	out := make([]Balance, 0, len(groups))
	for _, g := range groups {
		b := Balance{Label: g.Label, Total: g.Total}
		if len(g.Species) > 0 {
			for _, name := range g.Species {
				i, err := reg.lookup(name)
				if err != nil {
					return nil, err
				}
				b.Unknowns = append(b.Unknowns, i)
				b.Coefficients = append(b.Coefficients, multiplicity(name, g.Label))
			}
		} else {
			for i, u := range reg.list {
				if strings.Contains(u.Name, g.Label) {
					b.Unknowns = append(b.Unknowns, i)
					b.Coefficients = append(b.Coefficients, multiplicity(u.Name, g.Label))
				}
			}
		}
		out = append(out, b)
	}
	return out, nil
}
