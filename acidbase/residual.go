// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import "math"

// maxExponent bounds |value| before exponentiation so that 10^value stays finite.
const maxExponent = 300

// load copies x into the state and refreshes the concentrations.
func (st *State) load(x []float64) {
	copy(st.values, x)
	for i, v := range x {
		switch {
		case v > maxExponent:
			st.conc[i], st.slope[i] = math.Pow(10, maxExponent), 0
		case v < -maxExponent:
			st.conc[i], st.slope[i] = math.Pow(10, -maxExponent), 0
		default:
			st.conc[i] = math.Pow(10, v)
			st.slope[i] = math.Ln10 * st.conc[i]
		}
	}
}

// Residual evaluates the M equations at x into f, ordered as
// [equilibria..., conservation groups..., charge].
func (s *System) Residual(st *State, x, f []float64) {
	st.load(x)

	k := 0
	for _, eq := range s.equilibria {
		r := eq.PK
		for j, u := range eq.Unknowns {
			r += eq.Coefficients[j] * st.values[u]
		}
		f[k] = r
		k++
	}

	for _, b := range s.balances {
		r := -b.Total
		for j, u := range b.Unknowns {
			r += b.Coefficients[j] * st.conc[u]
		}
		f[k] = r
		k++
	}

	var q float64
	for i, u := range s.unknowns {
		q += float64(u.Charge) * st.conc[i]
	}
	f[k] = q
}

// Jacobian evaluates ∂f/∂x at x into jac[i + M×j] (column-major M × N).
func (s *System) Jacobian(st *State, x, jac []float64) {
	st.load(x)
	m := s.M()
	clear(jac)

	k := 0
	for _, eq := range s.equilibria {
		for j, u := range eq.Unknowns {
			jac[k+m*u] += eq.Coefficients[j]
		}
		k++
	}

	for _, b := range s.balances {
		for j, u := range b.Unknowns {
			jac[k+m*u] += b.Coefficients[j] * st.slope[u]
		}
		k++
	}

	for i, u := range s.unknowns {
		jac[k+m*i] = float64(u.Charge) * st.slope[i]
	}
}
