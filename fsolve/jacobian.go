// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsolve

import (
	"errors"
	"math"
)

// Method selects the finite difference scheme used when no Jacobian is supplied.
type Method int

const (
	// Forward use the first order accuracy forward difference (n evaluations).
	Forward Method = iota
	// Central use the second order accuracy central difference (2n evaluations).
	Central
)

func (m Method) String() string {
	switch m {
	case Forward:
		return "forward"
	case Central:
		return "central"
	default:
		return "unknown"
	}
}

// ParseMethod maps a textual scheme name onto a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "forward", "":
		return Forward, nil
	case "central":
		return Central, nil
	}
	return Forward, errors.New("unknown finite difference method: " + s)
}

// diffJac estimates the m × n Jacobian of fun by finite differences.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
//   - https://github.com/scipy/scipy/blob/main/scipy/optimize/_numdiff.py
type diffJac struct {
	n, m   int
	method Method
	f1, f2 []float64
}

func newDiffJac(n, m int, method Method) diffJac {
	return diffJac{
		n: n, m: m,
		method: method,
		f1:     make([]float64, m),
		f2:     make([]float64, m),
	}
}

// evals reports the number of function evaluations a single estimate costs.
func (d *diffJac) evals() int {
	if d.method == Central {
		return 2 * d.n
	}
	return d.n
}

// step computes the absolute step h = 𝚜𝚒𝚐𝚗(x)·ε·𝚖𝚊𝚡(1,|x|) rounded to a representable increment.
func (d *diffJac) step(x float64) float64 {
	e := sqrtEps
	if d.method == Central {
		e = cubeEps
	}
	h := math.Copysign(e, x) * math.Max(one, math.Abs(x))
	return (x + h) - x
}

// estimate writes ∂fᵢ/∂xⱼ into jac[i + m×j]. f0 must hold fun(x).
// x is perturbed in place and restored before return.
func (d *diffJac) estimate(fun Function, x, f0, jac []float64) {

	n, m := d.n, d.m
	if len(x) != n || len(f0) != m || len(jac) < n*m {
		panic("bound check error")
	}

	f1, f2 := d.f1, d.f2
	for j := 0; j < n; j++ {
		xj := x[j]
		h := d.step(xj)
		col := jac[m*j : m*(j+1)]
		switch d.method {
		case Central:
			x[j] = xj - h
			fun(x, f1)
			x[j] = xj + h
			fun(x, f2)
			r := one / (2 * h)
			for i := range col {
				col[i] = (f2[i] - f1[i]) * r
			}
		default:
			x[j] = xj + h
			fun(x, f1)
			r := one / h
			for i := range col {
				col[i] = (f1[i] - f0[i]) * r
			}
		}
		x[j] = xj
	}
}
