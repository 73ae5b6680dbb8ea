// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsolve

import "math"

const (
	zero = 0.0
	one  = 1.0
	eps  = float64(7)/3 - float64(4)/3 - 1.
)

var sqrtEps = math.Sqrt(eps)
var cubeEps = math.Cbrt(eps)

// dnrm2 computes the Euclidean norm of x without destructive underflow or overflow.
func dnrm2(x []float64) float64 {
	switch len(x) {
	case 0:
		return zero
	case 1:
		return math.Abs(x[0])
	}
	scale := zero
	ssq := one
	for _, v := range x {
		if a := math.Abs(v); a > 0 {
			if scale < a {
				s := scale / a
				ssq = 1 + ssq*s*s
				scale = a
			} else {
				s := a / scale
				ssq += s * s
			}
		}
	}
	return scale * math.Sqrt(ssq)
}

// infNorm returns 𝚖𝚊𝚡ᵢ |xᵢ|, or +Inf when any element is not finite.
func infNorm(x []float64) (n float64) {
	for _, v := range x {
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		n = math.Max(n, math.Abs(v))
	}
	return
}

// finite reports whether every element of x is a finite number.
func finite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// dzero fills x with zero.
func dzero(x []float64) {
	for i := range x {
		x[i] = zero
	}
}
