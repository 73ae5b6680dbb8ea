// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsolve

import "math"

// house constructs the Householder transformation 𝐐 = 𝐈 - b⁻¹𝐮𝐮ᵀ (b = s·uₚ) that maps
// the m-vector v onto a multiple of the p-th unit vector, zeroing elements l through m-1.
//
// Elements of v are stored with stride inc. On return v[p] holds s and the elements
// l through m-1 hold the remaining components of 𝐮; uₚ is returned separately.
// An identity transformation (uₚ = 0) is produced when l ≥ m or v is zero.
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974.
// Chapters 10 (H1).
func house(p, l, m int, v []float64, inc int) (up float64) {

	if p < 0 || p >= l || l >= m {
		return
	}

	vp := p * inc
	vmax := math.Abs(v[vp])
	for i := l; i < m; i++ {
		vmax = math.Max(vmax, math.Abs(v[i*inc]))
	}
	if vmax <= zero {
		return
	}

	// Compute (vₚ² + ∑vᵢ²)¹ᐟ² with normalized v to avoid overflow.
	inv := one / vmax
	sum := (v[vp] * inv) * (v[vp] * inv)
	for i := l; i < m; i++ {
		t := v[i*inc] * inv
		sum += t * t
	}

	s := vmax * math.Sqrt(sum)
	if v[vp] > zero {
		s = -s
	}

	up = v[vp] - s
	v[vp] = s
	return
}

// reflect applies the transformation built by house to ncv vectors stored in c.
// Element i of vector j lives at c[j×icv + i×ice].
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974.
// Chapters 10 (H2).
func reflect(p, l, m int, u []float64, iue int, up float64, c []float64, ice, icv, ncv int) {

	if p < 0 || p >= l || l >= m || ncv <= 0 {
		return
	}

	b := u[p*iue] * up
	if b >= zero {
		return
	}
	b = one / b

	for j := 0; j < ncv; j++ {
		cv := c[j*icv:]
		// Compute b⁻¹(𝐮ᵀ𝐜)
		sm := cv[p*ice] * up
		for i := l; i < m; i++ {
			sm += cv[i*ice] * u[i*iue]
		}
		if sm == zero {
			continue
		}
		sm *= b
		cv[p*ice] += sm * up
		for i := l; i < m; i++ {
			cv[i*ice] += sm * u[i*iue]
		}
	}
}

// lstsq computes the minimum length solution of the linear least squares problem 𝐀𝐱 ≅ 𝐛
// by Householder forward triangulation with column interchanges.
//
// 𝐀 is an m × n matrix stored column-major with leading dimension lda; either m ≥ n or
// m < n is permitted and 𝐀 may be rank deficient. Diagonal elements of the triangular
// factor not exceeding tau in magnitude are treated as zero, which determines the
// pseudo-rank returned in k.
//
// On input b holds the m-vector 𝐛 and must have room for 𝚖𝚊𝚡(m,n) elements.
// On return b[:n] holds the solution 𝐱 and rnorm the norm of the residual ‖𝐀𝐱 - 𝐛‖.
// The contents of a are destroyed.
//
// Work arrays: h needs n elements, g and ip need 𝚖𝚒𝚗(m,n).
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974.
// Chapters 14, Algorithm 14.9 (HFTI).
func lstsq(a []float64, lda, m, n int, b []float64, tau float64, h, g []float64, ip []int) (k int, rnorm float64) {

	const factor = 0.001

	diag := min(m, n)
	if diag <= 0 {
		return
	}

	if len(h) < n || len(g) < diag || len(ip) < diag || len(b) < max(m, n) || len(a) < lda*n {
		panic("bound check error")
	}

	hmax := zero
	for j := 0; j < diag; j++ {
		// Downdate the squared column lengths and find the longest column.
		lmax := j
		if j > 0 {
			v := math.Inf(-1)
			for l := j; l < n; l++ {
				t := a[(j-1)+lda*l]
				if h[l] -= t * t; h[l] > v {
					lmax, v = l, h[l]
				}
			}
		}
		// Recompute the lengths from scratch when cancellation makes them unreliable.
		if j == 0 || factor*h[lmax] < hmax*eps {
			v := math.Inf(-1)
			for l := j; l < n; l++ {
				sm := zero
				for _, t := range a[j+lda*l : m+lda*l] {
					sm += t * t
				}
				if h[l] = sm; h[l] > v {
					lmax, v = l, h[l]
				}
			}
			hmax = h[lmax]
		}

		// Column interchange 𝐏ⱼ = (j, lmax).
		ip[j] = lmax
		if lmax != j {
			c1, c2 := a[lda*j:lda*j+m], a[lda*lmax:lda*lmax+m]
			for i := range c1 {
				c1[i], c2[i] = c2[i], c1[i]
			}
			h[lmax] = h[j]
		}

		// 𝐑 = 𝐐𝐀𝐏 and 𝐜 = 𝐐𝐛
		h[j] = house(j, j+1, m, a[lda*j:], 1)
		if j+1 < n {
			reflect(j, j+1, m, a[lda*j:], 1, h[j], a[lda*(j+1):], 1, lda, n-j-1)
		}
		reflect(j, j+1, m, a[lda*j:], 1, h[j], b, 1, 0, 1)
	}

	// Pseudo-rank: the number of leading diagonal elements of 𝐑 exceeding tau.
	k = diag
	for j := 0; j < diag; j++ {
		if math.Abs(a[j+lda*j]) <= tau {
			k = j
			break
		}
	}

	if k < m {
		rnorm = dnrm2(b[k:m])
	}

	if k == 0 {
		dzero(b[:n])
		return
	}

	// Forward triangulation [𝐑₁₁:𝐑₁₂]𝐊 = [𝐖:೦] when rank deficient.
	if k < n {
		for i := k - 1; i >= 0; i-- {
			g[i] = house(i, k, n, a[i:], lda)
			reflect(i, k, n, a[i:], lda, g[i], a, lda, 1, i)
		}
	}

	// Solve the k × k triangular system 𝐖𝐲₁ = 𝐜₁.
	for i := k - 1; i >= 0; i-- {
		sm := zero
		for j := i + 1; j < k; j++ {
			sm += a[i+lda*j] * b[j]
		}
		b[i] = (b[i] - sm) / a[i+lda*i]
	}

	// 𝐱 = 𝐏𝐊[𝐲₁ ೦]ᵀ
	if k < n {
		dzero(b[k:n])
		for i := 0; i < k; i++ {
			reflect(i, k, n, a[i:], lda, g[i], b, 1, 0, 1)
		}
	}
	for j := diag - 1; j >= 0; j-- {
		if l := ip[j]; l != j {
			b[l], b[j] = b[j], b[l]
		}
	}
	return
}
