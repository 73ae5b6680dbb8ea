// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResidualLayout(t *testing.T) {
	sys := build(t, phosphoric(1))
	x := []float64{-1, -13, -0.5, -1, -7, -18}
	f := make([]float64, sys.M())
	sys.Residual(sys.NewState(), x, f)

	p := math.Pow
	want := []float64{
		14 - 1 - 13,
		2.15 + 0.5 - 1 - 1,
		7.20 + 1 - 1 - 7,
		12.35 + 7 - 1 - 18,
		p(10, -0.5) + p(10, -1) + p(10, -7) + p(10, -18) - 1,
		p(10, -1) - p(10, -13) - p(10, -1) - 2*p(10, -7) - 3*p(10, -18),
	}
	if diff := cmp.Diff(want, f, cmpopts.EquateApprox(1e-12, 1e-15)); diff != "" {
		t.Fatalf("residual mismatch (-want +got):\n%s", diff)
	}
}

func TestResidualOverflow(t *testing.T) {
	sys := build(t, phosphoric(1))
	f := make([]float64, sys.M())
	jac := make([]float64, sys.M()*sys.N())
	st := sys.NewState()

	for _, v := range []float64{-20, -400, 350, 1e6} {
		x := []float64{v, v, v, v, v, v}
		sys.Residual(st, x, f)
		for i, r := range f {
			assert.False(t, math.IsInf(r, 0) || math.IsNaN(r), "f[%d] = %v at %v", i, r, v)
		}
		sys.Jacobian(st, x, jac)
		for i, r := range jac {
			assert.False(t, math.IsInf(r, 0) || math.IsNaN(r), "jac[%d] = %v at %v", i, r, v)
		}
	}

	// outside the clamp the concentration rows lose their slope
	sys.Jacobian(st, []float64{400, 400, 400, 400, 400, 400}, jac)
	m := sys.M()
	for j := 0; j < sys.N(); j++ {
		assert.Zero(t, jac[4+m*j])
		assert.Zero(t, jac[5+m*j])
	}
}

func TestJacobianMatchesDifferences(t *testing.T) {
	// underdetermined, so m != n exercises the rectangular layout
	sys, err := Build(apatite(), BuildOptions{})
	require.NoError(t, err)
	n, m := sys.N(), sys.M()
	st := sys.NewState()

	x := make([]float64, n)
	for i := range x {
		x[i] = -0.5 - 0.75*float64(i)
	}
	jac := make([]float64, m*n)
	sys.Jacobian(st, x, jac)

	num := make([]float64, m*n)
	fp, fm := make([]float64, m), make([]float64, m)
	const h = 1e-6
	for j := 0; j < n; j++ {
		xj := x[j]
		x[j] = xj + h
		sys.Residual(st, x, fp)
		x[j] = xj - h
		sys.Residual(st, x, fm)
		x[j] = xj
		for i := 0; i < m; i++ {
			num[i+m*j] = (fp[i] - fm[i]) / (2 * h)
		}
	}

	if diff := cmp.Diff(num, jac, cmpopts.EquateApprox(1e-6, 1e-9)); diff != "" {
		t.Fatalf("jacobian mismatch (-numeric +analytic):\n%s", diff)
	}
}

func TestStateIsIndependent(t *testing.T) {
	sys := build(t, water())
	a, b := sys.NewState(), sys.NewState()
	f := make([]float64, sys.M())
	sys.Residual(a, []float64{-3, -11}, f)
	sys.Residual(b, []float64{-7, -7}, f)
	assert.Equal(t, []float64{-3, -11}, a.Values())
	assert.Equal(t, []float64{-7, -7}, b.Values())
	assert.Equal(t, []float64{0, 0}, f)
}
