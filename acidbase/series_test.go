// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotals(t *testing.T) {
	approx := cmpopts.EquateApprox(1e-12, 0)
	if diff := cmp.Diff([]float64{1e-3, 1e-2, 1e-1, 1}, Totals(1e-3, 1, 4, true), approx); diff != "" {
		t.Fatalf("log spacing (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 0.25, 0.5, 0.75, 1}, Totals(0, 1, 5, false), approx); diff != "" {
		t.Fatalf("linear spacing (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{2}, Totals(2, 3, 1, false))
	assert.Nil(t, Totals(2, 3, 0, false))
}

func TestSeries(t *testing.T) {
	sys := build(t, phosphoric(1))
	s := newSolver(t, DefaultConfig())

	totals := []float64{1e-3, 1e-2, 1e-1, 1}
	points, err := s.Series(context.Background(), sys, "PO4", totals, 2)
	require.NoError(t, err)
	require.Len(t, points, len(totals))

	want := []float64{3.0513157, 2.2527011, 1.6326066, phosphoricPH}
	for i, p := range points {
		assert.Equal(t, totals[i], p.Total)
		assert.True(t, p.Converged)
		assert.Positive(t, p.Attempts)
		assert.InDelta(t, want[i], p.PH, 1e-5, "total %g", p.Total)
	}
	// the source system keeps its total
	assert.Equal(t, 1.0, sys.Balances()[0].Total)
}

func TestSeriesErrors(t *testing.T) {
	sys := build(t, phosphoric(1))
	s := newSolver(t, DefaultConfig())

	_, err := s.Series(context.Background(), sys, "Na", []float64{1}, 1)
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "Na", le.Name)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Series(ctx, sys, "PO4", []float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTotal(t *testing.T) {
	sys := build(t, phosphoric(1))

	sub, err := sys.WithTotal("PO4", 0.01)
	require.NoError(t, err)
	assert.Equal(t, 0.01, sub.Balances()[0].Total)
	assert.Equal(t, 1.0, sys.Balances()[0].Total)
	assert.Equal(t, sys.Unknowns(), sub.Unknowns())

	_, err = sys.WithTotal("Na", 1)
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "group", le.What)
}
