// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import (
	"context"
	"errors"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Point is one solve of a concentration series.
type Point struct {
	Total     float64
	PH        float64
	Converged bool
	Factor    float64
	Attempts  int
}

// Series solves sys adaptively once per total of group label, with at most workers
// solves in flight (workers ≤ 0 selects GOMAXPROCS). Points are returned in input order.
// A point that does not converge keeps the pH of its last attempt.
func (s *Solver) Series(ctx context.Context, sys *System, label string, totals []float64, workers int) ([]Point, error) {
	if _, err := sys.group(label); err != nil {
		return nil, err
	}
	if _, err := sys.Index(Proton); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	points := make([]Point, len(totals))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, total := range totals {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sub, err := sys.WithTotal(label, total)
			if err != nil {
				return err
			}
			sol, err := s.SolveAdaptive(sub)
			var ce *ConvergenceError
			if err != nil && !errors.As(err, &ce) {
				return err
			}
			ph, err := sol.PH()
			if err != nil {
				return err
			}
			points[i] = Point{
				Total:     total,
				PH:        ph,
				Converged: sol.Converged,
				Factor:    sol.Factor,
				Attempts:  sol.Attempts,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// Totals returns n totals evenly spaced from lo to hi, geometrically when log is set.
func Totals(lo, hi float64, n int, log bool) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(n-1)
		if log {
			out[i] = math.Pow(10, math.Log10(lo)+t*(math.Log10(hi)-math.Log10(lo)))
		} else {
			out[i] = lo + t*(hi-lo)
		}
	}
	return out
}
