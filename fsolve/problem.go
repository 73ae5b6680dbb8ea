// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fsolve finds a root of a system of nonlinear equations 𝐅(𝐱) = 0, 𝐅 : ℝⁿ → ℝᵐ.
//
// The solver is a Gauss-Newton iteration safeguarded by a trust radius.
// At every iterate the rows of the Jacobian are equilibrated, the linearized problem
// ‖𝐒𝐉𝐝 + 𝐒𝐅‖₂ is solved by Householder least squares with column pivoting
// (which tolerates m ≠ n and rank deficiency), and the step is clipped to the radius.
// The radius grows or shrinks with the ratio of actual to predicted reduction of ‖𝐒𝐅‖₂.
//
// Because of the row scaling, the residual tolerance is measured in units of the
// largest partial derivative of each equation: for equations that are linear in 𝐱
// this is the residual itself, for exponential terms it is close to a relative error.
package fsolve

import (
	"errors"
	"math"
	"slices"

	"go.uber.org/zap"
)

// Function evaluates the m-vector 𝐟 = 𝐅(𝐱) for the n-vector 𝐱.
type Function func(x, f []float64)

// Jacobian evaluates ∂𝐅ᵢ/∂𝐱ⱼ into jac[i + m×j] (column-major m × n).
type Jacobian func(x, jac []float64)

// Termination specifies the stopping criteria for the root finder.
type Termination struct {
	// The iteration stop when the number of iterations exceeds limit.
	MaxIterations int
	// The iteration stop when the number of function evaluations exceeds limit.
	// Zero selects 200×(n+1).
	MaxEvaluations int
	// Converged when the equilibrated residual satisfies ‖𝐒𝐅(𝐱)‖∞ ≤ 𝚏𝚝𝚘𝚕.
	FTolerance float64
	// Converged when the accepted step satisfies ‖𝐝‖∞ ≤ 𝚡𝚝𝚘𝚕·(𝚡𝚝𝚘𝚕 + ‖𝐱‖∞)
	// and the equilibrated residual does not exceed Accuracy.
	XTolerance float64
	Accuracy   float64
}

// DefaultTermination returns the stopping criteria used when none are given.
func DefaultTermination() Termination {
	return Termination{
		MaxIterations: 200,
		FTolerance:    1e-10,
		XTolerance:    1.49012e-08,
		Accuracy:      1e-6,
	}
}

// Problem specifies the system of equations for the root finder.
type Problem struct {
	N, M     int         // The number of unknowns and equations
	Object   Function    // Residual function 𝐅(𝐱)
	Jacobian Jacobian    // Optional analytic Jacobian
	Method   Method      // Finite difference scheme used when Jacobian is nil
	Stop     Termination // Stop condition
	// Initial trust radius is Factor×𝚖𝚊𝚡(1,‖𝐱₀‖∞). Zero selects 100.
	Factor float64
	// Diagonal elements of the triangular factor below RankTolerance are treated as zero.
	// Zero selects 1e-12; the rows are equilibrated so the tolerance is relative.
	RankTolerance float64
}

// New creates a new root finder for given problem.
func (p *Problem) New(logger *zap.Logger) (solver *Solver, err error) {

	if logger == nil {
		logger = zap.NewNop()
	}

	n, m, stop := p.N, p.M, p.Stop
	factor, tau := p.Factor, p.RankTolerance

	if stop.MaxEvaluations == 0 {
		stop.MaxEvaluations = 200 * (n + 1)
	}
	if factor == zero {
		factor = 100
	}
	if tau == zero {
		tau = 1e-12
	}

	switch {
	case n <= 0 || m <= 0:
		err = errors.New("problem dimension must greater than 0")
	case p.Object == nil:
		err = errors.New("object function is required")
	case p.Jacobian == nil && p.Method != Forward && p.Method != Central:
		err = errors.New("unknown method")
	case stop.MaxIterations <= 0:
		err = errors.New("max iteration must greater than 1")
	case stop.MaxEvaluations < 0:
		err = errors.New("max evaluation must not less than 0")
	case math.IsNaN(stop.FTolerance) || stop.FTolerance < zero:
		err = errors.New("residual tolerance must not less than 0")
	case math.IsNaN(stop.XTolerance) || stop.XTolerance < zero:
		err = errors.New("step tolerance must not less than 0")
	case math.IsNaN(stop.Accuracy) || stop.Accuracy < stop.FTolerance:
		err = errors.New("accuracy must not less than residual tolerance")
	case !(factor > zero) || math.IsInf(factor, 0):
		err = errors.New("radius factor must greater than 0")
	case !(tau > zero):
		err = errors.New("rank tolerance must greater than 0")
	}

	if err != nil {
		return
	}

	solver = &Solver{
		iterSpec{
			n: n, m: m,
			object:   p.Object,
			jacobian: p.Jacobian,
			method:   p.Method,
			stop:     stop,
			factor:   factor,
			tau:      tau,
			logger:   logger,
		},
	}
	return
}

type iterSpec struct {
	n, m     int
	object   Function
	jacobian Jacobian
	method   Method
	stop     Termination
	factor   float64
	tau      float64
	logger   *zap.Logger
}

// Solver implemented using the trust radius Gauss-Newton algorithm.
type Solver struct {
	iterSpec
}

// Workspace contains the state and context of the root finding process.
// Given n unknowns and m equations the workspace is approximately float64[3×mn + 6×m + 5×n].
type Workspace struct {
	n, m int
	iterCtx
}

type iterCtx struct {
	iter, eval int
	radius     float64
	fNorm      float64
	rank       int
	jac        []float64 // m × n column-major Jacobian
	lsq        []float64 // m × n equilibrated copy destroyed by lstsq
	scale      []float64 // m row scales
	fs         []float64 // m scaled residual
	ft         []float64 // m trial residual
	res        []float64 // m model residual
	xt         []float64 // n trial point
	d          []float64 // 𝚖𝚊𝚡(m,n) Gauss-Newton step
	h, g       []float64
	ip         []int
	diff       diffJac
}

// Result contains the final result of the root finding process.
type Result struct {
	OK      bool      // Whether the iteration was converged.
	X, F    []float64 // Final location and residual.
	Norm    float64   // Final equilibrated residual ‖𝐒𝐅(𝐱)‖∞.
	Summary           // Root finding summary.
}

// Summary contains a summary of the root finding process.
type Summary struct {
	Status  Status // Final task status.
	NumIter int    // Number of iterations performed.
	NumEval int    // Number of function evaluations performed.
	Rank    int    // Pseudo-rank of the last linearized system.
}

// Init allocate the workspace for the solver.
// To avoid race conditions, separate workspaces need to be created for each goroutine.
// But multiple workspaces could share one solver.
func (s *Solver) Init() *Workspace {
	n, m := s.n, s.m
	w := &Workspace{n: n, m: m}
	w.iterCtx = iterCtx{
		jac:   make([]float64, m*n),
		lsq:   make([]float64, m*n),
		scale: make([]float64, m),
		fs:    make([]float64, m),
		ft:    make([]float64, m),
		res:   make([]float64, m),
		xt:    make([]float64, n),
		d:     make([]float64, max(m, n)),
		h:     make([]float64, n),
		g:     make([]float64, min(m, n)),
		ip:    make([]int, min(m, n)),
	}
	if s.jacobian == nil {
		w.diff = newDiffJac(n, m, s.method)
	}
	return w
}

// Fit runs the root finding process using the initial guess x and workspace w.
func (s *Solver) Fit(x []float64, w *Workspace) *Result {

	if len(x) != s.n {
		panic("initial x dimension does not match problem")
	}

	if w.n != s.n || w.m != s.m {
		panic("workspace dimension does not match problem")
	}

	loc := iterLoc{
		x: slices.Clone(x),
		f: make([]float64, s.m),
	}

	driver := iterDriver{
		solver:    s,
		workspace: w,
		location:  &loc,
	}

	res := driver.mainLoop()
	return &Result{
		OK:   res.Converged(),
		X:    loc.x,
		F:    loc.f,
		Norm: w.fNorm,
		Summary: Summary{
			Status:  res,
			NumIter: w.iter,
			NumEval: w.eval,
			Rank:    w.rank,
		},
	}
}

type iterLoc struct {
	x, f []float64
}
