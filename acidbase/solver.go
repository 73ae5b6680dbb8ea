// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/curioloop/equilibrium/fsolve"
	"go.uber.org/zap"
)

// JacobianMode selects how the root finder obtains derivatives.
type JacobianMode int

const (
	// Analytic uses System.Jacobian.
	Analytic JacobianMode = iota
	// Forward uses forward differences of System.Residual.
	Forward
	// Central uses central differences of System.Residual.
	Central
)

func (m JacobianMode) String() string {
	switch m {
	case Analytic:
		return "analytic"
	case Forward:
		return "forward"
	case Central:
		return "central"
	default:
		return "unknown"
	}
}

// ParseJacobianMode accepts analytic (or empty), forward and central.
func ParseJacobianMode(s string) (JacobianMode, error) {
	if s == "" || s == "analytic" {
		return Analytic, nil
	}
	m, err := fsolve.ParseMethod(s)
	if err != nil {
		return Analytic, err
	}
	if m == fsolve.Central {
		return Central, nil
	}
	return Forward, nil
}

// Sweep is the range of uniform initial guesses tried by SolveAdaptive.
// Attempt k starts from Start + k×Step while the factor does not exceed Stop.
type Sweep struct {
	Start, Stop, Step float64
}

// Attempts returns the number of factors in the sweep.
func (s Sweep) Attempts() int {
	return int(math.Floor((s.Stop-s.Start)/s.Step+1e-9)) + 1
}

// Factor returns the k-th factor.
func (s Sweep) Factor(k int) float64 {
	return s.Start + float64(k)*s.Step
}

// Config holds the solver settings.
type Config struct {
	Sweep    Sweep
	Stop     fsolve.Termination
	Jacobian JacobianMode
	// Initial trust radius factor of the root finder, zero selects its default.
	Factor float64
}

// DefaultConfig sweeps the guess from -10 to 20 in steps of 0.5 with an analytic Jacobian.
func DefaultConfig() Config {
	return Config{
		Sweep:    Sweep{Start: -10, Stop: 20, Step: 0.5},
		Stop:     fsolve.DefaultTermination(),
		Jacobian: Analytic,
	}
}

// Mode names the solve entry point in diagnostics and observations.
type Mode string

const (
	Direct   Mode = "direct"
	Adaptive Mode = "adaptive"
)

// Observer receives the outcome of every root finder attempt and of every solve.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveAttempt(d Diagnostics)
	ObserveSolve(mode Mode, d Diagnostics, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(Diagnostics)                    {}
func (nopObserver) ObserveSolve(Mode, Diagnostics, time.Duration) {}

// Diagnostics describe how a solution was obtained.
type Diagnostics struct {
	Status      fsolve.Status
	Message     string
	Converged   bool
	Iterations  int
	Evaluations int
	Norm        float64 // final scaled residual ‖𝐒𝐅(𝐱)‖∞
	Factor      float64 // uniform guess of the winning (or last) attempt
	Attempts    int
}

// Solution is the result of a solve.
type Solution struct {
	X        []float64 // log10 mol/L in registry order
	Residual []float64
	Diagnostics
	sys *System
}

// Value returns the log10 concentration of the named unknown.
func (s *Solution) Value(name string) (float64, error) {
	i, err := s.sys.Index(name)
	if err != nil {
		return math.NaN(), err
	}
	return s.X[i], nil
}

// Concentration returns the concentration of the named unknown in mol/L.
func (s *Solution) Concentration(name string) (float64, error) {
	v, err := s.Value(name)
	if err != nil {
		return math.NaN(), err
	}
	return math.Pow(10, v), nil
}

func (s *Solution) PH() (float64, error) {
	return s.sys.PH(s.X)
}

// Solver drives the root finder over a System.
// It holds no per-solve state and may be shared across goroutines.
type Solver struct {
	cfg      Config
	logger   *zap.Logger
	observer Observer
}

// NewSolver validates cfg. Nil logger and observer are allowed.
func NewSolver(cfg Config, logger *zap.Logger, observer Observer) (*Solver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	sw := cfg.Sweep
	switch {
	case math.IsNaN(sw.Start) || math.IsInf(sw.Start, 0):
		return nil, errors.New("sweep start must be finite")
	case !(sw.Step > 0) || math.IsInf(sw.Step, 0):
		return nil, errors.New("sweep step must greater than 0")
	case !(sw.Stop >= sw.Start) || math.IsInf(sw.Stop, 0):
		return nil, errors.New("sweep stop must not less than start")
	case cfg.Jacobian < Analytic || cfg.Jacobian > Central:
		return nil, errors.New("unknown jacobian mode")
	}
	return &Solver{cfg: cfg, logger: logger, observer: observer}, nil
}

// Config returns the solver configuration.
func (s *Solver) Config() Config { return s.cfg }

// rootFinder binds the system residual to a fresh state.
func (s *Solver) rootFinder(sys *System) (*fsolve.Solver, error) {
	if sys.N() == 0 {
		return nil, errors.New("system has no unknowns")
	}
	st := sys.NewState()
	p := fsolve.Problem{
		N: sys.N(), M: sys.M(),
		Object: func(x, f []float64) { sys.Residual(st, x, f) },
		Stop:   s.cfg.Stop,
		Factor: s.cfg.Factor,
	}
	switch s.cfg.Jacobian {
	case Analytic:
		p.Jacobian = func(x, jac []float64) { sys.Jacobian(st, x, jac) }
	case Central:
		p.Method = fsolve.Central
	}
	rf, err := p.New(s.logger)
	if err != nil {
		return nil, fmt.Errorf("root finder: %w", err)
	}
	return rf, nil
}

func (s *Solver) attempt(sys *System, rf *fsolve.Solver, w *fsolve.Workspace, guess []float64) *Solution {
	r := rf.Fit(guess, w)
	sol := &Solution{
		X:        r.X,
		Residual: r.F,
		Diagnostics: Diagnostics{
			Status:      r.Status,
			Message:     r.Status.String(),
			Converged:   r.OK,
			Iterations:  r.NumIter,
			Evaluations: r.NumEval,
			Norm:        r.Norm,
			Attempts:    1,
		},
		sys: sys,
	}
	s.observer.ObserveAttempt(sol.Diagnostics)
	return sol
}

// SolveWithGuess runs the root finder once from guess.
// Non-convergence is not an error: it is logged at warn level and reported in the diagnostics.
func (s *Solver) SolveWithGuess(sys *System, guess []float64) (*Solution, error) {
	if len(guess) != sys.N() {
		return nil, fmt.Errorf("guess has %d values, system has %d unknowns", len(guess), sys.N())
	}
	start := time.Now()
	rf, err := s.rootFinder(sys)
	if err != nil {
		return nil, err
	}
	sol := s.attempt(sys, rf, rf.Init(), slices.Clone(guess))
	if !sol.Converged {
		s.logger.Warn("root finder did not converge",
			zap.String("message", sol.Message),
			zap.Int("iterations", sol.Iterations),
			zap.Float64("residual", sol.Norm),
		)
	}
	s.observer.ObserveSolve(Direct, sol.Diagnostics, time.Since(start))
	return sol, nil
}

// SolveAdaptive retries the root finder with uniform guesses along the sweep and
// returns the first converged solution. When the sweep is exhausted the error is a
// *ConvergenceError holding the last attempt.
func (s *Solver) SolveAdaptive(sys *System) (*Solution, error) {
	start := time.Now()
	rf, err := s.rootFinder(sys)
	if err != nil {
		return nil, err
	}
	w := rf.Init()
	guess := make([]float64, sys.N())

	sw := s.cfg.Sweep
	total := sw.Attempts()
	var sol *Solution
	for k := 0; k < total; k++ {
		factor := sw.Factor(k)
		for i := range guess {
			guess[i] = factor
		}
		sol = s.attempt(sys, rf, w, guess)
		sol.Factor, sol.Attempts = factor, k+1
		if ce := s.logger.Check(zap.DebugLevel, "adaptive attempt"); ce != nil {
			ce.Write(
				zap.Float64("factor", factor),
				zap.Bool("converged", sol.Converged),
				zap.String("message", sol.Message),
			)
		}
		if sol.Converged {
			break
		}
	}

	s.observer.ObserveSolve(Adaptive, sol.Diagnostics, time.Since(start))
	if !sol.Converged {
		return sol, &ConvergenceError{Attempts: sol.Attempts, Last: sol}
	}
	return sol, nil
}
