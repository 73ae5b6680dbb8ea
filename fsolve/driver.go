// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsolve

import (
	"math"

	"go.uber.org/zap"
)

const (
	// step acceptance threshold on the reduction ratio.
	ratioAccept = 1e-4
	// radius shrinks below this ratio.
	ratioPoor = 0.25
	// radius expands above this ratio.
	ratioGood = 0.75
)

// iterDriver is the main driver for iterations in the root finding process,
// responsible for managing the flow between evaluation, linearization and step control.
type iterDriver struct {
	solver    *Solver
	workspace *Workspace
	location  *iterLoc
}

// evaluate computes f = 𝐅(x) and guards the evaluation budget and callback panics.
func (d *iterDriver) evaluate(x, f []float64) (task Status) {
	s, w := d.solver, d.workspace
	if w.eval >= s.stop.MaxEvaluations {
		return OverEvalLimit
	}
	task = iterLoop
	func() {
		defer func() {
			if r := recover(); r != nil {
				task = HaltEvalPanic
			}
		}()
		s.object(x, f)
		w.eval++
	}()
	return
}

// linearize computes the Jacobian at the current location and equilibrates the system.
// Row i is divided by 𝚖𝚊𝚡ⱼ|𝐉ᵢⱼ| so that every equation has unit sensitivity.
func (d *iterDriver) linearize() (task Status) {
	s, w, loc := d.solver, d.workspace, d.location
	n, m := s.n, s.m

	task = iterLoop
	if s.jacobian != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					task = HaltEvalPanic
				}
			}()
			s.jacobian(loc.x, w.jac)
		}()
	} else {
		if w.eval+w.diff.evals() > s.stop.MaxEvaluations {
			return OverEvalLimit
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					task = HaltEvalPanic
				}
			}()
			w.diff.estimate(s.object, loc.x, loc.f, w.jac)
			w.eval += w.diff.evals()
		}()
	}
	if task != iterLoop {
		return
	}

	for i := 0; i < m; i++ {
		big := zero
		for j := 0; j < n; j++ {
			big = math.Max(big, math.Abs(w.jac[i+m*j]))
		}
		if big == zero || math.IsInf(big, 0) || math.IsNaN(big) {
			big = one
		}
		w.scale[i] = one / big
		w.fs[i] = loc.f[i] * w.scale[i]
	}
	w.fNorm = infNorm(w.fs)
	return
}

// checkConvergence checks the residual criterion, and the step criterion when the
// previous accepted step was small.
func (d *iterDriver) checkConvergence(small bool) Status {
	s, w := d.solver, d.workspace
	switch {
	case w.fNorm <= s.stop.FTolerance:
		return ConvResidual
	case small && w.fNorm <= s.stop.Accuracy:
		return ConvStep
	case small:
		return NoProgress
	}
	return iterLoop
}

// gaussNewton solves ‖𝐒𝐉𝐝 + 𝐒𝐅‖₂ → 𝚖𝚒𝚗 for the step d and returns ‖𝐝‖∞.
func (d *iterDriver) gaussNewton() float64 {
	s, w := d.solver, d.workspace
	n, m := s.n, s.m
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			w.lsq[i+m*j] = w.jac[i+m*j] * w.scale[i]
		}
	}
	dzero(w.d)
	for i := 0; i < m; i++ {
		w.d[i] = -w.fs[i]
	}
	w.rank, _ = lstsq(w.lsq, m, m, n, w.d, s.tau, w.h, w.g, w.ip)
	return infNorm(w.d[:n])
}

// predict returns the relative reduction 1 - (‖𝐒𝐅 + t·𝐒𝐉𝐝‖/‖𝐒𝐅‖)² expected from the linear model.
func (d *iterDriver) predict(t, fsNorm float64) float64 {
	s, w := d.solver, d.workspace
	n, m := s.n, s.m
	copy(w.res, w.fs)
	for j := 0; j < n; j++ {
		dj := t * w.d[j]
		if dj == zero {
			continue
		}
		for i := 0; i < m; i++ {
			w.res[i] += w.scale[i] * w.jac[i+m*j] * dj
		}
	}
	r := dnrm2(w.res) / fsNorm
	return one - r*r
}

// actual returns the relative reduction 1 - (‖𝐒𝐅(𝐱ₜ)‖/‖𝐒𝐅‖)² of the trial residual in w.ft.
// A non-finite trial residual counts as an increase.
func (d *iterDriver) actual(fsNorm float64) float64 {
	w := d.workspace
	for i, v := range w.ft {
		w.res[i] = v * w.scale[i]
	}
	if !finite(w.res) {
		return -one
	}
	r := dnrm2(w.res) / fsNorm
	return one - r*r
}

// searchStep clips the Gauss-Newton step to the trust radius until a trial point is accepted.
// On acceptance the location is updated and small reports whether the step was negligible.
func (d *iterDriver) searchStep(dNorm float64) (task Status, small bool) {
	s, w, loc := d.solver, d.workspace, d.location
	n := s.n
	xtol := s.stop.XTolerance

	fsNorm := dnrm2(w.fs)
	for {
		t := math.Min(one, w.radius/dNorm)
		pred := d.predict(t, fsNorm)
		if !(pred > zero) {
			return NoProgress, false
		}

		for j := 0; j < n; j++ {
			w.xt[j] = loc.x[j] + t*w.d[j]
		}
		if task = d.evaluate(w.xt, w.ft); task != iterLoop {
			return
		}

		ratio := d.actual(fsNorm) / pred
		step := t * dNorm
		if ratio < ratioPoor {
			w.radius = ratioPoor * step
		} else if ratio > ratioGood {
			w.radius = math.Max(w.radius, 2*step)
		}

		if ce := s.logger.Check(zap.DebugLevel, "trial step"); ce != nil {
			ce.Write(
				zap.Int("iter", w.iter),
				zap.Float64("step", step),
				zap.Float64("ratio", ratio),
				zap.Float64("radius", w.radius),
			)
		}

		if ratio > ratioAccept {
			copy(loc.x, w.xt)
			copy(loc.f, w.ft)
			return iterLoop, step <= xtol*(xtol+infNorm(loc.x))
		}
		if w.radius <= xtol*(xtol+infNorm(loc.x)) {
			return NoProgress, false
		}
	}
}

// mainLoop is the main execution loop of the iteration process, alternating
// linearization, convergence checks and trust radius step search.
func (d *iterDriver) mainLoop() (task Status) {

	s, w, loc := d.solver, d.workspace, d.location
	log := s.logger

	w.iter, w.eval, w.rank = 0, 0, 0
	w.fNorm = math.Inf(1)
	w.radius = s.factor * math.Max(one, infNorm(loc.x))

	defer func() {
		if ce := log.Check(zap.DebugLevel, "root finding finished"); ce != nil {
			ce.Write(
				zap.Stringer("status", task),
				zap.Int("iterations", w.iter),
				zap.Int("evaluations", w.eval),
				zap.Float64("residual", w.fNorm),
			)
		}
	}()

	if task = d.evaluate(loc.x, loc.f); task != iterLoop {
		return
	}
	if !finite(loc.f) {
		return NotFinite
	}

	small := false
	for task == iterLoop {

		if task = d.linearize(); task != iterLoop {
			break
		}
		if task = d.checkConvergence(small); task != iterLoop {
			break
		}

		w.iter++
		if w.iter > s.stop.MaxIterations {
			w.iter--
			task = OverIterLimit
			break
		}

		dNorm := d.gaussNewton()
		if ce := log.Check(zap.DebugLevel, "iteration"); ce != nil {
			ce.Write(
				zap.Int("iter", w.iter),
				zap.Int("evals", w.eval),
				zap.Float64("residual", w.fNorm),
				zap.Float64("step", dNorm),
				zap.Int("rank", w.rank),
			)
		}
		if !(dNorm > zero) || math.IsInf(dNorm, 0) {
			task = NoProgress
			break
		}

		task, small = d.searchStep(dNorm)
	}
	return
}
