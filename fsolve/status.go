// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsolve

// Status is the final task state of a root finding run.
type Status int

const (
	iterLoop Status = iota
	// ConvResidual the scaled residual satisfies ‖𝐒𝐅(𝐱)‖∞ ≤ 𝚏𝚝𝚘𝚕.
	ConvResidual
	// ConvStep the relative step satisfies ‖𝐝‖∞ ≤ 𝚡𝚝𝚘𝚕·(𝚡𝚝𝚘𝚕 + ‖𝐱‖∞) with an acceptable residual.
	ConvStep
	// NoProgress the trust radius collapsed or the model predicts no further reduction.
	NoProgress
	// NotFinite the residual at the initial guess contains NaN or Inf.
	NotFinite
	// HaltEvalPanic the residual or Jacobian callback panicked.
	HaltEvalPanic
	// OverIterLimit the number of iterations exceeds limit.
	OverIterLimit
	// OverEvalLimit the number of function evaluations exceeds limit.
	OverEvalLimit
)

// Converged reports whether the status is one of the convergence states.
func (s Status) Converged() bool {
	return s == ConvResidual || s == ConvStep
}

func (s Status) String() string {
	switch s {
	case ConvResidual:
		return "CONVERGENCE: SCALED_RESIDUAL_<=_FTOL"
	case ConvStep:
		return "CONVERGENCE: REL_STEP_<=_XTOL"
	case NoProgress:
		return "WARNING: THE ITERATION IS NOT MAKING GOOD PROGRESS"
	case NotFinite:
		return "ABNORMAL: NON-FINITE RESIDUAL AT INITIAL GUESS"
	case HaltEvalPanic:
		return "STOP: CALLBACK REQUESTED HALT"
	case OverIterLimit:
		return "STOP: TOTAL NO. of ITERATIONS REACHED LIMIT"
	case OverEvalLimit:
		return "STOP: TOTAL NO. of f EVALUATIONS EXCEEDS LIMIT"
	default:
		return "UNKNOWN TASK"
	}
}
