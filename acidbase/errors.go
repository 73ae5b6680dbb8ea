// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import "fmt"

// ValidationError reports a system whose unknown count differs from its equation count.
type ValidationError struct {
	Determinacy
}

func (e *ValidationError) Error() string {
	d := e.Determinacy
	return fmt.Sprintf("%v system: %d unknowns and %d equations (%d equilibrium, %d mass, 1 charge)",
		d.Status(), d.Unknowns, d.Equations(), d.Equilibria, d.Conservation)
}

// ConvergenceError is returned when every attempt of the adaptive sweep failed.
// Last holds the solution of the final attempt.
type ConvergenceError struct {
	Attempts int
	Last     *Solution
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence after %d attempts: %s", e.Attempts, e.Last.Message)
}

// LookupError reports a reference to an unknown or a conservation group that does not exist.
type LookupError struct {
	What string // "unknown" or "group"
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.Name)
}
