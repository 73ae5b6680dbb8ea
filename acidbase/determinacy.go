// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

// DeterminacyStatus classifies a system by comparing unknowns with equations.
type DeterminacyStatus int

const (
	Determinate DeterminacyStatus = iota
	Underdetermined
	Overdetermined
)

func (s DeterminacyStatus) String() string {
	switch s {
	case Determinate:
		return "determinate"
	case Underdetermined:
		return "underdetermined"
	case Overdetermined:
		return "overdetermined"
	default:
		return "unknown"
	}
}

// Determinacy holds the counts of a built system.
// Equations are the equilibria, the conservation groups and one charge balance.
type Determinacy struct {
	Unknowns     int
	Equilibria   int
	Conservation int
}

func (d Determinacy) Equations() int {
	return d.Equilibria + d.Conservation + 1
}

func (d Determinacy) Status() DeterminacyStatus {
	switch t := d.Equations(); {
	case d.Unknowns > t:
		return Underdetermined
	case d.Unknowns < t:
		return Overdetermined
	}
	return Determinate
}

// Err returns a *ValidationError unless the system is determinate.
func (d Determinacy) Err() error {
	if d.Status() == Determinate {
		return nil
	}
	return &ValidationError{Determinacy: d}
}
