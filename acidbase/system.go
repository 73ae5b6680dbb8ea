// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package acidbase turns a reaction database into a system of nonlinear equations
// in log10 concentration space and solves it for the equilibrium composition.
//
// For unknowns 𝐱 (log10 mol/L) the residual has one row per reaction, one per
// conservation group and a final charge balance:
//
//	pKᵣ + Σ νᵣᵢ·xᵢ                    = 0
//	Σ cₘᵢ·10^xᵢ - Totalₘ             = 0
//	Σ zᵢ·10^xᵢ                       = 0
//
// A System is immutable once built and may be shared. Every solve owns a State.
package acidbase

import (
	"fmt"
	"math"
	"slices"

	"github.com/curioloop/equilibrium/reaction"
	"go.uber.org/zap"
)

// Proton is the unknown whose value defines pH.
const Proton = "H_+1"

// DefaultTemperature is the stored system temperature in kelvin.
// No equation depends on it.
const DefaultTemperature = 298

// BuildOptions controls Build.
type BuildOptions struct {
	// Strict turns a determinacy mismatch into an error.
	Strict bool
	// Temperature in kelvin, zero selects DefaultTemperature.
	Temperature float64
	Logger      *zap.Logger
}

// System is a compiled equilibrium problem.
type System struct {
	unknowns    []Unknown
	index       map[string]int
	equilibria  []Equilibrium
	balances    []Balance
	determinacy Determinacy
	temperature float64
}

// Build compiles the enabled part of db.
// The database itself is not modified.
func Build(db *reaction.Database, opts BuildOptions) (*System, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	temp := opts.Temperature
	if temp == 0 {
		temp = DefaultTemperature
	}

	trimmed := db.Clone().Trim()

	reg := newRegistry()
	eqs, err := compile(trimmed.Reactions, reg)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	det := Determinacy{
		Unknowns:     len(reg.list),
		Equilibria:   len(eqs),
		Conservation: len(trimmed.Groups),
	}
	if err = det.Err(); err != nil {
		if opts.Strict {
			return nil, fmt.Errorf("build: %w", err)
		}
		logger.Warn("system is not determinate",
			zap.Stringer("status", det.Status()),
			zap.Int("unknowns", det.Unknowns),
			zap.Int("equilibria", det.Equilibria),
			zap.Int("conservation", det.Conservation),
		)
	}

	bal, err := derive(trimmed.Groups, reg)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	if ce := logger.Check(zap.DebugLevel, "system built"); ce != nil {
		names := make([]string, len(reg.list))
		for i, u := range reg.list {
			names[i] = u.Name
		}
		ce.Write(
			zap.Strings("unknowns", names),
			zap.Int("equations", det.Equations()),
			zap.Float64("temperature", temp),
		)
	}

	return &System{
		unknowns:    reg.list,
		index:       reg.index,
		equilibria:  eqs,
		balances:    bal,
		determinacy: det,
		temperature: temp,
	}, nil
}

// N returns the number of unknowns.
func (s *System) N() int { return len(s.unknowns) }

// M returns the number of equations.
func (s *System) M() int { return len(s.equilibria) + len(s.balances) + 1 }

// Unknowns returns the unknowns in registry order.
func (s *System) Unknowns() []Unknown { return slices.Clone(s.unknowns) }

func (s *System) Equilibria() []Equilibrium { return slices.Clone(s.equilibria) }

func (s *System) Balances() []Balance { return slices.Clone(s.balances) }

func (s *System) Determinacy() Determinacy { return s.determinacy }

func (s *System) Temperature() float64 { return s.temperature }

// Index returns the registry position of the named unknown.
func (s *System) Index(name string) (int, error) {
	if i, ok := s.index[name]; ok {
		return i, nil
	}
	return -1, &LookupError{What: "unknown", Name: name}
}

func (s *System) group(label string) (int, error) {
	if k := slices.IndexFunc(s.balances, func(b Balance) bool { return b.Label == label }); k >= 0 {
		return k, nil
	}
	return -1, &LookupError{What: "group", Name: label}
}

// WithTotal returns a copy of the system with the total of group label replaced.
func (s *System) WithTotal(label string, total float64) (*System, error) {
	k, err := s.group(label)
	if err != nil {
		return nil, err
	}
	c := *s
	c.balances = slices.Clone(s.balances)
	c.balances[k].Total = total
	return &c, nil
}

// PH returns -x[H_+1].
func (s *System) PH(x []float64) (float64, error) {
	i, err := s.Index(Proton)
	if err != nil {
		return math.NaN(), err
	}
	return -x[i], nil
}

// State holds the values of the unknowns during one evaluation sequence.
type State struct {
	values []float64 // log10 mol/L
	conc   []float64 // 10^values, clamped
	slope  []float64 // d conc / d values
}

// NewState allocates a zeroed state for the system.
func (s *System) NewState() *State {
	n := s.N()
	return &State{
		values: make([]float64, n),
		conc:   make([]float64, n),
		slope:  make([]float64, n),
	}
}

// Values returns the current values in registry order.
func (st *State) Values() []float64 { return slices.Clone(st.values) }
