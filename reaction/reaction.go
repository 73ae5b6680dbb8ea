// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reaction holds the user database of equilibrium reactions and
// mass-conservation groups, and the grammar of reaction equations.
//
// An equation is a list of terms coefficient_species_charge joined by "<=>" or "&":
//
//	-1_H3PO4_0 <=> 1_H_+1 & 1_H2PO4_-1
//
// Reactants carry negative coefficients. The two separators are interchangeable.
package reaction

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrDuplicate     = errors.New("duplicate entry")
	ErrEmptyEquation = errors.New("empty equation")
	ErrEmptyLabel    = errors.New("empty label")
	ErrUnsetKind     = errors.New("reaction kind not set")
)

// Reaction is one equilibrium reaction of the database.
type Reaction struct {
	ID       string
	Equation string
	PK       float64 // -log10 of the equilibrium constant
	Kind     Kind
	Enabled  bool
}

// Terms parses the equation of the reaction.
func (r *Reaction) Terms() ([]Term, error) {
	terms, err := ParseEquation(r.Equation)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Reaction = r.ID
		}
		return nil, err
	}
	return terms, nil
}

// Group is a mass-conservation constraint: the weighted sum of the concentrations
// of every unknown carrying Label equals Total.
type Group struct {
	Label   string
	Enabled bool
	Total   float64 // mol/L
	// Species optionally pins the members of the group to the listed unknown names.
	Species []string
}

// Database is the ordered collection of reactions and conservation groups.
type Database struct {
	Reactions []Reaction
	Groups    []Group
}

// Trim removes disabled reactions and groups in place and returns the receiver.
// The relative order of the remaining entries is preserved.
func (db *Database) Trim() *Database {
	db.Reactions = slices.DeleteFunc(db.Reactions, func(r Reaction) bool { return !r.Enabled })
	db.Groups = slices.DeleteFunc(db.Groups, func(g Group) bool { return !g.Enabled })
	return db
}

// Clone returns a deep copy of the database.
func (db *Database) Clone() *Database {
	c := &Database{
		Reactions: slices.Clone(db.Reactions),
		Groups:    slices.Clone(db.Groups),
	}
	for i := range c.Groups {
		c.Groups[i].Species = slices.Clone(c.Groups[i].Species)
	}
	return c
}

// Validate reports every duplicate id or label, unset kind, empty equation and malformed term.
// The returned error joins all findings.
func (db *Database) Validate() error {
	var errs []error

	ids := make(map[string]struct{}, len(db.Reactions))
	for i := range db.Reactions {
		r := &db.Reactions[i]
		if _, dup := ids[r.ID]; dup {
			errs = append(errs, fmt.Errorf("reaction %q: %w", r.ID, ErrDuplicate))
		}
		ids[r.ID] = struct{}{}
		if r.Kind == Unset {
			errs = append(errs, fmt.Errorf("reaction %q: %w", r.ID, ErrUnsetKind))
		}
		if strings.TrimSpace(r.Equation) == "" {
			errs = append(errs, fmt.Errorf("reaction %q: %w", r.ID, ErrEmptyEquation))
			continue
		}
		if _, err := r.Terms(); err != nil {
			errs = append(errs, err)
		}
	}

	labels := make(map[string]struct{}, len(db.Groups))
	for _, g := range db.Groups {
		if g.Label == "" {
			errs = append(errs, fmt.Errorf("conservation group: %w", ErrEmptyLabel))
			continue
		}
		if _, dup := labels[g.Label]; dup {
			errs = append(errs, fmt.Errorf("conservation group %q: %w", g.Label, ErrDuplicate))
		}
		labels[g.Label] = struct{}{}
	}

	return errors.Join(errs...)
}
