// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads a reaction database and its solver settings from YAML.
//
// Reactions and conservation groups are mappings keyed by id and label; their
// document order is kept, because it fixes the order of unknowns and residuals.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/curioloop/equilibrium/acidbase"
	"github.com/curioloop/equilibrium/reaction"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// entry is one key/value pair of an ordered mapping.
type entry[T any] struct {
	Key   string `validate:"required"`
	Value T
}

// ordered decodes a YAML mapping into a slice that keeps document order.
type ordered[T any] []entry[T]

func (o *ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expect a mapping", node.Line)
	}
	out := make(ordered[T], 0, len(node.Content)/2)
	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		var e entry[T]
		if err := k.Decode(&e.Key); err != nil {
			return err
		}
		if line, dup := seen[e.Key]; dup {
			return fmt.Errorf("line %d: key %q already defined at line %d", k.Line, e.Key, line)
		}
		seen[e.Key] = k.Line
		if err := v.Decode(&e.Value); err != nil {
			return fmt.Errorf("%s: %w", e.Key, err)
		}
		out = append(out, e)
	}
	*o = out
	return nil
}

// ReactionSpec is a reaction as written in the file.
type ReactionSpec struct {
	Eq      string   `yaml:"eq" validate:"required"`
	PK      *float64 `yaml:"pK" validate:"required"`
	Kind    string   `yaml:"kind" validate:"required"`
	Enabled *bool    `yaml:"enabled"`
}

// GroupSpec is a conservation group as written in the file.
type GroupSpec struct {
	Total   *float64 `yaml:"total" validate:"required,gte=0"`
	Enabled *bool    `yaml:"enabled"`
	Species []string `yaml:"species" validate:"omitempty,dive,required"`
}

type SweepSpec struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop" validate:"gtefield=Start"`
	Step  float64 `yaml:"step" validate:"gt=0"`
}

type SolverSpec struct {
	Strict         bool       `yaml:"strict"`
	Jacobian       string     `yaml:"jacobian" validate:"omitempty,oneof=analytic forward central"`
	Sweep          *SweepSpec `yaml:"sweep" validate:"omitempty"`
	MaxIterations  int        `yaml:"max_iterations" validate:"gte=0"`
	MaxEvaluations int        `yaml:"max_evaluations" validate:"gte=0"`
	FTol           *float64   `yaml:"ftol" validate:"omitempty,gte=0"`
	XTol           *float64   `yaml:"xtol" validate:"omitempty,gte=0"`
	Accuracy       *float64   `yaml:"accuracy" validate:"omitempty,gte=0"`
	Factor         float64    `yaml:"factor" validate:"gte=0"`
}

// File is the document layout.
type File struct {
	Temperature  float64               `yaml:"temperature" validate:"gte=0"`
	Reactions    ordered[ReactionSpec] `yaml:"reactions" validate:"required,dive"`
	Conservation ordered[GroupSpec]    `yaml:"conservation" validate:"omitempty,dive"`
	Solver       SolverSpec            `yaml:"solver"`
}

// Config is a loaded file ready for acidbase.Build and acidbase.NewSolver.
type Config struct {
	Database *reaction.Database
	Build    acidbase.BuildOptions
	Solver   acidbase.Config
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses an in-memory document.
func Parse(data []byte) (*Config, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes, validates and converts a document.
// Unknown fields are rejected.
func Read(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return file.convert()
}

func enabled(b *bool) bool { return b == nil || *b }

func (f *File) convert() (*Config, error) {
	db := &reaction.Database{
		Reactions: make([]reaction.Reaction, 0, len(f.Reactions)),
		Groups:    make([]reaction.Group, 0, len(f.Conservation)),
	}
	for _, e := range f.Reactions {
		kind, err := reaction.ParseKind(e.Value.Kind)
		if err != nil {
			return nil, err
		}
		db.Reactions = append(db.Reactions, reaction.Reaction{
			ID:       e.Key,
			Equation: e.Value.Eq,
			PK:       *e.Value.PK,
			Kind:     kind,
			Enabled:  enabled(e.Value.Enabled),
		})
	}
	for _, e := range f.Conservation {
		db.Groups = append(db.Groups, reaction.Group{
			Label:   e.Key,
			Enabled: enabled(e.Value.Enabled),
			Total:   *e.Value.Total,
			Species: e.Value.Species,
		})
	}
	if err := db.Validate(); err != nil {
		return nil, err
	}

	s := f.Solver
	sc := acidbase.DefaultConfig()
	if s.Sweep != nil {
		sc.Sweep = acidbase.Sweep{Start: s.Sweep.Start, Stop: s.Sweep.Stop, Step: s.Sweep.Step}
	}
	mode, err := acidbase.ParseJacobianMode(s.Jacobian)
	if err != nil {
		return nil, err
	}
	sc.Jacobian = mode
	if s.MaxIterations > 0 {
		sc.Stop.MaxIterations = s.MaxIterations
	}
	sc.Stop.MaxEvaluations = s.MaxEvaluations
	if s.FTol != nil {
		sc.Stop.FTolerance = *s.FTol
	}
	if s.XTol != nil {
		sc.Stop.XTolerance = *s.XTol
	}
	if s.Accuracy != nil {
		sc.Stop.Accuracy = *s.Accuracy
	}
	sc.Factor = s.Factor

	return &Config{
		Database: db,
		Build:    acidbase.BuildOptions{Strict: s.Strict, Temperature: f.Temperature},
		Solver:   sc,
	}, nil
}
