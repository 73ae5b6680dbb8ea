// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command acidbase computes the equilibrium composition of acid-base systems
// described in a YAML reaction database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries the state shared by all subcommands.
type app struct {
	verbose bool
	file    string
	logger  *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "acidbase",
		Short: "Acid-base equilibrium solver",
		Long: `acidbase solves the mass-action, mass-balance and charge-balance equations
of a reaction database in log10 concentration space.

Reactions are written as coefficient_species_charge terms joined by "<=>" or "&",
for example "-1_H3PO4_0 <=> 1_H_+1 & 1_H2PO4_-1".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			a.logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging of the root finder")
	root.PersistentFlags().StringVarP(&a.file, "file", "f", "", "Reaction database (YAML)")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(newCheckCmd(a), newSolveCmd(a), newSeriesCmd(a))
	return root
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}
