// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/curioloop/equilibrium/acidbase"
	"github.com/curioloop/equilibrium/config"
	"github.com/curioloop/equilibrium/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// load reads the database and builds the system; strict overrides the file when set.
func (a *app) load(strict *bool) (*config.Config, *acidbase.System, error) {
	cfg, err := config.Load(a.file)
	if err != nil {
		return nil, nil, err
	}
	if strict != nil {
		cfg.Build.Strict = *strict
	}
	cfg.Build.Logger = a.logger
	sys, err := acidbase.Build(cfg.Database, cfg.Build)
	if err != nil {
		return nil, nil, err
	}
	return cfg, sys, nil
}

func strictFlag(cmd *cobra.Command, v bool) *bool {
	if cmd.Flags().Changed("strict") {
		return &v
	}
	return nil
}

func newCheckCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report unknowns, balances and determinacy of a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sys, err := a.load(strictFlag(cmd, strict))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSystem(sys))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the system is not determinate")
	return cmd
}

func newSolveCmd(a *app) *cobra.Command {
	var (
		strict   bool
		guess    float64
		dumpProm bool
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve the equilibrium composition",
		Long: `Solve the equilibrium composition.

Without --guess the initial guess is swept over the configured range until the
root finder converges. With --guess a single run starts from that value for
every unknown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sys, err := a.load(strictFlag(cmd, strict))
			if err != nil {
				return err
			}

			var (
				obs       acidbase.Observer
				collector *metrics.Collector
			)
			if dumpProm {
				collector = metrics.New()
				obs = collector
			}
			s, err := acidbase.NewSolver(cfg.Solver, a.logger, obs)
			if err != nil {
				return err
			}

			var sol *acidbase.Solution
			if cmd.Flags().Changed("guess") {
				sol, err = s.SolveWithGuess(sys, slices.Repeat([]float64{guess}, sys.N()))
			} else {
				sol, err = s.SolveAdaptive(sys)
			}
			var ce *acidbase.ConvergenceError
			if err != nil && !errors.As(err, &ce) {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSolution(sys, sol))
			if dumpProm {
				if werr := collector.Write(out); werr != nil {
					a.logger.Warn("metrics dump failed", zap.Error(werr))
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the system is not determinate")
	cmd.Flags().Float64Var(&guess, "guess", 0, "Uniform initial guess (log10 mol/L); disables the sweep")
	cmd.Flags().BoolVar(&dumpProm, "metrics", false, "Print root finder metrics in Prometheus text format")
	return cmd
}

func newSeriesCmd(a *app) *cobra.Command {
	var (
		group    string
		from, to float64
		points   int
		logScale bool
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Solve the pH over a range of totals of one conservation group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if points <= 0 {
				return errors.New("--points must be positive")
			}
			if logScale && !(from > 0 && to > 0) {
				return errors.New("--log requires positive --from and --to")
			}
			cfg, sys, err := a.load(nil)
			if err != nil {
				return err
			}
			s, err := acidbase.NewSolver(cfg.Solver, a.logger, nil)
			if err != nil {
				return err
			}
			res, err := s.Series(cmd.Context(), sys, group, acidbase.Totals(from, to, points, logScale), workers)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSeries(group, res))
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Conservation group whose total is varied")
	cmd.Flags().Float64Var(&from, "from", 1e-3, "First total (mol/L)")
	cmd.Flags().Float64Var(&to, "to", 1, "Last total (mol/L)")
	cmd.Flags().IntVar(&points, "points", 10, "Number of totals")
	cmd.Flags().BoolVar(&logScale, "log", false, "Space totals geometrically")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent solves (0 = GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
