// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics records root finder attempts and solve outcomes with Prometheus.
package metrics

import (
	"io"
	"time"

	"github.com/curioloop/equilibrium/acidbase"
	"github.com/curioloop/equilibrium/fsolve"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "acidbase"

// Collector implements acidbase.Observer on a private registry.
type Collector struct {
	reg *prometheus.Registry

	attempts   *prometheus.CounterVec
	iterations prometheus.Histogram
	solves     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	sweep      prometheus.Histogram
}

var _ acidbase.Observer = (*Collector)(nil)

// New creates a collector with its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		reg: reg,
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "root_finder_attempts_total",
			Help:      "Root finder runs by final status",
		}, []string{"status"}),
		iterations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "root_finder_iterations",
			Help:      "Iterations per root finder run",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
		}),
		solves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Solves by mode and outcome",
		}, []string{"mode", "converged"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall time of a solve",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"mode"}),
		sweep: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_attempts",
			Help:      "Attempts spent by an adaptive solve",
			Buckets:   []float64{1, 2, 5, 10, 20, 40, 61},
		}),
	}
}

// Registry exposes the collector's registry, e.g. for promhttp.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) ObserveAttempt(d acidbase.Diagnostics) {
	c.attempts.WithLabelValues(statusLabel(d)).Inc()
	c.iterations.Observe(float64(d.Iterations))
}

func (c *Collector) ObserveSolve(mode acidbase.Mode, d acidbase.Diagnostics, elapsed time.Duration) {
	conv := "false"
	if d.Converged {
		conv = "true"
	}
	c.solves.WithLabelValues(string(mode), conv).Inc()
	c.duration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	if mode == acidbase.Adaptive {
		c.sweep.Observe(float64(d.Attempts))
	}
}

func statusLabel(d acidbase.Diagnostics) string {
	switch d.Status {
	case fsolve.ConvResidual:
		return "residual"
	case fsolve.ConvStep:
		return "step"
	case fsolve.NoProgress:
		return "no_progress"
	case fsolve.OverIterLimit, fsolve.OverEvalLimit:
		return "limit"
	}
	return "abnormal"
}

// Write dumps every metric family in the text exposition format.
func (c *Collector) Write(w io.Writer) error {
	mfs, err := c.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
