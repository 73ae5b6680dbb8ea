// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/curioloop/equilibrium/acidbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const phosphoricDB = `
reactions:
  a00: {eq: "-1_H2O_0 <=> 1_H_+1 & 1_OH_-1", pK: 14.00, kind: WD}
  b00: {eq: "-1_H3PO4_0 <=> 1_H_+1 & 1_H2PO4_-1", pK: 2.15, kind: AD}
  b01: {eq: "-1_H2PO4_-1 <=> 1_H_+1 & 1_HPO4_-2", pK: 7.20, kind: AD}
  b02: {eq: "-1_HPO4_-2 <=> 1_H_+1 & 1_PO4_-3", pK: 12.35, kind: AD}
conservation:
  PO4: {total: 1.0}
  Na: {total: 0.1, enabled: false}
`

func writeDB(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&app{logger: zap.NewNop()})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "-f", writeDB(t, phosphoricDB), "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "determinate")
	assert.Contains(t, out, "H2PO4_-1")
	assert.Contains(t, out, "PO4_-3")
}

func TestCheckStrict(t *testing.T) {
	doc := phosphoricDB + "  Ca: {total: 0.5}\n"
	path := writeDB(t, doc)

	_, err := run(t, "check", "-f", path, "--strict")
	var ve *acidbase.ValidationError
	require.ErrorAs(t, err, &ve)

	out, err := run(t, "check", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "overdetermined")
}

func TestSolve(t *testing.T) {
	path := writeDB(t, phosphoricDB)

	out, err := run(t, "solve", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "pH 1.0933")
	assert.Contains(t, out, "converged")

	out, err = run(t, "solve", "-f", path, "--guess", "-2")
	require.NoError(t, err)
	assert.Contains(t, out, "pH 1.0933")
	assert.Contains(t, out, "attempts 1")
}

func TestSolveMetrics(t *testing.T) {
	out, err := run(t, "solve", "-f", writeDB(t, phosphoricDB), "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, `acidbase_solves_total{converged="true",mode="adaptive"} 1`)
}

func TestSolveNoConvergence(t *testing.T) {
	doc := phosphoricDB + "solver:\n  max_iterations: 1\n  sweep: {start: 0, stop: 1, step: 1}\n"
	out, err := run(t, "solve", "-f", writeDB(t, doc))
	var ce *acidbase.ConvergenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Attempts)
	assert.Contains(t, out, "not converged")
}

func TestSeries(t *testing.T) {
	out, err := run(t, "series", "-f", writeDB(t, phosphoricDB),
		"--group", "PO4", "--from", "0.001", "--to", "1", "--points", "4", "--log", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "3.0513")
	assert.Contains(t, out, "2.2527")
	assert.Contains(t, out, "1.6326")
	assert.Contains(t, out, "1.0933")
}

func TestArguments(t *testing.T) {
	path := writeDB(t, phosphoricDB)

	_, err := run(t, "solve")
	assert.Error(t, err)

	_, err = run(t, "solve", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "series", "-f", path, "--group", "PO4", "--points", "0")
	assert.Error(t, err)

	_, err = run(t, "series", "-f", path, "--group", "PO4", "--from", "0", "--log")
	assert.Error(t, err)

	_, err = run(t, "series", "-f", path, "--group", "Ca")
	var le *acidbase.LookupError
	require.ErrorAs(t, err, &le)
}
