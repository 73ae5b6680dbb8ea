// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/curioloop/equilibrium/acidbase"
)

var (
	colorAccent  = lipgloss.Color("#14B8A6")
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#64748B")
)

var styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	OK      lipgloss.Style
	Warning lipgloss.Style
	Box     lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	OK:      lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
	Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
	Cell:   lipgloss.NewStyle().Padding(0, 1),
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		})
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func renderSystem(sys *acidbase.System) string {
	d := sys.Determinacy()
	status := styles.OK.Render(d.Status().String())
	if d.Status() != acidbase.Determinate {
		status = styles.Warning.Render(d.Status().String())
	}
	summary := styles.Box.Render(fmt.Sprintf("%s\nunknowns %d · equations %d (%d equilibrium, %d mass, 1 charge)\ntemperature %s K",
		status, d.Unknowns, d.Equations(), d.Equilibria, d.Conservation, num(sys.Temperature())))

	unknowns := sys.Unknowns()
	ut := newTable("#", "unknown", "charge")
	for i, u := range unknowns {
		ut.Row(strconv.Itoa(i), u.Name, strconv.Itoa(u.Charge))
	}

	bt := newTable("group", "total", "members")
	for _, b := range sys.Balances() {
		members := make([]string, len(b.Unknowns))
		for j, u := range b.Unknowns {
			members[j] = unknowns[u].Name
			if c := b.Coefficients[j]; c != 1 {
				members[j] = num(c) + "·" + members[j]
			}
		}
		bt.Row(b.Label, num(b.Total), strings.Join(members, " + "))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("System"), summary,
		styles.Title.Render("Unknowns"), ut.Render(),
		styles.Title.Render("Conservation"), bt.Render(),
	)
}

func renderSolution(sys *acidbase.System, sol *acidbase.Solution) string {
	status := styles.OK.Render("converged")
	if !sol.Converged {
		status = styles.Warning.Render("not converged")
	}
	lines := []string{
		status + styles.Muted.Render(" · "+sol.Message),
		fmt.Sprintf("iterations %d · evaluations %d · attempts %d · factor %s", sol.Iterations, sol.Evaluations, sol.Attempts, num(sol.Factor)),
	}
	if ph, err := sol.PH(); err == nil {
		lines = append(lines, fmt.Sprintf("pH %.4f", ph))
	}

	ct := newTable("unknown", "log10 C", "C (mol/L)")
	for i, u := range sys.Unknowns() {
		ct.Row(u.Name, fmt.Sprintf("%.4f", sol.X[i]), num(math.Pow(10, sol.X[i])))
	}

	rt := newTable("equation", "residual")
	k := 0
	for _, eq := range sys.Equilibria() {
		rt.Row(eq.ID, num(sol.Residual[k]))
		k++
	}
	for _, b := range sys.Balances() {
		rt.Row("mass "+b.Label, num(sol.Residual[k]))
		k++
	}
	rt.Row("charge", num(sol.Residual[k]))

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Solution"),
		styles.Box.Render(strings.Join(lines, "\n")),
		ct.Render(),
		rt.Render(),
	)
}

func renderSeries(label string, points []acidbase.Point) string {
	t := newTable("total "+label+" (mol/L)", "pH", "converged", "factor", "attempts")
	for _, p := range points {
		conv := styles.OK.Render("yes")
		if !p.Converged {
			conv = styles.Warning.Render("no")
		}
		t.Row(num(p.Total), fmt.Sprintf("%.4f", p.PH), conv, num(p.Factor), strconv.Itoa(p.Attempts))
	}
	return lipgloss.JoinVertical(lipgloss.Left, styles.Title.Render("Series"), t.Render())
}
