// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acidbase

import (
	"testing"

	"github.com/curioloop/equilibrium/reaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiplicity(t *testing.T) {
	tests := []struct {
		name, label string
		want        float64
	}{
		{"Ca3(PO4)2_0", "PO4", 2},
		{"Ca3(PO4)2_0", "Ca", 1},
		{"H2PO4_-1", "PO4", 1},
		{"Fe(OH)3_0", "OH", 3},
		{"Fe(OH)x_0", "OH", 1},
		{"PO4)", "PO4", 1},
		{"Na_+1", "Cl", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, multiplicity(tt.name, tt.label), "%s in %s", tt.label, tt.name)
	}
}

func apatite() *reaction.Database {
	db := phosphoric(1)
	db.Reactions = append(db.Reactions, reaction.Reaction{
		ID: "c00", Equation: "-1_Ca3(PO4)2_0 <=> 3_Ca_+2 & 2_PO4_-3", PK: 28.9, Kind: reaction.AcidDissociation, Enabled: true,
	})
	return db
}

func TestSubstringMembership(t *testing.T) {
	sys, err := Build(apatite(), BuildOptions{})
	require.NoError(t, err)

	b := sys.Balances()
	require.Len(t, b, 1)
	var members []string
	for _, u := range b[0].Unknowns {
		members = append(members, sys.Unknowns()[u].Name)
	}
	assert.Equal(t, []string{"H3PO4_0", "H2PO4_-1", "HPO4_-2", "PO4_-3", "Ca3(PO4)2_0"}, members)
	assert.Equal(t, []float64{1, 1, 1, 1, 2}, b[0].Coefficients)
}

func TestExplicitMembership(t *testing.T) {
	db := apatite()
	db.Groups[0].Species = []string{"PO4_-3", "Ca3(PO4)2_0"}
	db.Groups = append(db.Groups, reaction.Group{Label: "Ca", Enabled: true, Total: 0.5, Species: []string{"Ca_+2", "Ca3(PO4)2_0"}})

	sys, err := Build(db, BuildOptions{})
	require.NoError(t, err)

	b := sys.Balances()
	require.Len(t, b, 2)
	po4, _ := sys.Index("PO4_-3")
	apa, _ := sys.Index("Ca3(PO4)2_0")
	ca, _ := sys.Index("Ca_+2")
	assert.Equal(t, []int{po4, apa}, b[0].Unknowns)
	assert.Equal(t, []float64{1, 2}, b[0].Coefficients)
	assert.Equal(t, []int{ca, apa}, b[1].Unknowns)
	assert.Equal(t, []float64{1, 1}, b[1].Coefficients)

	db.Groups[1].Species = []string{"Ca_+3"}
	_, err = Build(db, BuildOptions{})
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "Ca_+3", le.Name)
}
