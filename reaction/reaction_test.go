// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phosphoric() *Database {
	return &Database{
		Reactions: []Reaction{
			{ID: "a00", Equation: "-1_H2O_0 <=> 1_H_+1 & 1_OH_-1", PK: 14, Kind: WaterDissociation, Enabled: true},
			{ID: "b00", Equation: "-1_H3PO4_0 <=> 1_H_+1 & 1_H2PO4_-1", PK: 2.15, Kind: AcidDissociation, Enabled: true},
			{ID: "b01", Equation: "-1_H2PO4_-1 <=> 1_H_+1 & 1_HPO4_-2", PK: 7.20, Kind: AcidDissociation, Enabled: false},
			{ID: "b02", Equation: "-1_HPO4_-2 <=> 1_H_+1 & 1_PO4_-3", PK: 12.35, Kind: AcidDissociation, Enabled: true},
		},
		Groups: []Group{
			{Label: "Na", Enabled: false, Total: 0.1},
			{Label: "PO4", Enabled: true, Total: 1},
		},
	}
}

func TestTrim(t *testing.T) {
	db := phosphoric()
	trimmed := db.Trim()

	require.Same(t, db, trimmed)
	var ids []string
	for _, r := range db.Reactions {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a00", "b00", "b02"}, ids)
	require.Len(t, db.Groups, 1)
	assert.Equal(t, "PO4", db.Groups[0].Label)

	// idempotent
	db.Trim()
	assert.Len(t, db.Reactions, 3)
}

func TestTrimEverything(t *testing.T) {
	db := &Database{
		Reactions: []Reaction{{ID: "x", Equation: "1_H_+1"}},
		Groups:    []Group{{Label: "Na"}},
	}
	db.Trim()
	assert.Empty(t, db.Reactions)
	assert.Empty(t, db.Groups)
}

func TestClone(t *testing.T) {
	db := phosphoric()
	db.Groups[1].Species = []string{"PO4_-3"}
	c := db.Clone()
	c.Trim()
	c.Groups[0].Species[0] = "changed"

	assert.Len(t, db.Reactions, 4)
	assert.Equal(t, "PO4_-3", db.Groups[1].Species[0])
}

func TestValidate(t *testing.T) {
	require.NoError(t, phosphoric().Validate())

	unset := phosphoric()
	unset.Reactions[1].Kind = Unset
	err := unset.Validate()
	assert.ErrorIs(t, err, ErrUnsetKind)
	assert.ErrorContains(t, err, `reaction "b00"`)

	db := phosphoric()
	db.Reactions = append(db.Reactions,
		Reaction{ID: "a00", Equation: "-1_H2O_0 <=> 1_H_+1 & 1_OH_-1"},
		Reaction{ID: "c00", Equation: "  "},
		Reaction{ID: "c01", Equation: "1_H_x"},
	)
	db.Groups = append(db.Groups, Group{Label: "PO4"}, Group{})

	err = db.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, err, ErrEmptyEquation)
	assert.ErrorIs(t, err, ErrEmptyLabel)
	assert.ErrorContains(t, err, `reaction "c00": reaction kind not set`)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "c01", pe.Reaction)
}
