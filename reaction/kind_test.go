// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"WD":                 WaterDissociation,
		"water-dissociation": WaterDissociation,
		"AD":                 AcidDissociation,
		"acid-dissociation":  AcidDissociation,
		" AD ":               AcidDissociation,
		"BD":                 Kind("BD"),
		"base-dissociation":  Kind("base-dissociation"),
	} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, k)
	}

	_, err := ParseKind("  ")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "blank reaction kind", pe.Msg)

	assert.Equal(t, "WD", WaterDissociation.String())
	assert.Equal(t, "AD", AcidDissociation.String())
	assert.Equal(t, "BD", Kind("BD").String())
	assert.Equal(t, "unset", Unset.String())
}

func kept(t *testing.T, k Kind, eq string) []string {
	terms, err := ParseEquation(eq)
	require.NoError(t, err)
	var names []string
	for i, term := range terms {
		if !k.Excludes(i, term) {
			names = append(names, term.Name())
		}
	}
	return names
}

func TestExclusionPolicy(t *testing.T) {
	water := "-1_H2O_0 <=> 1_H_+1 & 1_OH_-1"
	acid := "-1_H3PO4_0 <=> 1_H_+1 & 1_H2PO4_-1"
	hydrolysis := "-1_NH3_0 & -1_H2O_0 <=> 1_NH4_+1 & 1_OH_-1"

	assert.Equal(t, []string{"H_+1", "OH_-1"}, kept(t, WaterDissociation, water))
	assert.Equal(t, []string{"H_+1", "OH_-1"}, kept(t, AcidDissociation, water))
	assert.Equal(t, []string{"H_+1", "H2PO4_-1"}, kept(t, WaterDissociation, acid))
	assert.Equal(t, []string{"H3PO4_0", "H_+1", "H2PO4_-1"}, kept(t, AcidDissociation, acid))
	assert.Equal(t, []string{"NH3_0", "NH4_+1", "OH_-1"}, kept(t, AcidDissociation, hydrolysis))

	// any kind other than acid dissociation drops the leading term
	base := Kind("BD")
	assert.Equal(t, []string{"NH4_+1", "OH_-1"}, kept(t, base, hydrolysis))
	assert.Equal(t, []string{"H_+1", "H2PO4_-1"}, kept(t, base, acid))
	assert.Equal(t, []string{"H_+1", "H2PO4_-1"}, kept(t, Unset, acid))
}
