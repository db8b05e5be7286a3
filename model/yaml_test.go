// SPDX-License-Identifier: MIT

package model_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cmefsp/model"
	"github.com/katalvlaran/cmefsp/state"
)

func TestLoadFile_Dimerization(t *testing.T) {
	m, err := model.LoadFile(filepath.Join("testdata", "dimer.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dimer", m.Name)
	assert.Equal(t, []string{"M", "D"}, m.Species)
	assert.Equal(t, state.State{4, 0}, m.InitialState)
	require.Len(t, m.Reactions, 2)
	assert.Equal(t, []int{-2, 1}, m.Reactions[0].Delta)
	assert.Equal(t, []int{2, -1}, m.Reactions[1].Delta)

	// 0.1 · C(4, 2) and 0.05 · C(1, 1).
	assert.InDelta(t, 0.6, m.Reactions[0].Propensity(state.State{4, 0}, 0), 1e-12)
	assert.InDelta(t, 0.05, m.Reactions[1].Propensity(state.State{2, 1}, 0), 1e-12)
}

func TestLoadYAML_NormalizesSpecies(t *testing.T) {
	// "é" as e + combining acute in species, precomposed in products.
	src := "name: accent\n" +
		"species: [\"Prote\u0301in\"]\n" +
		"reactions:\n" +
		"  - name: make\n" +
		"    products: {\"Prot\u00e9in\": 1}\n" +
		"    rate: 1\n"
	m, err := model.LoadYAML(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Prot\u00e9in", m.Species[0])
	assert.Equal(t, []int{1}, m.Reactions[0].Delta)
}

func TestLoadYAML_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "unknown species",
			src:  "species: [A]\nreactions:\n  - name: r\n    products: {B: 1}\n    rate: 1\n",
			want: model.ErrUnknownSpecies,
		},
		{
			name: "negative rate",
			src:  "species: [A]\nreactions:\n  - name: r\n    products: {A: 1}\n    rate: -1\n",
			want: model.ErrInvalidRate,
		},
		{
			name: "duplicate species",
			src:  "species: [A, A]\nreactions: []\n",
			want: model.ErrInvalidModel,
		},
		{
			name: "no species",
			src:  "name: empty\n",
			want: model.ErrInvalidModel,
		},
		{
			name: "negative initial count",
			src:  "species: [A]\ninitial_state: {A: -2}\n",
			want: model.ErrInvalidModel,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.LoadYAML(strings.NewReader(tc.src))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadYAML_RejectsUnknownFields(t *testing.T) {
	_, err := model.LoadYAML(strings.NewReader("species: [A]\nreactoins: []\n"))
	require.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := model.LoadFile(filepath.Join("testdata", "does-not-exist.yaml"))
	require.Error(t, err)
}
