// SPDX-License-Identifier: MIT

package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cmefsp/config"
)

func TestDefault(t *testing.T) {
	r := config.Default()
	require.NoError(t, r.Validate())

	pts := r.Points()
	assert.Len(t, pts, 25)
	assert.Equal(t, 0.0, pts[0])
	assert.Equal(t, 1.0, pts[9])
	assert.Equal(t, 2.0, pts[10])
	assert.Equal(t, 16.0, pts[24])
	assert.InDelta(t, 1e-2/25, r.StepBudget(), 1e-18)
}

func TestSegment_Points(t *testing.T) {
	assert.Nil(t, config.Segment{Start: 0, Stop: 1, Num: 0}.Points())
	assert.Equal(t, []float64{3}, config.Segment{Start: 3, Stop: 9, Num: 1}.Points())
	assert.Equal(t, []float64{0, 0.5, 1}, config.Segment{Start: 0, Stop: 1, Num: 3}.Points())
}

func TestLoad_ResolvesModelFile(t *testing.T) {
	r, err := config.Load(filepath.Join("testdata", "run.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "models", "birth.yaml"), r.ModelFile)
	assert.Equal(t, 0.001, r.Epsilon)
	assert.Equal(t, 1, r.Depth)
	assert.Equal(t, 1, r.RecordEvery)
	assert.Equal(t, "runs.db", r.Database)
	assert.Equal(t, []float64{0, 0.5, 1}, r.Points())
	// Omitted model keeps the default; model_file wins at run time.
	assert.Equal(t, config.DefaultModel, r.Model)
}

func TestLoadYAML_Defaults(t *testing.T) {
	r, err := config.LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), r)

	r, err = config.LoadYAML(strings.NewReader("epsilon: 0.5\ntimes:\n  - {start: 0, stop: 2, num: 5}\ntime_points: [1, 7]\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2, 7}, r.Points())
	assert.InDelta(t, 0.5/6, r.StepBudget(), 1e-15)
}

func TestLoadYAML_Invalid(t *testing.T) {
	cases := map[string]string{
		"zero epsilon":     "epsilon: 0\n",
		"bad depth":        "depth: 0\n",
		"bad record_every": "record_every: 0\n",
		"reversed segment": "times:\n  - {start: 2, stop: 1, num: 3}\n",
		"negative time":    "time_points: [-1, 2]\n",
		"ratio too big":    "tolerance_ratio: 2\n",
		"no model":         "model: \"\"\n",
		"nan rel_tol":      "rel_tol: .nan\n",
		"inf rel_tol":      "rel_tol: .inf\n",
		"nan ratio":        "tolerance_ratio: .nan\n",
		"nan time point":   "time_points: [0, .nan]\n",
		"inf segment":      "times:\n  - {start: 0, stop: .inf, num: 3}\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadYAML(strings.NewReader(src))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	_, err := config.LoadYAML(strings.NewReader("epsilonn: 1\n"))
	assert.Error(t, err)

	_, err = config.Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}
