// SPDX-License-Identifier: MIT

package recorder_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cmefsp/model"
	"github.com/katalvlaran/cmefsp/recorder"
	"github.com/katalvlaran/cmefsp/state"
)

func sparse(entries map[string]float64) state.Sparse {
	p := state.Sparse{}
	for k, v := range entries {
		p[state.Key(k)] = v
	}
	return p
}

var (
	first  = sparse(map[string]float64{"0,0": 0.2, "1,0": 0.3, "1,2": 0.5})
	second = sparse(map[string]float64{"2,1": 1})
)

func newRecorder(t *testing.T, opts ...recorder.Option) *recorder.Recorder {
	t.Helper()
	m := model.Burr08()
	r, err := recorder.New(m.Species, m.Counts, opts...)
	require.NoError(t, err)
	require.NoError(t, r.Write(0, first))
	require.NoError(t, r.Write(1.5, second))
	return r
}

func TestRecorder_Statistics(t *testing.T) {
	r := newRecorder(t)
	assert.Equal(t, []float64{0, 1.5}, r.Times())
	assert.Equal(t, []string{"A", "B"}, r.Species())

	meanA, err := r.Expectation("A")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.8, 2}, meanA, 1e-12)

	meanB, err := r.Expectation("B")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1}, meanB, 1e-12)

	stdA, err := r.StdDev("A")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.4, 0}, stdA, 1e-12)

	stdB, err := r.StdDev("B")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0}, stdB, 1e-12)

	margB, err := r.Marginal("B", 0)
	require.NoError(t, err)
	assert.Len(t, margB, 2)
	assert.InDelta(t, 0.5, margB[0], 1e-12)
	assert.InDelta(t, 0.5, margB[2], 1e-12)
}

func TestRecorder_Errors(t *testing.T) {
	r := newRecorder(t)

	_, err := r.Expectation("C")
	assert.ErrorIs(t, err, recorder.ErrUnknownSpecies)
	_, err = r.Marginal("A", 2)
	assert.ErrorIs(t, err, recorder.ErrOutOfRange)
	_, err = r.Joint("A", "nope")
	assert.ErrorIs(t, err, recorder.ErrUnknownSpecies)

	assert.ErrorIs(t, r.Write(1, first), recorder.ErrTimeOrder)

	_, err = recorder.New(nil, nil)
	assert.ErrorIs(t, err, recorder.ErrUnknownSpecies)
	_, err = recorder.New([]string{"A", "A"}, nil)
	assert.ErrorIs(t, err, recorder.ErrUnknownSpecies)

	short, err := recorder.New([]string{"A", "B"}, func(s state.State) []float64 { return []float64{1} })
	require.NoError(t, err)
	assert.ErrorIs(t, short.Write(0, first), recorder.ErrCountsMismatch)

	bad, err := recorder.New([]string{"A"}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, bad.Write(0, sparse(map[string]float64{"x": 1})), state.ErrMalformedKey)
}

type failingSink struct{ calls int }

func (f *failingSink) Record(float64, state.Sparse) error {
	f.calls++
	return errors.New("disk full")
}

func TestRecorder_SinkErrors(t *testing.T) {
	sink := &failingSink{}
	r, err := recorder.New([]string{"A", "B"}, nil, recorder.WithSink(sink))
	require.NoError(t, err)
	err = r.Write(0, first)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, sink.calls)
	// A failed write records nothing.
	assert.Empty(t, r.Times())
	mean, err := r.Expectation("A")
	require.NoError(t, err)
	assert.Empty(t, mean)
}

func TestRecorder_JointGolden(t *testing.T) {
	r := newRecorder(t)
	m, err := r.Joint("B", "A")
	require.NoError(t, err)

	var b strings.Builder
	fmt.Fprintf(&b, "species %s\n", strings.Join(m.Species, ","))
	for k, tm := range m.Times {
		fmt.Fprintf(&b, "t=%g\n", tm)
		for _, key := range m.Keys(k) {
			fmt.Fprintf(&b, "%s %.4f\n", key, m.Distributions[k][key])
		}
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "joint_b_a", []byte(b.String()))
}

func TestRecorder_JointDefaultsToAllSpecies(t *testing.T) {
	r := newRecorder(t)
	m, err := r.Joint()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, m.Species)
	assert.InDelta(t, 0.5, m.Distributions[0]["1,2"], 1e-12)
	assert.InDelta(t, 1, m.Distributions[1]["2,1"], 1e-12)
}
