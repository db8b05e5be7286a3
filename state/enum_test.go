// Package state_test contains unit tests for Enum, Domain and the
// sparse↔dense conversions.
package state_test

import (
	"testing"

	"github.com/katalvlaran/cmefsp/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustEnum builds an Enum or fails the test.
func mustEnum(t *testing.T, states ...state.State) *state.Enum {
	t.Helper()
	e, err := state.NewEnum(states)
	require.NoError(t, err)

	return e
}

// TestNewEnum_Duplicate ensures a repeated state is rejected with ErrDuplicateState.
func TestNewEnum_Duplicate(t *testing.T) {
	_, err := state.NewEnum([]state.State{{0, 1}, {1, 0}, {0, 1}})
	require.ErrorIs(t, err, state.ErrDuplicateState)
}

// TestNewEnum_InvalidStates rejects negatives and mixed dimensions.
func TestNewEnum_InvalidStates(t *testing.T) {
	_, err := state.NewEnum([]state.State{{0, -1}})
	require.ErrorIs(t, err, state.ErrInvalidState)

	_, err = state.NewEnum([]state.State{{0, 1}, {2}})
	require.ErrorIs(t, err, state.ErrInvalidState)
}

// TestEnum_IndexOf checks index = construction position and the unknown-state error.
func TestEnum_IndexOf(t *testing.T) {
	e := mustEnum(t, state.State{2, 0}, state.State{0, 0}, state.State{1, 1})
	require.Equal(t, 3, e.Size())
	require.Equal(t, 2, e.Dim())

	for want, s := range []state.State{{2, 0}, {0, 0}, {1, 1}} {
		got, err := e.IndexOf(s)
		require.NoError(t, err)
		assert.Equal(t, want, got, "index of %v", s)
		assert.True(t, e.At(got).Equal(s))
	}

	_, err := e.IndexOf(state.State{5, 5})
	require.ErrorIs(t, err, state.ErrUnknownState)
	_, err = e.IndexOfKey("9,9")
	require.ErrorIs(t, err, state.ErrUnknownState)
	assert.False(t, e.Contains(state.State{5, 5}))
}

// TestEnum_IsolatedFromCaller verifies the Enum keeps its own copies.
func TestEnum_IsolatedFromCaller(t *testing.T) {
	s := state.State{1, 2}
	e := mustEnum(t, s)
	s[0] = 7 // mutate caller's slice

	assert.True(t, e.Contains(state.State{1, 2}))
	assert.False(t, e.Contains(state.State{7, 2}))
}

// TestPackUnpack_RoundTrip covers the round-trip property for supports inside the enum.
func TestPackUnpack_RoundTrip(t *testing.T) {
	e := mustEnum(t, state.State{0}, state.State{1}, state.State{2}, state.State{3})
	p := state.Sparse{"0": 0.25, "2": 0.5, "3": 0.25}

	dense, rem, err := e.Pack(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rem)
	assert.Equal(t, []float64{0.25, 0, 0.5, 0.25}, dense)

	back, err := e.Unpack(dense)
	require.NoError(t, err)
	require.Len(t, back, 3)
	for k, v := range p {
		assert.InDelta(t, v, back[k], 1e-15)
	}
	_, present := back["1"]
	assert.False(t, present, "zero entries are omitted by default")
}

// TestUnpack_Options exercises WithZeros and WithThreshold.
func TestUnpack_Options(t *testing.T) {
	e := mustEnum(t, state.State{0}, state.State{1}, state.State{2})
	dense := []float64{0.9, 1e-14, 0}

	all, err := e.Unpack(dense, state.WithZeros())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	trimmed, err := e.Unpack(dense, state.WithThreshold(1e-12))
	require.NoError(t, err)
	assert.Equal(t, state.Sparse{"0": 0.9}, trimmed)

	_, err = e.Unpack([]float64{1})
	require.ErrorIs(t, err, state.ErrDimensionMismatch)

	assert.Panics(t, func() { state.WithThreshold(-1) })
}

// TestPack_LossWithoutOptIn ensures no partial write happens on ErrPackingLoss.
func TestPack_LossWithoutOptIn(t *testing.T) {
	e := mustEnum(t, state.State{0}, state.State{1})
	p := state.Sparse{"0": 0.7, "5": 0.3}

	dense, rem, err := e.Pack(p)
	require.ErrorIs(t, err, state.ErrPackingLoss)
	assert.Nil(t, dense, "no dense vector on failure")
	assert.Equal(t, 0.0, rem)
}

// TestPack_DiscardReturnsRemainder verifies the opted-in loss path.
func TestPack_DiscardReturnsRemainder(t *testing.T) {
	e := mustEnum(t, state.State{0}, state.State{1})
	p := state.Sparse{"0": 0.5, "5": 0.3, "6": 0.2}

	dense, rem, err := e.Pack(p, state.WithDiscard())
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0}, dense)
	assert.InDelta(t, 0.5, rem, 1e-15)
}

// TestPack_InvalidProbability rejects negatives and NaN.
func TestPack_InvalidProbability(t *testing.T) {
	e := mustEnum(t, state.State{0})
	_, _, err := e.Pack(state.Sparse{"0": -0.1})
	require.ErrorIs(t, err, state.ErrInvalidProbability)
}

// TestPack_ZeroMassOutsideIsNotLoss allows explicit zeros for absent states.
func TestPack_ZeroMassOutsideIsNotLoss(t *testing.T) {
	e := mustEnum(t, state.State{0})
	dense, rem, err := e.Pack(state.Sparse{"0": 1, "4": 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, dense)
	assert.Equal(t, 0.0, rem)
}

// TestRemap moves a vector into a grown enum and refuses to shrink with mass.
func TestRemap(t *testing.T) {
	small := mustEnum(t, state.State{0}, state.State{1})
	big := mustEnum(t, state.State{0}, state.State{2}, state.State{1})

	out, err := big.Remap(small, []float64{0.4, 0.6})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 0, 0.6}, out)

	_, err = small.Remap(big, []float64{0.1, 0.2, 0.7})
	require.ErrorIs(t, err, state.ErrPackingLoss)

	back, err := small.Remap(big, []float64{0.3, 0, 0.7})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.7}, back)

	_, err = big.Remap(small, []float64{1})
	require.ErrorIs(t, err, state.ErrDimensionMismatch)
}
