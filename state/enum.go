// SPDX-License-Identifier: MIT

package state

import "math"

// Enum is an immutable bijection between a finite sequence of distinct
// States and the dense indices 0..Size()-1. The index of a state is its
// position in the sequence the Enum was built from.
//
// Enums are safe for concurrent reads.
type Enum struct {
	states []State
	index  map[Key]int
	dim    int
}

// NewEnum builds an Enum over states in the given order.
// Implementation:
//   - Stage 1: validate every state (non-negative, same dimension).
//   - Stage 2: assign index = position; a repeated Key aborts the build.
//
// Errors:
//   - ErrDuplicateState if any state repeats.
//   - ErrInvalidState   for negative components or mixed dimensions.
//
// Complexity: O(n·d) time, O(n) space.
func NewEnum(states []State) (*Enum, error) {
	e := &Enum{
		states: make([]State, len(states)),
		index:  make(map[Key]int, len(states)),
		dim:    -1,
	}
	for i, s := range states {
		if !s.Feasible() || (e.dim >= 0 && len(s) != e.dim) {
			return nil, stateErrorf("NewEnum", s, ErrInvalidState)
		}
		if e.dim < 0 {
			e.dim = len(s)
		}
		k := s.Key()
		if _, dup := e.index[k]; dup {
			return nil, stateErrorf("NewEnum", s, ErrDuplicateState)
		}
		e.index[k] = i
		e.states[i] = s.Clone()
	}

	return e, nil
}

// Size returns the number of enumerated states.
func (e *Enum) Size() int { return len(e.states) }

// Dim returns the component count of the states, or -1 when empty.
func (e *Enum) Dim() int { return e.dim }

// IndexOf returns the dense index of s, or ErrUnknownState.
func (e *Enum) IndexOf(s State) (int, error) {
	i, ok := e.index[s.Key()]
	if !ok {
		return -1, stateErrorf("Enum.IndexOf", s, ErrUnknownState)
	}

	return i, nil
}

// IndexOfKey is IndexOf for an already-encoded state.
func (e *Enum) IndexOfKey(k Key) (int, error) {
	i, ok := e.index[k]
	if !ok {
		return -1, stateErrorf("Enum.IndexOfKey", string(k), ErrUnknownState)
	}

	return i, nil
}

// lookup is the allocation-free internal form of IndexOfKey.
func (e *Enum) lookup(k Key) (int, bool) {
	i, ok := e.index[k]
	return i, ok
}

// Contains reports whether s is enumerated.
func (e *Enum) Contains(s State) bool {
	_, ok := e.index[s.Key()]
	return ok
}

// At returns the state with dense index i. Panics when i is out of range,
// like slice indexing.
func (e *Enum) At(i int) State { return e.states[i] }

// States returns the enumerated states in index order (a copy of the slice;
// the states themselves must not be mutated).
func (e *Enum) States() []State {
	out := make([]State, len(e.states))
	copy(out, e.states)

	return out
}

// Domain returns a fresh Domain holding the enumerated states in order.
func (e *Enum) Domain() *Domain {
	d := &Domain{
		states: make([]State, len(e.states)),
		index:  make(map[Key]int, len(e.index)),
		dim:    e.dim,
	}
	copy(d.states, e.states)
	for k, i := range e.index {
		d.index[k] = i
	}

	return d
}

// Pack converts a sparse distribution into a dense vector over e.
//
// States of p that e does not contain carry mass that cannot be represented.
// By default this fails with ErrPackingLoss. With WithDiscard the mass is
// dropped and returned as remainder so the caller can account for it (for
// example by adding it to a sink).
//
// Implementation:
//   - Stage 1: validate every probability and classify every key (no writes).
//   - Stage 2: allocate and fill the dense vector.
//
// A failing Pack never returns a partially written vector.
// Complexity: O(|p|·d + n).
func (e *Enum) Pack(p Sparse, opts ...PackOption) (dense []float64, remainder float64, err error) {
	o := defaultPackOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// Stage 1: classify in sorted key order so remainder is reproducible.
	keys := p.SortedKeys()
	for _, k := range keys {
		v := p[k]
		if !validProbability(v) {
			return nil, 0, stateErrorf("Enum.Pack", string(k), ErrInvalidProbability)
		}
		if _, ok := e.lookup(k); ok {
			continue
		}
		if !o.discard && v != 0 {
			return nil, 0, stateErrorf("Enum.Pack", string(k), ErrPackingLoss)
		}
		remainder += v
	}

	// Stage 2: write.
	dense = make([]float64, len(e.states))
	for _, k := range keys {
		if i, ok := e.lookup(k); ok {
			dense[i] = p[k]
		}
	}

	return dense, remainder, nil
}

// Unpack converts a dense vector over e into a sparse distribution.
// Zero entries are omitted unless WithZeros is given; WithThreshold(eps)
// additionally drops entries whose magnitude is at most eps.
// Returns ErrDimensionMismatch when len(dense) != Size().
// Complexity: O(n·d).
func (e *Enum) Unpack(dense []float64, opts ...UnpackOption) (Sparse, error) {
	if len(dense) != len(e.states) {
		return nil, stateErrorf("Enum.Unpack", len(dense), ErrDimensionMismatch)
	}
	o := defaultUnpackOptions()
	for _, opt := range opts {
		opt(&o)
	}

	out := make(Sparse, len(dense))
	for i, v := range dense {
		if !o.keepZeros && math.Abs(v) <= o.threshold {
			continue
		}
		out[e.states[i].Key()] = v
	}

	return out, nil
}

// Remap moves a dense vector defined over from into e's index space.
// States present in both keep their probability; states only in e start at
// zero. Non-zero mass on a state that e lacks fails with ErrPackingLoss,
// so growing an Enum never loses probability.
// Complexity: O(n_from + n_e).
func (e *Enum) Remap(from *Enum, dense []float64) ([]float64, error) {
	if len(dense) != from.Size() {
		return nil, stateErrorf("Enum.Remap", len(dense), ErrDimensionMismatch)
	}
	out := make([]float64, len(e.states))
	for i, s := range from.states {
		j, ok := e.lookup(s.Key())
		if !ok {
			if dense[i] != 0 {
				return nil, stateErrorf("Enum.Remap", s, ErrPackingLoss)
			}
			continue
		}
		out[j] = dense[i]
	}

	return out, nil
}
