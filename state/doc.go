// SPDX-License-Identifier: MIT

// Package state provides the discrete state space primitives of a
// Finite State Projection solver: molecular-count states, sparse
// distributions, domains (ordered state sets) and enumerations (the
// bijection between a domain and dense array indices).
//
// What
//
//   - State: one non-negative count per species, compared by value.
//   - Key: canonical, hashable encoding of a State ("3,0,12").
//   - Sparse: a State→probability mapping, omitted states are zero.
//   - Domain: a duplicate-free set of States with first-seen order.
//   - Enum: an immutable Domain snapshot with State↔index lookups and
//     sparse↔dense conversions (Pack, Unpack, Remap).
//
// Determinism
//
//	A Domain remembers the order in which states were first added and an
//	Enum assigns indices in exactly that order. Two runs that build their
//	domains from the same sequence of inputs produce identical Enums, which
//	is what gives a dense probability vector its meaning across runs.
//
// Ownership
//
//	An Enum never changes after construction. Growing the state space means
//	building a new Domain (Union, or the expander) and a new Enum, then moving
//	the dense vector across with Enum.Remap.
//
// Errors
//
//   - ErrDuplicateState     if an Enum is built from a repeated state.
//   - ErrUnknownState       if an index lookup targets an absent state.
//   - ErrPackingLoss        if a sparse distribution carries mass outside the
//     enum and the caller did not opt into WithDiscard.
//   - ErrInvalidState       for negative components or mixed dimensions.
//   - ErrInvalidProbability for negative or non-finite probabilities.
//   - ErrDimensionMismatch  for dense vectors of the wrong length.
//   - ErrMalformedKey       when a Key cannot be parsed back into a State.
package state
