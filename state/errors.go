// SPDX-License-Identifier: MIT

package state

import (
	"errors"
	"fmt"
)

// Every message is prefixed with "state: " so it can be grepped out of logs.
// Call sites wrap with stateErrorf to attach the offending state or index;
// callers match with errors.Is.
var (
	// ErrDuplicateState is returned when an Enum is built from a sequence that
	// contains the same state twice.
	ErrDuplicateState = errors.New("state: duplicate state")

	// ErrUnknownState is returned when a state is looked up in an Enum that
	// does not contain it.
	ErrUnknownState = errors.New("state: unknown state")

	// ErrPackingLoss is returned when packing or remapping would drop
	// probability mass and the caller did not opt into discarding it.
	ErrPackingLoss = errors.New("state: probability mass outside enumeration")

	// ErrInvalidState flags negative components or a dimension that differs
	// from the rest of the collection.
	ErrInvalidState = errors.New("state: invalid state")

	// ErrInvalidProbability flags negative, NaN or ±Inf probabilities.
	ErrInvalidProbability = errors.New("state: invalid probability")

	// ErrDimensionMismatch flags a dense vector whose length differs from the
	// enumeration size.
	ErrDimensionMismatch = errors.New("state: dimension mismatch")

	// ErrMalformedKey is returned by Key.State for strings that are not a
	// comma-separated list of non-negative integers.
	ErrMalformedKey = errors.New("state: malformed key")
)

// stateErrorf wraps err with an operation tag and a detail, preserving the
// sentinel for errors.Is.
func stateErrorf(op string, detail any, err error) error {
	return fmt.Errorf("%s(%v): %w", op, detail, err)
}
