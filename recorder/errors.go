// SPDX-License-Identifier: MIT

package recorder

import "errors"

// Sentinel errors for recording and storage.
var (
	// ErrUnknownSpecies is returned for a species name the Recorder does not track.
	ErrUnknownSpecies = errors.New("recorder: unknown species")

	// ErrTimeOrder is returned when Write times decrease.
	ErrTimeOrder = errors.New("recorder: time must not decrease")

	// ErrOutOfRange is returned for a time index outside [0, len(Times())).
	ErrOutOfRange = errors.New("recorder: time index out of range")

	// ErrCountsMismatch is returned when the counts function returns the
	// wrong number of values.
	ErrCountsMismatch = errors.New("recorder: counts do not match species")

	// ErrNotFound is returned by Store lookups that match nothing.
	ErrNotFound = errors.New("recorder: not found")
)
