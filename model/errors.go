// SPDX-License-Identifier: MIT

package model

import "errors"

// Sentinel errors for model construction and loading.
var (
	// ErrInvalidModel is returned by Validate for structurally broken models
	// (no species, delta of the wrong length, missing propensity, ...).
	ErrInvalidModel = errors.New("model: invalid model")

	// ErrUnknownReaction is returned when a time dependency names a reaction
	// that the model does not have.
	ErrUnknownReaction = errors.New("model: unknown reaction")

	// ErrUnknownSpecies is returned by the YAML loader for species names not
	// listed under species.
	ErrUnknownSpecies = errors.New("model: unknown species")

	// ErrInvalidRate flags negative or non-finite rate constants.
	ErrInvalidRate = errors.New("model: invalid rate")
)
