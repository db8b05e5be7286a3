// SPDX-License-Identifier: MIT

package fsp

import "errors"

// Sentinel errors for the driver.
var (
	// ErrInvalidStep is returned for a target before the committed time or a
	// non-positive or non-finite budget. The Solver is left unchanged.
	ErrInvalidStep = errors.New("fsp: invalid step")

	// ErrDomainSizeExceeded is returned when an expansion exceeds the domain
	// limit or fails to add any state.
	ErrDomainSizeExceeded = errors.New("fsp: domain size exceeded")

	// ErrIntegrationDivergence wraps ode.ErrDivergence.
	ErrIntegrationDivergence = errors.New("fsp: integration diverged")

	// ErrInvalidSetup is returned by Create for inconsistent inputs.
	ErrInvalidSetup = errors.New("fsp: invalid setup")
)
