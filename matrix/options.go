// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the iterative solver.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//   - Defaults live in constants (single source of truth).

package matrix

import "math"

// Defaults for BiCGSTAB.
const (
	// DefaultTolerance is the relative residual ‖b − A·x‖ / ‖b‖ at which
	// BiCGSTAB stops.
	DefaultTolerance = 1e-12

	// DefaultMaxIterations caps BiCGSTAB iterations. Zero means 2·n.
	DefaultMaxIterations = 0

	// DefaultJacobi enables diagonal preconditioning when the operator
	// implements Diagonaler.
	DefaultJacobi = true
)

// unlimitedRestarts leaves restarts bounded only by the iteration cap.
const unlimitedRestarts = -1

const (
	panicToleranceInvalid = "matrix: WithTolerance: tol must be finite and > 0"
	panicMaxIterInvalid   = "matrix: WithMaxIterations: n must be >= 0"
	panicRestartsInvalid  = "matrix: WithMaxRestarts: n must be >= 0"
)

// SolveOption mutates SolveOptions. Safe to apply repeatedly.
type SolveOption func(*SolveOptions)

// SolveOptions is the effective iterative-solver configuration.
type SolveOptions struct {
	tol         float64
	maxIter     int
	jacobi      bool
	maxRestarts int
}

// WithTolerance sets the relative residual target.
// Panics when tol is not a finite positive number.
func WithTolerance(tol float64) SolveOption {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(panicToleranceInvalid)
	}
	return func(o *SolveOptions) { o.tol = tol }
}

// WithMaxIterations caps the iteration count; 0 restores the 2·n default.
func WithMaxIterations(n int) SolveOption {
	if n < 0 {
		panic(panicMaxIterInvalid)
	}
	return func(o *SolveOptions) { o.maxIter = n }
}

// WithMaxRestarts caps shadow-residual restarts after a ρ or r̂·v
// breakdown; 0 reports the first breakdown. By default restarts are bounded
// only by the iteration cap.
func WithMaxRestarts(n int) SolveOption {
	if n < 0 {
		panic(panicRestartsInvalid)
	}
	return func(o *SolveOptions) { o.maxRestarts = n }
}

// WithoutPreconditioner disables Jacobi preconditioning.
func WithoutPreconditioner() SolveOption {
	return func(o *SolveOptions) { o.jacobi = false }
}

// gatherSolveOptions applies setters on top of the defaults (last-writer-wins).
func gatherSolveOptions(n int, user ...SolveOption) SolveOptions {
	o := SolveOptions{
		tol:         DefaultTolerance,
		maxIter:     DefaultMaxIterations,
		jacobi:      DefaultJacobi,
		maxRestarts: unlimitedRestarts,
	}
	for _, set := range user {
		set(&o)
	}
	if o.maxIter == 0 {
		o.maxIter = 2 * n
		if o.maxIter < 20 {
			o.maxIter = 20
		}
	}
	if o.maxRestarts == unlimitedRestarts {
		o.maxRestarts = o.maxIter
	}

	return o
}
