// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All kernels return these sentinels (optionally wrapped with an operation
// tag via matrixErrorf) and tests match them with errors.Is.

package matrix

import (
	"errors"
	"fmt"
)

// Every message is prefixed with "matrix: ..." for consistency and easy
// grepping across logs. Wrap with matrixErrorf at the detection site;
// callers still match with errors.Is.
var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g. a vector whose length differs from the operator size.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNilMatrix indicates that a nil matrix or vector was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrSingular is returned when a zero pivot is met during LU factorization.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrNotConverged is returned when an iterative solver exhausts its
	// iteration budget before reaching the requested tolerance.
	ErrNotConverged = errors.New("matrix: iterative solver did not converge")

	// ErrBreakdown is returned when a Krylov recurrence hits an exact zero
	// denominator before convergence.
	ErrBreakdown = errors.New("matrix: iterative solver breakdown")
)

// Operation tags for uniform error wrapping.
const (
	opLU       = "LU"
	opSolve    = "LU.Solve"
	opMulVec   = "CSR.MulVec"
	opTriplets = "Triplets"
	opIdentity = "CSR.IdentityPlus"
	opBiCGSTAB = "BiCGSTAB"
)

// matrixErrorf wraps err with an operation tag, preserving it for errors.Is.
// Call only with err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// denseErrorf wraps an error with Dense method context and coordinates.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}
