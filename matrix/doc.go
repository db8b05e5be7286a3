// SPDX-License-Identifier: MIT

// Package matrix provides the linear-algebra kernels used by the stiff
// integrator of the FSP solver.
//
// The package provides:
//
//   - Dense: a row-major float64 matrix with bounds-checked accessors.
//   - LU: a Doolittle factorization (no pivoting) with forward/back
//     substitution, used for small implicit systems.
//   - Triplets → CSR: an explicit sparse accumulation structure and its
//     compressed-row form, built deterministically (row, then column order,
//     duplicates summed in insertion order).
//   - BiCGSTAB: a Jacobi-preconditioned Krylov solver over any
//     LinearOperator, used for large implicit systems.
//
// Numeric policy
//
//	Every public entry rejects NaN/±Inf on ingestion (Set, Triplets.Add) and
//	reports misuse with the sentinels in errors.go. No kernel panics on
//	user-triggered conditions.
//
// Determinism
//
//	All loops run in fixed index order and no kernel iterates a map, so two
//	runs over identical inputs produce bit-identical results.
//
// Why no pivoting in LU
//
//	The matrices factored here have the form I − h·A where A is a truncated
//	CME generator: off-diagonals are non-negative and every column sums to a
//	non-positive value. I − h·A is therefore strictly column diagonally
//	dominant, for which Gaussian elimination without pivoting is stable.
package matrix
