// SPDX-License-Identifier: MIT

package matrix

// Matrix represents a two-dimensional mutable array of float64 values.
// Complexity: all methods are expected O(1) except Clone (O(r*c)).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i or j is outside the matrix.
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange for invalid indices and ErrNaNInf for non-finite v.
	Set(i, j int, v float64) error

	// Clone returns a deep copy of the matrix.
	Clone() Matrix
}

// LinearOperator is anything that can compute y = A·x for a square A.
// Iterative solvers accept a LinearOperator so they never need the entries.
type LinearOperator interface {
	// Rows returns the operator dimension.
	Rows() int

	// MulVec writes A·x into y. len(x) and len(y) must equal Rows().
	MulVec(x, y []float64) error
}

// Diagonaler is implemented by operators that can expose their diagonal;
// BiCGSTAB uses it for Jacobi preconditioning when available.
type Diagonaler interface {
	Diagonal() []float64
}
