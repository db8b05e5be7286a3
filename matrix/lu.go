// SPDX-License-Identifier: MIT

package matrix

import "fmt"

// ZeroPivot is the sentinel for detecting a zero pivot in LU.
const ZeroPivot = 0.0

// LUFactors holds a Doolittle factorization A = L·U of an n×n matrix in a
// single packed buffer: U on and above the diagonal, the strict lower part
// of L below it (L has an implicit unit diagonal).
type LUFactors struct {
	n  int
	lu []float64 // row-major n×n
}

// LU computes the Doolittle factorization A = L*U with unit diagonal on L
// (no pivoting).
// Implementation:
//   - Stage 1: Validate m (not nil, square); copy it into a packed buffer.
//   - Stage 2: For k=0..n-1 eliminate below the pivot in fixed i→j order.
//
// Behavior highlights:
//   - Deterministic loops; fast path uses direct flat indexing; zero-pivot guard enforced.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrSingular (if U[k,k]==0 during factorization).
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
//
// Notes:
//   - Stable without pivoting for diagonally dominant input, which is what
//     the implicit integrator produces (see package doc).
func LU(m Matrix) (*LUFactors, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opLU, err)
	}
	n := m.Rows()
	f := &LUFactors{n: n, lu: make([]float64, n*n)}

	// Stage 1: copy input (fast path for *Dense).
	if d, ok := m.(*Dense); ok {
		copy(f.lu, d.data)
	} else {
		var i, j int
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				v, err := m.At(i, j)
				if err != nil {
					return nil, matrixErrorf(opLU, fmt.Errorf("At(%d,%d): %w", i, j, err))
				}
				f.lu[i*n+j] = v
			}
		}
	}

	// Stage 2: in-place elimination.
	a := f.lu
	var i, j, k, baseI, baseK int
	var pivot, l float64
	for k = 0; k < n; k++ {
		baseK = k * n
		pivot = a[baseK+k]
		if pivot == ZeroPivot {
			return nil, matrixErrorf(opLU, ErrSingular)
		}
		for i = k + 1; i < n; i++ {
			baseI = i * n
			if a[baseI+k] == 0 { // skip structurally empty rows (sparse-ish input)
				continue
			}
			l = a[baseI+k] / pivot
			a[baseI+k] = l
			for j = k + 1; j < n; j++ {
				a[baseI+j] -= l * a[baseK+j]
			}
		}
	}

	return f, nil
}

// N returns the dimension of the factored matrix.
func (f *LUFactors) N() int { return f.n }

// Solve writes the solution of A·x = b into x (x and b may alias).
// Forward substitution with unit-diagonal L, then back substitution with U.
// Complexity: O(n^2).
func (f *LUFactors) Solve(b, x []float64) error {
	if err := ValidateVecLen(b, f.n); err != nil {
		return matrixErrorf(opSolve, err)
	}
	if err := ValidateVecLen(x, f.n); err != nil {
		return matrixErrorf(opSolve, err)
	}
	n, a := f.n, f.lu
	if &x[0] != &b[0] {
		copy(x, b)
	}
	var i, j, base int
	var sum float64
	// L·y = b
	for i = 1; i < n; i++ {
		base = i * n
		sum = x[i]
		for j = 0; j < i; j++ {
			sum -= a[base+j] * x[j]
		}
		x[i] = sum
	}
	// U·x = y
	for i = n - 1; i >= 0; i-- {
		base = i * n
		sum = x[i]
		for j = i + 1; j < n; j++ {
			sum -= a[base+j] * x[j]
		}
		x[i] = sum / a[base+i]
	}

	return nil
}
