// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

// Shape and value checks shared by Dense, LU, CSR and BiCGSTAB. Each returns
// a sentinel wrapped with the check's name, so callers can still match it
// with errors.Is. None of them allocate on success.

func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateSquare rejects a nil or non-square m.
func ValidateSquare(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateSquare", ErrNilMatrix)
	}
	if r, c := m.Rows(), m.Cols(); r != c {
		return validatorErrorf(fmt.Sprintf("ValidateSquare(%dx%d)", r, c), ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen rejects a nil vector or one whose length is not n.
// Nil is refused even for n == 0 so MulVec-style kernels never see it.
func ValidateVecLen(x []float64, n int) error {
	switch {
	case x == nil:
		return validatorErrorf("ValidateVecLen", ErrNilMatrix)
	case len(x) != n:
		return validatorErrorf(fmt.Sprintf("ValidateVecLen(%d!=%d)", len(x), n), ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite reports the first NaN or ±Inf entry of x by index.
func ValidateFinite(x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf(fmt.Sprintf("ValidateFinite[%d]", i), ErrNaNInf)
		}
	}

	return nil
}
