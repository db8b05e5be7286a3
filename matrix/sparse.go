// SPDX-License-Identifier: MIT

// Package matrix - sparse accumulation (Triplets) and compressed-row storage (CSR).
//
// Purpose:
//   - Triplets collects (row, col, value) contributions in any order, which is
//     the natural shape of a generator assembled state by state, reaction by
//     reaction.
//   - CSR freezes the contributions into compressed rows for fast MulVec.
//
// Determinism:
//   - ToCSR orders entries by (row, col) with a stable sort and sums
//     duplicates in insertion order, so identical assembly sequences give
//     bit-identical matrices.
//
// Complexity quicksheet:
//   - Add: O(1) amortized; ToCSR: O(nnz log nnz); MulVec: O(nnz).

package matrix

import (
	"fmt"
	"math"
	"sort"
)

// Triplets is a coordinate-format accumulator for an r×c sparse matrix.
type Triplets struct {
	r, c int
	rows []int
	cols []int
	vals []float64
}

// NewTriplets returns an empty accumulator for an r×c matrix with capacity
// for capHint entries.
func NewTriplets(r, c, capHint int) (*Triplets, error) {
	if r <= 0 || c <= 0 {
		return nil, matrixErrorf(opTriplets, ErrInvalidDimensions)
	}
	if capHint < 0 {
		capHint = 0
	}

	return &Triplets{
		r:    r,
		c:    c,
		rows: make([]int, 0, capHint),
		cols: make([]int, 0, capHint),
		vals: make([]float64, 0, capHint),
	}, nil
}

// Add records the contribution v at (i, j). Repeated coordinates are summed
// by ToCSR. Explicit zeros are kept so callers can reserve structure.
func (t *Triplets) Add(i, j int, v float64) error {
	if i < 0 || i >= t.r || j < 0 || j >= t.c {
		return matrixErrorf(opTriplets, fmt.Errorf("Add(%d,%d): %w", i, j, ErrOutOfRange))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return matrixErrorf(opTriplets, fmt.Errorf("Add(%d,%d): %w", i, j, ErrNaNInf))
	}
	t.rows = append(t.rows, i)
	t.cols = append(t.cols, j)
	t.vals = append(t.vals, v)

	return nil
}

// Len returns the number of recorded contributions (before merging).
func (t *Triplets) Len() int { return len(t.vals) }

// ToCSR compresses the accumulated contributions.
// Implementation:
//   - Stage 1: stable-sort a permutation by (row, col).
//   - Stage 2: merge equal coordinates, summing in insertion order.
//   - Stage 3: build the row pointer array.
func (t *Triplets) ToCSR() *CSR {
	perm := make([]int, len(t.vals))
	for k := range perm {
		perm[k] = k
	}
	sort.SliceStable(perm, func(a, b int) bool {
		pa, pb := perm[a], perm[b]
		if t.rows[pa] != t.rows[pb] {
			return t.rows[pa] < t.rows[pb]
		}
		return t.cols[pa] < t.cols[pb]
	})

	m := &CSR{
		r:       t.r,
		c:       t.c,
		indptr:  make([]int, t.r+1),
		indices: make([]int, 0, len(perm)),
		values:  make([]float64, 0, len(perm)),
	}
	lastRow, lastCol := -1, -1
	for _, k := range perm {
		i, j, v := t.rows[k], t.cols[k], t.vals[k]
		if i == lastRow && j == lastCol {
			m.values[len(m.values)-1] += v
			continue
		}
		m.indices = append(m.indices, j)
		m.values = append(m.values, v)
		m.indptr[i+1]++
		lastRow, lastCol = i, j
	}
	for i := 0; i < t.r; i++ { // prefix sums turn counts into offsets
		m.indptr[i+1] += m.indptr[i]
	}

	return m
}

// CSR is an immutable compressed-sparse-row matrix.
// Row i owns indices[indptr[i]:indptr[i+1]] (strictly increasing columns)
// and the matching values.
type CSR struct {
	r, c    int
	indptr  []int
	indices []int
	values  []float64
}

// Compile-time assertions.
var (
	_ LinearOperator = (*CSR)(nil)
	_ Diagonaler     = (*CSR)(nil)
)

// Rows returns the number of rows.
func (m *CSR) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *CSR) Cols() int { return m.c }

// NNZ returns the number of stored entries (explicit zeros included).
func (m *CSR) NNZ() int { return len(m.values) }

// At returns the entry at (i, j), zero when it is not stored.
// Complexity: O(log nnz(row i)).
func (m *CSR) At(i, j int) (float64, error) {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return 0, fmt.Errorf("CSR.At(%d,%d): %w", i, j, ErrOutOfRange)
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	k := lo + sort.SearchInts(m.indices[lo:hi], j)
	if k < hi && m.indices[k] == j {
		return m.values[k], nil
	}

	return 0, nil
}

// MulVec writes y = m·x.
// Complexity: O(nnz).
func (m *CSR) MulVec(x, y []float64) error {
	if err := ValidateVecLen(x, m.c); err != nil {
		return matrixErrorf(opMulVec, err)
	}
	if err := ValidateVecLen(y, m.r); err != nil {
		return matrixErrorf(opMulVec, err)
	}
	var i, k int
	var acc float64
	for i = 0; i < m.r; i++ {
		acc = 0
		for k = m.indptr[i]; k < m.indptr[i+1]; k++ {
			acc += m.values[k] * x[m.indices[k]]
		}
		y[i] = acc
	}

	return nil
}

// Diagonal returns a fresh slice with the diagonal entries (zero where the
// diagonal is not stored). Defined for any shape; length is min(r, c).
func (m *CSR) Diagonal() []float64 {
	n := m.r
	if m.c < n {
		n = m.c
	}
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		d[i], _ = m.At(i, i) // indices are in range by construction
	}

	return d
}

// ColumnSums returns the sum of every column.
func (m *CSR) ColumnSums() []float64 {
	s := make([]float64, m.c)
	for k, j := range m.indices {
		s[j] += m.values[k]
	}

	return s
}

// IdentityPlus returns I + beta·m as a new CSR. m must be square.
// Rows that do not store a diagonal entry gain one.
// Complexity: O(nnz + r).
func (m *CSR) IdentityPlus(beta float64) (*CSR, error) {
	if m.r != m.c {
		return nil, matrixErrorf(opIdentity, ErrDimensionMismatch)
	}
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil, matrixErrorf(opIdentity, ErrNaNInf)
	}
	out := &CSR{
		r:       m.r,
		c:       m.c,
		indptr:  make([]int, m.r+1),
		indices: make([]int, 0, len(m.indices)+m.r),
		values:  make([]float64, 0, len(m.values)+m.r),
	}
	var i, k int
	for i = 0; i < m.r; i++ {
		placed := false
		for k = m.indptr[i]; k < m.indptr[i+1]; k++ {
			j := m.indices[k]
			if !placed && j > i { // diagonal missing: insert before first j>i
				out.indices = append(out.indices, i)
				out.values = append(out.values, 1)
				placed = true
			}
			v := beta * m.values[k]
			if j == i {
				v += 1
				placed = true
			}
			out.indices = append(out.indices, j)
			out.values = append(out.values, v)
		}
		if !placed {
			out.indices = append(out.indices, i)
			out.values = append(out.values, 1)
		}
		out.indptr[i+1] = len(out.values)
	}

	return out, nil
}

// ToDense materializes m as a *Dense.
func (m *CSR) ToDense() (*Dense, error) {
	d, err := NewDense(m.r, m.c)
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.r; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			d.data[i*m.c+m.indices[k]] = m.values[k]
		}
	}

	return d, nil
}

// Each calls fn for every stored entry in (row, col) order.
func (m *CSR) Each(fn func(i, j int, v float64)) {
	for i := 0; i < m.r; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			fn(i, m.indices[k], m.values[k])
		}
	}
}
