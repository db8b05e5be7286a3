// SPDX-License-Identifier: MIT
package matrix_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/katalvlaran/cmefsp/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainSystem builds I − h·A for a pure-death chain of n states with unit
// rates, the shape the implicit integrator hands to BiCGSTAB.
func chainSystem(t *testing.T, n int, h float64) *matrix.CSR {
	t.Helper()
	tr, err := matrix.NewTriplets(n, n, 2*n)
	require.NoError(t, err)
	for j := 1; j < n; j++ {
		rate := float64(j)
		require.NoError(t, tr.Add(j, j, -rate))
		require.NoError(t, tr.Add(j-1, j, rate))
	}
	a := tr.ToCSR()
	m, err := a.IdentityPlus(-h)
	require.NoError(t, err)

	return m
}

// TestBiCGSTAB_MatchesLU solves the same system both ways.
func TestBiCGSTAB_MatchesLU(t *testing.T) {
	const n = 40
	m := chainSystem(t, n, 0.3)
	b := make([]float64, n)
	for i := range b {
		b[i] = 1 / float64(n)
	}

	x := make([]float64, n)
	stats, err := matrix.BiCGSTAB(m, b, x, matrix.WithTolerance(1e-13))
	require.NoError(t, err)
	assert.LessOrEqual(t, stats.Residual, 1e-13)
	assert.Positive(t, stats.Iterations)

	d, err := m.ToDense()
	require.NoError(t, err)
	f, err := matrix.LU(d)
	require.NoError(t, err)
	want := make([]float64, n)
	require.NoError(t, f.Solve(b, want))

	assert.InDeltaSlice(t, want, x, 1e-10)
}

// TestBiCGSTAB_ZeroRHS returns the zero vector without iterating.
func TestBiCGSTAB_ZeroRHS(t *testing.T) {
	m := chainSystem(t, 5, 1)
	x := []float64{1, 2, 3, 4, 5}
	stats, err := matrix.BiCGSTAB(m, make([]float64, 5), x)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Iterations)
	assert.Equal(t, make([]float64, 5), x)
}

// TestBiCGSTAB_Unpreconditioned still converges on a well-conditioned system.
func TestBiCGSTAB_Unpreconditioned(t *testing.T) {
	m := chainSystem(t, 10, 0.1)
	b := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	x := make([]float64, 10)
	_, err := matrix.BiCGSTAB(m, b, x, matrix.WithoutPreconditioner())
	require.NoError(t, err)

	r := make([]float64, 10)
	require.NoError(t, m.MulVec(x, r))
	assert.InDeltaSlice(t, b, r, 1e-10)
}

// TestBiCGSTAB_Errors covers bad vectors, nil operator and the iteration cap.
func TestBiCGSTAB_Errors(t *testing.T) {
	m := chainSystem(t, 30, 5)
	_, err := matrix.BiCGSTAB(m, make([]float64, 3), make([]float64, 30))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.BiCGSTAB(nil, nil, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	b := make([]float64, 30)
	b[29] = 1
	_, err = matrix.BiCGSTAB(m, b, make([]float64, 30),
		matrix.WithMaxIterations(1), matrix.WithTolerance(1e-300), matrix.WithoutPreconditioner())
	require.ErrorIs(t, err, matrix.ErrNotConverged)

	assert.Panics(t, func() { matrix.WithTolerance(0) })
	assert.Panics(t, func() { matrix.WithMaxIterations(-1) })
}

// unitBirthChain builds the lower-bidiagonal system with unit diagonal and
// -c below it. From x = 0 and b = e₀ the first step solves component 0
// exactly, so ρ = r̂·r is exactly zero on the next iteration.
func unitBirthChain(t *testing.T, n int, c float64) *matrix.CSR {
	t.Helper()
	tr, err := matrix.NewTriplets(n, n, 2*n)
	require.NoError(t, err)
	for j := 0; j < n; j++ {
		require.NoError(t, tr.Add(j, j, 1))
		if j+1 < n {
			require.NoError(t, tr.Add(j+1, j, -c))
		}
	}

	return tr.ToCSR()
}

// TestBiCGSTAB_RestartsOnBirthChain recovers from an exact ρ breakdown.
func TestBiCGSTAB_RestartsOnBirthChain(t *testing.T) {
	const n = 30
	m := unitBirthChain(t, n, 0.5)
	b := make([]float64, n)
	b[0] = 1

	_, err := matrix.BiCGSTAB(m, b, make([]float64, n), matrix.WithoutPreconditioner(), matrix.WithMaxRestarts(0))
	require.ErrorIs(t, err, matrix.ErrBreakdown)

	x := make([]float64, n)
	stats, err := matrix.BiCGSTAB(m, b, x, matrix.WithoutPreconditioner())
	require.NoError(t, err)
	assert.Positive(t, stats.Restarts)

	// x_k = 0.5^k solves the chain.
	want := make([]float64, n)
	for k := range want {
		want[k] = math.Pow(0.5, float64(k))
	}
	assert.InDeltaSlice(t, want, x, 1e-10)

	assert.Panics(t, func() { matrix.WithMaxRestarts(-1) })
}

// TestBiCGSTAB_BirthChainSweep solves I − h·A for birth chains of several
// sizes and steps, the systems the integrator builds, against LU.
func TestBiCGSTAB_BirthChainSweep(t *testing.T) {
	for _, n := range []int{10, 50, 120} {
		for _, h := range []float64{0.01, 0.1, 0.5} {
			t.Run(fmt.Sprintf("n=%d/h=%g", n, h), func(t *testing.T) {
				tr, err := matrix.NewTriplets(n, n, 2*n)
				require.NoError(t, err)
				for j := 0; j < n; j++ {
					require.NoError(t, tr.Add(j, j, -1))
					if j+1 < n {
						require.NoError(t, tr.Add(j+1, j, 1))
					}
				}
				m, err := tr.ToCSR().IdentityPlus(-h)
				require.NoError(t, err)

				b := make([]float64, n)
				b[0] = 1
				x := make([]float64, n)
				_, err = matrix.BiCGSTAB(m, b, x)
				require.NoError(t, err)

				d, err := m.ToDense()
				require.NoError(t, err)
				f, err := matrix.LU(d)
				require.NoError(t, err)
				want := make([]float64, n)
				require.NoError(t, f.Solve(b, want))
				assert.InDeltaSlice(t, want, x, 1e-9)
			})
		}
	}
}

// ExampleBiCGSTAB solves a tiny diagonal system.
func ExampleBiCGSTAB() {
	tr, _ := matrix.NewTriplets(2, 2, 2)
	_ = tr.Add(0, 0, 2)
	_ = tr.Add(1, 1, 4)
	a := tr.ToCSR()

	x := make([]float64, 2)
	_, err := matrix.BiCGSTAB(a, []float64{1, 1}, x)
	fmt.Println(x, err)
	// Output:
	// [0.5 0.25] <nil>
}
