// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

// SolveStats reports how an iterative solve went.
type SolveStats struct {
	Iterations int     // completed iterations
	Residual   float64 // final relative residual ‖b − A·x‖ / ‖b‖
	Restarts   int     // shadow-residual restarts after a breakdown
}

// BiCGSTAB solves A·x = b with the stabilized bi-conjugate gradient method,
// right-preconditioned by diag(A)⁻¹ when a implements Diagonaler.
//
// Implementation:
//   - Stage 1: validate shapes; take x as the initial guess; r = b − A·x.
//   - Stage 2: van der Vorst recurrence, checking the residual after both
//     half-steps.
//
// Behavior highlights:
//   - x is overwritten with the solution; a good initial guess (e.g. the
//     previous time step) cuts iterations sharply.
//   - b = 0 yields x = 0 immediately.
//   - A vanishing ρ or r̂·v restarts the recurrence with r̂ = r. On
//     bidiagonal systems ρ hits exactly 0 once the leading residual
//     components are solved.
//
// Errors:
//   - ErrDimensionMismatch / ErrNilMatrix for bad vectors.
//   - ErrBreakdown when ρ or r̂·v vanish once the restart budget
//     (WithMaxRestarts) is spent, or when ‖t‖ or ω vanish.
//   - ErrNotConverged when the iteration cap is reached.
//   - ErrNaNInf when the recurrence produces non-finite values.
//
// Complexity:
//   - Time O(k·nnz) for k iterations, Space O(n) for 8 work vectors.
func BiCGSTAB(a LinearOperator, b, x []float64, opts ...SolveOption) (SolveStats, error) {
	var stats SolveStats
	if a == nil {
		return stats, matrixErrorf(opBiCGSTAB, ErrNilMatrix)
	}
	n := a.Rows()
	if err := ValidateVecLen(b, n); err != nil {
		return stats, matrixErrorf(opBiCGSTAB, err)
	}
	if err := ValidateVecLen(x, n); err != nil {
		return stats, matrixErrorf(opBiCGSTAB, err)
	}
	o := gatherSolveOptions(n, opts...)

	bnorm := norm2(b)
	if bnorm == 0 {
		for i := range x {
			x[i] = 0
		}
		return stats, nil
	}

	// Jacobi preconditioner: inverse diagonal, identity where the diagonal is 0.
	var invDiag []float64
	if d, ok := a.(Diagonaler); ok && o.jacobi {
		diag := d.Diagonal()
		invDiag = make([]float64, n)
		for i, v := range diag {
			if v != 0 {
				invDiag[i] = 1 / v
			} else {
				invDiag[i] = 1
			}
		}
	}
	precond := func(src, dst []float64) {
		if invDiag == nil {
			copy(dst, src)
			return
		}
		for i := range src {
			dst[i] = src[i] * invDiag[i]
		}
	}

	r := make([]float64, n)
	rHat := make([]float64, n)
	p := make([]float64, n)
	v := make([]float64, n)
	s := make([]float64, n)
	t := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)

	if err := a.MulVec(x, r); err != nil {
		return stats, matrixErrorf(opBiCGSTAB, err)
	}
	for i := range r {
		r[i] = b[i] - r[i]
	}
	stats.Residual = norm2(r) / bnorm
	if stats.Residual <= o.tol {
		return stats, nil
	}
	copy(rHat, r)

	rho, alpha, omega := 1.0, 1.0, 1.0
	// restart takes r̂ = r and clears the search directions.
	restart := func(what string) error {
		if stats.Restarts >= o.maxRestarts {
			return matrixErrorf(opBiCGSTAB, fmt.Errorf("%s=0 at iteration %d after %d restarts: %w",
				what, stats.Iterations, stats.Restarts, ErrBreakdown))
		}
		stats.Restarts++
		copy(rHat, r)
		for k := range p {
			p[k], v[k] = 0, 0
		}
		rho, alpha, omega = 1, 1, 1
		return nil
	}

	var i int
	for stats.Iterations = 0; stats.Iterations < o.maxIter; stats.Iterations++ {
		rhoNew := dot(rHat, r)
		if rhoNew == 0 {
			if err := restart("rho"); err != nil {
				return stats, err
			}
			rhoNew = dot(rHat, r)
		}
		beta := (rhoNew / rho) * (alpha / omega)
		for i = 0; i < n; i++ {
			p[i] = r[i] + beta*(p[i]-omega*v[i])
		}
		precond(p, y)
		if err := a.MulVec(y, v); err != nil {
			return stats, matrixErrorf(opBiCGSTAB, err)
		}
		den := dot(rHat, v)
		if den == 0 {
			if err := restart("r̂·v"); err != nil {
				return stats, err
			}
			continue
		}
		alpha = rhoNew / den
		for i = 0; i < n; i++ {
			s[i] = r[i] - alpha*v[i]
		}
		if res := norm2(s) / bnorm; res <= o.tol {
			for i = 0; i < n; i++ {
				x[i] += alpha * y[i]
			}
			stats.Iterations++
			stats.Residual = res
			return stats, nil
		}
		precond(s, z)
		if err := a.MulVec(z, t); err != nil {
			return stats, matrixErrorf(opBiCGSTAB, err)
		}
		tt := dot(t, t)
		if tt == 0 {
			return stats, matrixErrorf(opBiCGSTAB, fmt.Errorf("‖t‖=0 at iteration %d: %w", stats.Iterations, ErrBreakdown))
		}
		omega = dot(t, s) / tt
		for i = 0; i < n; i++ {
			x[i] += alpha*y[i] + omega*z[i]
			r[i] = s[i] - omega*t[i]
		}
		stats.Residual = norm2(r) / bnorm
		if math.IsNaN(stats.Residual) || math.IsInf(stats.Residual, 0) {
			return stats, matrixErrorf(opBiCGSTAB, ErrNaNInf)
		}
		if stats.Residual <= o.tol {
			stats.Iterations++
			return stats, nil
		}
		if omega == 0 {
			return stats, matrixErrorf(opBiCGSTAB, fmt.Errorf("omega=0 at iteration %d: %w", stats.Iterations, ErrBreakdown))
		}
		rho = rhoNew
	}

	return stats, matrixErrorf(opBiCGSTAB, fmt.Errorf("residual %.3g after %d iterations: %w", stats.Residual, stats.Iterations, ErrNotConverged))
}

// dot returns Σ a[i]·b[i] in index order.
func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}

	return s
}

// norm2 returns the Euclidean norm of a.
func norm2(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}
