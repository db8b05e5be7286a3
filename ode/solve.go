// SPDX-License-Identifier: MIT

package ode

import "github.com/katalvlaran/cmefsp/matrix"

// linearSolver solves one factored or preconditioned stage system.
type linearSolver interface {
	solve(b, x []float64) error
}

// luSolver wraps a dense factorization.
type luSolver struct {
	f *matrix.LUFactors
}

func (s luSolver) solve(b, x []float64) error { return s.f.Solve(b, x) }

// iterativeSolver runs BiCGSTAB on the CSR stage matrix.
type iterativeSolver struct {
	m     *matrix.CSR
	opts  []matrix.SolveOption
	stats *Stats
}

func (s iterativeSolver) solve(b, x []float64) error {
	copy(x, b)
	st, err := matrix.BiCGSTAB(s.m, b, x, s.opts...)
	s.stats.Iterations += st.Iterations

	return err
}

// stageSolver prepares a solver for (I − h·A)·x = b.
func stageSolver(a *matrix.CSR, h float64, o Options, stats *Stats) (linearSolver, error) {
	m, err := a.IdentityPlus(-h)
	if err != nil {
		return nil, err
	}
	if m.Rows() <= o.DenseLimit {
		d, err := m.ToDense()
		if err != nil {
			return nil, err
		}
		f, err := matrix.LU(d)
		if err != nil {
			return nil, err
		}
		stats.Factorizations++
		return luSolver{f: f}, nil
	}

	return iterativeSolver{m: m, opts: o.linearOptions(), stats: stats}, nil
}
