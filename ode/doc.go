// SPDX-License-Identifier: MIT

// Package ode integrates stiff, time-varying linear systems of the form
//
//	dy/dt    = A(t)·y
//	dsink/dt = Sink(t)·y
//
// where A(t) is a sparse generator and Sink(t) a row of outflow rates, the
// shape produced by a truncated CME generator.
//
// Method
//
//	Implicit Euler with Richardson extrapolation: each step of size h takes
//	one full step y1, two half steps y2 and three third steps y3, and
//	accepts y = 2·y2 − y1, which is second order and L-stable. The third
//	sweep extrapolates to order three; its distance to y drives step size
//	control with a cube-root law. The operator is evaluated at every
//	substep end, so time-varying rates are followed between the interval
//	endpoints.
//
//	The sink is integrated as an extra component with the same scheme, so
//	Σy + sink is conserved up to linear solver tolerance whenever the
//	columns of A plus Sink sum to zero.
//
// Linear solves
//
//	Each stage solves (I − h·A)·x = b. Systems with at most DenseLimit
//	unknowns use the dense LU kernel; (I − h·A) is column diagonally dominant
//	for a generator, so factorization without pivoting is stable. Larger
//	systems use Jacobi-preconditioned BiCGSTAB on the CSR matrix, started from
//	the right-hand side.
//
// Errors
//
//   - ErrInvalidInterval  for t1 < t0, non-finite endpoints or a size mismatch.
//   - ErrInvalidOptions   for negative tolerances or limits.
//   - ErrDivergence       when the solution turns non-finite.
//   - ErrStepTooSmall     when the controller asks for a step below MinStep.
//   - ErrMaxSteps         when MaxSteps accepted and rejected steps are used up.
package ode
