// SPDX-License-Identifier: MIT

package ode

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/cmefsp/matrix"
)

// System is a linear system dy/dt = A(t)·y with a sink row.
type System interface {
	// Dim returns the length of y.
	Dim() int

	// Operator returns A(t) (Dim×Dim) and the sink row (length Dim).
	Operator(t float64) (*matrix.CSR, []float64, error)
}

// Stats counts the work done by one Integrate call.
type Stats struct {
	Steps          int // accepted steps
	Rejected       int // rejected steps
	Evaluations    int // Operator calls
	LinearSolves   int // stage systems solved
	Factorizations int // dense LU factorizations
	Iterations     int // BiCGSTAB iterations
}

// Result is the state at the end of the interval.
type Result struct {
	T        float64   // t1
	Y        []float64 // fresh slice; the input y is never modified
	Sink     float64
	NextStep float64 // step the controller would take next
	Stats    Stats
}

// integrator carries per-call state.
type integrator struct {
	sys   System
	opts  Options
	stats Stats
	n     int

	// sweep results and substep scratch
	y1, y2, y3, buf []float64
}

// Integrate advances (y, sink) from t0 to t1.
// On error the returned Result is zero and y is untouched.
func Integrate(ctx context.Context, sys System, t0, t1 float64, y []float64, sink float64, opts Options) (Result, error) {
	if sys == nil {
		return Result{}, fmt.Errorf("%w: nil system", ErrInvalidInterval)
	}
	if !finite(t0) || !finite(t1) || t1 < t0 {
		return Result{}, fmt.Errorf("%w: [%g, %g]", ErrInvalidInterval, t0, t1)
	}
	n := sys.Dim()
	if len(y) != n {
		return Result{}, fmt.Errorf("%w: y has %d entries, system has %d", ErrInvalidInterval, len(y), n)
	}
	o, err := opts.withDefaults()
	if err != nil {
		return Result{}, err
	}

	cur := append([]float64(nil), y...)
	if t1 == t0 {
		return Result{T: t1, Y: cur, Sink: sink, NextStep: o.InitialStep}, nil
	}

	it := &integrator{
		sys:  sys,
		opts: o,
		n:    n,
		y1:   make([]float64, n),
		y2:   make([]float64, n),
		y3:   make([]float64, n),
		buf:  make([]float64, n),
	}
	h := o.InitialStep
	if h == 0 {
		if h, err = it.initialStep(t0, t1); err != nil {
			if errors.Is(err, matrix.ErrNaNInf) {
				return Result{}, fmt.Errorf("%w: at t=%g: %v", ErrDivergence, t0, err)
			}
			return Result{}, err
		}
	}

	next := make([]float64, n)
	t := t0
	for t < t1 {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}
		if it.stats.Steps+it.stats.Rejected >= o.MaxSteps {
			return Result{}, fmt.Errorf("%w: %d steps, t=%g of %g", ErrMaxSteps, o.MaxSteps, t, t1)
		}

		last := false
		if t+h >= t1 || t1-(t+h) < o.MinStep {
			h = t1 - t
			last = true
		}

		nextSink, errNorm, err := it.step(t, h, cur, sink, next)
		switch {
		case errors.Is(err, matrix.ErrNaNInf):
			return Result{}, fmt.Errorf("%w: at t=%g: %v", ErrDivergence, t+h, err)
		case errors.Is(err, matrix.ErrNotConverged), errors.Is(err, matrix.ErrBreakdown), errors.Is(err, matrix.ErrSingular):
			// The stage system was too hard at this h; retry smaller.
			errNorm = math.Inf(1)
		case err != nil:
			return Result{}, err
		}

		if errNorm <= 1 {
			if !allFinite(next) || !finite(nextSink) {
				return Result{}, fmt.Errorf("%w: at t=%g", ErrDivergence, t+h)
			}
			cur, next = next, cur
			sink = nextSink
			it.stats.Steps++
			if last {
				t = t1
			} else {
				t += h
			}
		} else {
			it.stats.Rejected++
		}

		h *= stepFactor(errNorm)
		if t < t1 && h < o.MinStep {
			return Result{}, fmt.Errorf("%w: h=%g at t=%g", ErrStepTooSmall, h, t)
		}
	}

	return Result{T: t1, Y: cur, Sink: sink, NextStep: h, Stats: it.stats}, nil
}

// initialStep picks 0.1/max|A_jj(t0)|, capped at the interval length.
func (it *integrator) initialStep(t0, t1 float64) (float64, error) {
	a, _, err := it.sys.Operator(t0)
	if err != nil {
		return 0, err
	}
	it.stats.Evaluations++
	span := t1 - t0
	var rate float64
	for _, v := range a.Diagonal() {
		rate = math.Max(rate, math.Abs(v))
	}
	if rate == 0 {
		return span, nil
	}

	return math.Min(span, 0.1/rate), nil
}

// step takes one extrapolated implicit Euler step of size h from (y, sink)
// at t, writing the result to out. It returns the new sink and the weighted
// error norm of the step.
//
// Three implicit Euler sweeps with 1, 2 and 3 substeps fill an extrapolation
// table. The accepted solution is T22 = 2·Y2 − Y1; T33 is one order higher,
// so T33 − T22 = 3/2·(T32 − T22) measures the local error of T22.
func (it *integrator) step(t, h float64, y []float64, sink float64, out []float64) (float64, float64, error) {
	// One full step.
	s1, err := it.sweep(t, h, 1, y, sink, it.y1)
	if err != nil {
		return 0, 0, err
	}
	// Two half steps.
	s2, err := it.sweep(t, h, 2, y, sink, it.y2)
	if err != nil {
		return 0, 0, err
	}
	// Three third steps.
	s3, err := it.sweep(t, h, 3, y, sink, it.y3)
	if err != nil {
		return 0, 0, err
	}

	o := it.opts
	var errNorm float64
	for i := 0; i < it.n; i++ {
		t22 := 2*it.y2[i] - it.y1[i]
		t32 := 3*it.y3[i] - 2*it.y2[i]
		out[i] = t22
		sc := o.AbsTol + o.RelTol*math.Max(math.Abs(y[i]), math.Abs(t22))
		errNorm = math.Max(errNorm, 1.5*math.Abs(t32-t22)/sc)
	}
	newSink := 2*s2 - s1
	sc := o.AbsTol + o.RelTol*math.Max(math.Abs(sink), math.Abs(newSink))
	errNorm = math.Max(errNorm, 1.5*math.Abs(3*s3-2*s2-newSink)/sc)
	if math.IsNaN(errNorm) {
		return 0, errNorm, fmt.Errorf("%w: at t=%g", ErrDivergence, t+h)
	}

	return newSink, errNorm, nil
}

// sweep integrates (y, sink) over [t, t+h] with m implicit Euler substeps,
// writing the end value to dst and returning the end sink.
func (it *integrator) sweep(t, h float64, m int, y []float64, sink float64, dst []float64) (float64, error) {
	hs := h / float64(m)
	src := y
	for k := 1; k <= m; k++ {
		tk := t + h
		if k < m {
			tk = t + float64(k)*hs
		}
		a, sinkRow, err := it.sys.Operator(tk)
		if err != nil {
			return 0, err
		}
		it.stats.Evaluations++
		ls, err := stageSolver(a, hs, it.opts, &it.stats)
		if err != nil {
			return 0, err
		}
		if err = it.solve(ls, src, dst); err != nil {
			return 0, err
		}
		sink += hs * dot(sinkRow, dst)
		if k < m {
			copy(it.buf, dst)
			src = it.buf
		}
	}

	return sink, nil
}

func (it *integrator) solve(ls linearSolver, b, x []float64) error {
	it.stats.LinearSolves++
	return ls.solve(b, x)
}

// stepFactor maps an error norm to the next step multiplier. The norm
// scales like h³, hence the cube root.
func stepFactor(errNorm float64) float64 {
	if errNorm == 0 {
		return maxFactor
	}
	f := safety * math.Pow(errNorm, -1.0/3)
	if errNorm > 1 {
		f = math.Min(f, 1)
	}

	return math.Max(minFactor, math.Min(maxFactor, f))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}

	return s
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func allFinite(v []float64) bool {
	for _, x := range v {
		if !finite(x) {
			return false
		}
	}

	return true
}
