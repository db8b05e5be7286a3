// SPDX-License-Identifier: MIT

package ode

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/cmefsp/matrix"
)

// Sentinel errors for integration.
var (
	// ErrDivergence is returned when the solution becomes NaN or ±Inf.
	ErrDivergence = errors.New("ode: solution diverged")

	// ErrStepTooSmall is returned when the step falls below MinStep.
	ErrStepTooSmall = errors.New("ode: step size too small")

	// ErrMaxSteps is returned when the step budget is exhausted.
	ErrMaxSteps = errors.New("ode: maximum number of steps exceeded")

	// ErrInvalidInterval is returned for a reversed or non-finite interval,
	// or a state vector that does not match the system.
	ErrInvalidInterval = errors.New("ode: invalid interval")

	// ErrInvalidOptions is returned for negative tolerances or limits.
	ErrInvalidOptions = errors.New("ode: invalid options")
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultRelTol     = 1e-6
	DefaultAbsTol     = 1e-9
	DefaultMinStep    = 1e-12
	DefaultMaxSteps   = 100_000
	DefaultDenseLimit = 200

	// DefaultLinearTol is the BiCGSTAB relative residual target.
	DefaultLinearTol = 1e-12
)

// Step controller constants.
const (
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 5.0
)

// Options configures Integrate. Zero fields take the Default* values;
// InitialStep 0 picks a step from the fastest rate at t0.
type Options struct {
	RelTol      float64
	AbsTol      float64
	InitialStep float64
	MinStep     float64
	MaxSteps    int
	DenseLimit  int
	LinearTol   float64
}

// withDefaults validates o and fills zero fields.
func (o Options) withDefaults() (Options, error) {
	fields := []struct {
		name string
		v    float64
	}{
		{"RelTol", o.RelTol}, {"AbsTol", o.AbsTol}, {"InitialStep", o.InitialStep},
		{"MinStep", o.MinStep}, {"LinearTol", o.LinearTol},
	}
	for _, f := range fields {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return o, fmt.Errorf("%w: %s=%v", ErrInvalidOptions, f.name, f.v)
		}
	}
	if o.MaxSteps < 0 || o.DenseLimit < 0 {
		return o, fmt.Errorf("%w: MaxSteps=%d DenseLimit=%d", ErrInvalidOptions, o.MaxSteps, o.DenseLimit)
	}
	if o.RelTol == 0 {
		o.RelTol = DefaultRelTol
	}
	if o.AbsTol == 0 {
		o.AbsTol = DefaultAbsTol
	}
	if o.MinStep == 0 {
		o.MinStep = DefaultMinStep
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.DenseLimit == 0 {
		o.DenseLimit = DefaultDenseLimit
	}
	if o.LinearTol == 0 {
		o.LinearTol = DefaultLinearTol
	}

	return o, nil
}

// linearOptions maps o onto BiCGSTAB options.
func (o Options) linearOptions() []matrix.SolveOption {
	return []matrix.SolveOption{matrix.WithTolerance(o.LinearTol)}
}
