// SPDX-License-Identifier: MIT

package fsp

import (
	"io"
	"log/slog"
	"math"

	"github.com/google/uuid"
)

// Defaults for Solver options.
const (
	// DefaultMaxDomainSize bounds the number of enumerated states.
	DefaultMaxDomainSize = 1_000_000

	// DefaultToleranceRatio scales the step budget into the integrator's
	// absolute tolerance.
	DefaultToleranceRatio = 1e-2

	// DefaultRelTol is the integrator's relative tolerance.
	DefaultRelTol = 1e-6

	// DefaultDenseLimit is passed to the integrator; see ode.Options.
	DefaultDenseLimit = 200
)

const (
	panicMaxDomainInvalid = "fsp: WithMaxDomainSize: n must be > 0"
	panicRatioInvalid     = "fsp: WithToleranceRatio: r must be in (0, 1]"
	panicRelTolInvalid    = "fsp: WithRelTol: tol must be finite and > 0"
)

// Option configures a Solver.
type Option func(*Options)

// Options is the effective Solver configuration.
type Options struct {
	MaxDomainSize  int
	ToleranceRatio float64
	RelTol         float64
	DenseLimit     int
	Logger         *slog.Logger
	OnExpand       func(oldSize, newSize int)
	RunID          string
}

// DefaultOptions returns the defaults with a discarding logger and a fresh
// time-ordered run ID.
func DefaultOptions() Options {
	return Options{
		MaxDomainSize:  DefaultMaxDomainSize,
		ToleranceRatio: DefaultToleranceRatio,
		RelTol:         DefaultRelTol,
		DenseLimit:     DefaultDenseLimit,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnExpand:       func(int, int) {},
		RunID:          uuid.Must(uuid.NewV7()).String(),
	}
}

// WithMaxDomainSize caps the Enum size. Panics if n <= 0.
func WithMaxDomainSize(n int) Option {
	if n <= 0 {
		panic(panicMaxDomainInvalid)
	}
	return func(o *Options) { o.MaxDomainSize = n }
}

// WithToleranceRatio sets AbsTol = budget·r for each integration.
// Panics unless 0 < r <= 1.
func WithToleranceRatio(r float64) Option {
	if !(r > 0 && r <= 1) {
		panic(panicRatioInvalid)
	}
	return func(o *Options) { o.ToleranceRatio = r }
}

// WithRelTol sets the integrator's relative tolerance.
func WithRelTol(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(panicRelTolInvalid)
	}
	return func(o *Options) { o.RelTol = tol }
}

// WithDenseLimit sets the largest Enum solved with dense LU.
func WithDenseLimit(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.DenseLimit = n
		}
	}
}

// WithLogger routes Solver logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithOnExpand registers a callback run after every domain expansion.
func WithOnExpand(fn func(oldSize, newSize int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnExpand = fn
		}
	}
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(o *Options) {
		if id != "" {
			o.RunID = id
		}
	}
}
