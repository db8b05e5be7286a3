// SPDX-License-Identifier: MIT

package expander

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/cmefsp/state"
)

// Sentinel errors for expansion.
var (
	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("expander: invalid option supplied")

	// ErrTooManyStates is returned when the grown domain exceeds MaxStates.
	ErrTooManyStates = errors.New("expander: too many states")

	// ErrDimensionMismatch is returned when a reaction delta and the domain
	// disagree on the number of species.
	ErrDimensionMismatch = errors.New("expander: delta dimension mismatch")
)

const (
	// DefaultDepth is the number of breadth-first rounds per Expand.
	DefaultDepth = 1

	// DefaultMaxStates of 0 disables the state limit.
	DefaultMaxStates = 0
)

// Option configures a SimpleExpander via functional arguments.
// Invalid values are recorded and surfaced as ErrOptionViolation by New.
type Option func(*Options)

// Options holds parameters and callbacks for expansion.
type Options struct {
	// Ctx allows cancellation between frontier states.
	Ctx context.Context

	// Depth is the number of reaction applications from the input domain.
	Depth int

	// MaxStates, if > 0, bounds the size of the grown domain.
	MaxStates int

	// OnDiscover is called for each newly accepted state with its round.
	OnDiscover func(s state.State, depth int)

	err error
}

// DefaultOptions returns Options with background context, DefaultDepth,
// no state limit and a no-op discovery hook.
func DefaultOptions() Options {
	return Options{
		Ctx:        context.Background(),
		Depth:      DefaultDepth,
		MaxStates:  DefaultMaxStates,
		OnDiscover: func(state.State, int) {},
	}
}

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithDepth sets the number of breadth-first rounds.
//
//	d >= 1: d rounds
//	d < 1:  invalid option → ErrOptionViolation
func WithDepth(d int) Option {
	return func(o *Options) {
		if d < 1 {
			o.err = fmt.Errorf("%w: Depth must be >= 1 (%d)", ErrOptionViolation, d)
			return
		}
		o.Depth = d
	}
}

// WithMaxStates bounds the grown domain size; 0 means unlimited.
func WithMaxStates(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: MaxStates cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxStates = n
	}
}

// WithOnDiscover registers a callback run for every newly accepted state.
func WithOnDiscover(fn func(s state.State, depth int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnDiscover = fn
		}
	}
}
