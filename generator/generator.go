// SPDX-License-Identifier: MIT

package generator

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/cmefsp/matrix"
	"github.com/katalvlaran/cmefsp/model"
	"github.com/katalvlaran/cmefsp/state"
)

// Sentinel errors for generator assembly.
var (
	// ErrInvalidPropensity is returned when a propensity evaluates to a
	// negative or non-finite value.
	ErrInvalidPropensity = errors.New("generator: invalid propensity")

	// ErrEmptyEnum is returned for an Enum without states.
	ErrEmptyEnum = errors.New("generator: empty enum")

	// ErrDimensionMismatch is returned when vectors or reaction deltas do not
	// fit the Enum.
	ErrDimensionMismatch = errors.New("generator: dimension mismatch")
)

// sinkTarget marks a transition that leaves the Enum.
const sinkTarget = -1

// Generator is the truncated generator at one time point.
type Generator struct {
	T    float64     // evaluation time
	A    *matrix.CSR // n×n, column = source state
	Sink []float64   // outflow rate per source state
}

// Apply computes dst = A·p and returns Sink·p.
func (g *Generator) Apply(p, dst []float64) (float64, error) {
	if len(p) != len(g.Sink) {
		return 0, fmt.Errorf("%w: p has %d entries, want %d", ErrDimensionMismatch, len(p), len(g.Sink))
	}
	if err := g.A.MulVec(p, dst); err != nil {
		return 0, err
	}
	var rate float64
	for j, s := range g.Sink {
		rate += s * p[j]
	}

	return rate, nil
}

// Builder precomputes the reaction topology over an Enum.
type Builder struct {
	enum      *state.Enum
	reactions []model.Reaction
	targets   [][]int // targets[r][j]: index of s_j+Δr, or sinkTarget

	last *Generator // most recent Build, reused for repeated t
}

// NewBuilder resolves, for every (reaction, state) pair, whether the target
// state is enumerated. Returns ErrEmptyEnum or ErrDimensionMismatch.
// Complexity: O(n·R·d).
func NewBuilder(enum *state.Enum, reactions []model.Reaction) (*Builder, error) {
	if enum == nil || enum.Size() == 0 {
		return nil, ErrEmptyEnum
	}
	d := enum.Dim()
	n := enum.Size()
	targets := make([][]int, len(reactions))
	for r, rx := range reactions {
		if len(rx.Delta) != d {
			return nil, fmt.Errorf("%w: reaction %q has %d components, enum has %d",
				ErrDimensionMismatch, rx.Name, len(rx.Delta), d)
		}
		if rx.Propensity == nil {
			return nil, fmt.Errorf("%w: reaction %q has no propensity", ErrInvalidPropensity, rx.Name)
		}
		row := make([]int, n)
		for j := 0; j < n; j++ {
			next := enum.At(j).Shift(rx.Delta)
			i, err := enum.IndexOf(next)
			if err != nil {
				i = sinkTarget
			}
			row[j] = i
		}
		targets[r] = row
	}

	return &Builder{enum: enum, reactions: reactions, targets: targets}, nil
}

// Dim returns the Enum size.
func (b *Builder) Dim() int { return b.enum.Size() }

// Enum returns the Enum the Builder was made for.
func (b *Builder) Enum() *state.Enum { return b.enum }

// Build evaluates every propensity at time t and assembles the Generator.
// Returns ErrInvalidPropensity on the first negative or non-finite rate;
// non-finite rates also match matrix.ErrNaNInf.
// A repeated t returns the previous Generator, which callers must not modify.
func (b *Builder) Build(t float64) (*Generator, error) {
	if b.last != nil && b.last.T == t {
		return b.last, nil
	}
	n := b.enum.Size()
	trips, err := matrix.NewTriplets(n, n, n*(len(b.reactions)+1))
	if err != nil {
		return nil, err
	}
	sink := make([]float64, n)
	for j := 0; j < n; j++ {
		s := b.enum.At(j)
		var out float64
		for r, rx := range b.reactions {
			a := rx.Propensity(s, t)
			if math.IsNaN(a) || math.IsInf(a, 0) {
				return nil, fmt.Errorf("%w: reaction %q at %v, t=%g: %w", ErrInvalidPropensity, rx.Name, s, t, matrix.ErrNaNInf)
			}
			if a < 0 {
				return nil, fmt.Errorf("%w: reaction %q at %v, t=%g: %v", ErrInvalidPropensity, rx.Name, s, t, a)
			}
			if a == 0 {
				continue
			}
			out += a
			if i := b.targets[r][j]; i != sinkTarget {
				if err = trips.Add(i, j, a); err != nil {
					return nil, err
				}
			} else {
				sink[j] += a
			}
		}
		if err = trips.Add(j, j, -out); err != nil {
			return nil, err
		}
	}
	b.last = &Generator{T: t, A: trips.ToCSR(), Sink: sink}

	return b.last, nil
}

// Operator returns the generator matrix and sink row at t.
func (b *Builder) Operator(t float64) (*matrix.CSR, []float64, error) {
	g, err := b.Build(t)
	if err != nil {
		return nil, nil, err
	}

	return g.A, g.Sink, nil
}

// Build is the one-shot form of NewBuilder(enum, reactions).Build(t).
func Build(enum *state.Enum, reactions []model.Reaction, t float64) (*Generator, error) {
	b, err := NewBuilder(enum, reactions)
	if err != nil {
		return nil, err
	}

	return b.Build(t)
}
