// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cmefsp/state"
)

// Propensity returns the firing rate of a reaction in state s at time t.
// It must be pure and return a finite, non-negative value.
type Propensity func(s state.State, t float64) float64

// Reaction is one channel of the network.
type Reaction struct {
	Name       string     // unique within a model; key for time dependencies
	Delta      []int      // per-species change when the reaction fires
	Propensity Propensity // rate as a function of (state, time)
}

// TimeDependencies maps a reaction name to a factor f(t) that multiplies
// the reaction's propensity.
type TimeDependencies map[string]func(t float64) float64

// Model is a complete reaction network description.
type Model struct {
	Name         string
	Species      []string
	Reactions    []Reaction
	InitialState state.State

	// SpeciesCounts maps a state to per-species counts for recorders.
	// Nil means the state components are the counts.
	SpeciesCounts func(s state.State) []float64
}

// Validate checks the structural consistency of m.
// Returns ErrInvalidModel (wrapped with a reason) on the first violation.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil model", ErrInvalidModel)
	}
	d := len(m.Species)
	if d == 0 {
		return fmt.Errorf("%w: no species", ErrInvalidModel)
	}
	if len(m.InitialState) != d || !m.InitialState.Feasible() {
		return fmt.Errorf("%w: initial state %v does not fit %d species", ErrInvalidModel, m.InitialState, d)
	}
	if err := ValidateReactions(m.Reactions, d); err != nil {
		return err
	}

	return nil
}

// ValidateReactions checks names are unique and non-empty, deltas have d
// components and every reaction has a propensity.
func ValidateReactions(reactions []Reaction, d int) error {
	seen := make(map[string]bool, len(reactions))
	for i, r := range reactions {
		if r.Name == "" {
			return fmt.Errorf("%w: reaction %d has no name", ErrInvalidModel, i)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: duplicate reaction %q", ErrInvalidModel, r.Name)
		}
		seen[r.Name] = true
		if len(r.Delta) != d {
			return fmt.Errorf("%w: reaction %q delta has %d components, want %d", ErrInvalidModel, r.Name, len(r.Delta), d)
		}
		if r.Propensity == nil {
			return fmt.Errorf("%w: reaction %q has no propensity", ErrInvalidModel, r.Name)
		}
	}

	return nil
}

// Counts returns the per-species counts of s, honoring SpeciesCounts.
func (m *Model) Counts(s state.State) []float64 {
	if m.SpeciesCounts != nil {
		return m.SpeciesCounts(s)
	}
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}

	return out
}

// Deltas returns the stoichiometry deltas of reactions in order.
func Deltas(reactions []Reaction) [][]int {
	out := make([][]int, len(reactions))
	for i, r := range reactions {
		out[i] = r.Delta
	}

	return out
}

// Constant returns a propensity that is rate everywhere.
func Constant(rate float64) Propensity {
	return func(state.State, float64) float64 { return rate }
}

// MassAction returns k · Π C(x_i, r_i) for reactant coefficients r.
// States with fewer molecules than a reactant coefficient get rate 0, which
// is what keeps consuming reactions from leaving the non-negative orthant.
func MassAction(k float64, reactants []int) Propensity {
	r := append([]int(nil), reactants...)
	return func(s state.State, _ float64) float64 {
		a := k
		for i, ri := range r {
			if ri == 0 {
				continue
			}
			if s[i] < ri {
				return 0
			}
			a *= binomial(s[i], ri)
		}
		return a
	}
}

// binomial returns C(n, k) as a float64.
func binomial(n, k int) float64 {
	if k > n-k {
		k = n - k
	}
	c := 1.0
	for j := 1; j <= k; j++ {
		c = c * float64(n-k+j) / float64(j)
	}

	return c
}

// ApplyTimeDependencies returns a copy of reactions where every reaction
// named in deps has its propensity multiplied by deps[name](t).
// Returns ErrUnknownReaction if deps names a reaction that is absent.
func ApplyTimeDependencies(reactions []Reaction, deps TimeDependencies) ([]Reaction, error) {
	out := make([]Reaction, len(reactions))
	copy(out, reactions)
	if len(deps) == 0 {
		return out, nil
	}
	byName := make(map[string]int, len(out))
	for i, r := range out {
		byName[r.Name] = i
	}
	for name, f := range deps {
		i, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownReaction, name)
		}
		if f == nil {
			return nil, fmt.Errorf("%w: nil time dependency for %q", ErrInvalidModel, name)
		}
		base := out[i].Propensity
		out[i].Propensity = func(s state.State, t float64) float64 {
			return f(t) * base(s, t)
		}
	}

	return out, nil
}

// validRate reports whether k is a finite, non-negative rate constant.
func validRate(k float64) bool {
	return k >= 0 && !math.IsInf(k, 0) && !math.IsNaN(k)
}
