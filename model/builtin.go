// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/cmefsp/state"
)

// Birth returns the single-species pure birth process: one reaction with
// stoichiometry +1 and constant propensity lambda, starting from 0.
// Its exact solution at time t is Poisson(lambda·t).
func Birth(lambda float64) *Model {
	return &Model{
		Name:         "birth",
		Species:      []string{"A"},
		InitialState: state.State{0},
		Reactions: []Reaction{
			{Name: "birth", Delta: []int{1}, Propensity: Constant(lambda)},
		},
	}
}

// Burr08 rate constants.
const (
	burrProduce = 10.0 // *→A base rate
	burrDecayA  = 1.0  // A→*
	burrConvert = 0.5  // A→B
	burrDecayB  = 0.25 // B→*
	burrBurst   = 9.0  // amplitude of the initial production burst
	burrRelax   = 4.0  // decay rate of the burst
)

// Burr08 returns the two-species network driven by the bundled example:
//
//	*  → A   production (time dependent, see Burr08TimeDependencies)
//	A  → *   degradation of A
//	A  → B   conversion
//	B  → *   degradation of B
//
// The production burst at early times makes the problem stiff there: rates
// near t=0 are an order of magnitude above the long-run ones.
func Burr08() *Model {
	return &Model{
		Name:         "burr08",
		Species:      []string{"A", "B"},
		InitialState: state.State{0, 0},
		Reactions: []Reaction{
			{Name: "produce_a", Delta: []int{1, 0}, Propensity: Constant(burrProduce)},
			{Name: "decay_a", Delta: []int{-1, 0}, Propensity: MassAction(burrDecayA, []int{1, 0})},
			{Name: "convert", Delta: []int{-1, 1}, Propensity: MassAction(burrConvert, []int{1, 0})},
			{Name: "decay_b", Delta: []int{0, -1}, Propensity: MassAction(burrDecayB, []int{0, 1})},
		},
	}
}

// Burr08TimeDependencies scales production by 1 + 9·exp(-4t).
func Burr08TimeDependencies() TimeDependencies {
	return TimeDependencies{
		"produce_a": func(t float64) float64 { return 1 + burrBurst*math.Exp(-burrRelax*t) },
	}
}

// Builtin pairs a bundled model with its time dependencies.
type Builtin struct {
	Model func() *Model
	Deps  func() TimeDependencies
}

var builtins = map[string]Builtin{
	"birth":  {Model: func() *Model { return Birth(1.0) }},
	"burr08": {Model: Burr08, Deps: Burr08TimeDependencies},
}

// Lookup returns the bundled model registered under name.
func Lookup(name string) (*Model, TimeDependencies, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no bundled model %q", ErrInvalidModel, name)
	}
	var deps TimeDependencies
	if b.Deps != nil {
		deps = b.Deps()
	}

	return b.Model(), deps, nil
}

// Names lists the bundled models in sorted order.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}
