// SPDX-License-Identifier: MIT

// Package model describes stochastic reaction networks for the FSP solver.
//
// A Model is a list of species, an initial State and an ordered list of
// Reactions. Each Reaction carries a stoichiometry delta (the per-species
// change when it fires) and a Propensity: a pure function of (state, time)
// giving the firing rate. Constant propensities simply ignore time, so the
// generator builder never special-cases them.
//
// Time dependencies are applied on top of a model as multiplicative factors
// keyed by reaction name:
//
//	deps := model.TimeDependencies{"production": func(t float64) float64 { return math.Exp(-t) }}
//	reactions, err := model.ApplyTimeDependencies(m.Reactions, deps)
//
// Models can be built in code (Birth, Burr08) or loaded from YAML:
//
//	name: birth
//	species: [A]
//	initial_state: {A: 0}
//	reactions:
//	  - name: birth
//	    products: {A: 1}
//	    rate: 2.0
//
// YAML reactions use mass-action kinetics: rate · Π C(x_i, r_i) where r_i
// is the reactant coefficient of species i.
package model
