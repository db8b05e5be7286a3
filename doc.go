// Package cmefsp solves the Chemical Master Equation of a reaction network
// with an adaptive Finite State Projection.
//
// What is cmefsp?
//
//	A small library plus CLI that propagates a probability distribution over
//	molecule-count states through time:
//		• State primitives: states, sparse distributions, domains, enumerations
//		• Expansion: breadth-first growth of the domain along reaction channels
//		• Generator: truncated sparse rate matrix with an explicit sink
//		• Integrator: Richardson-extrapolated implicit Euler with step control
//		• Solver: budgeted steps that expand the domain when the sink grows
//		• Recorder: moments, marginals and joint histograms, optionally in SQLite
//
// Packages:
//
//	state/      State, Sparse, Domain and Enum with pack/unpack/remap
//	model/      reactions, propensities, YAML models, bundled networks
//	expander/   breadth-first domain expansion with a state cap
//	matrix/     Dense, LU, CSR and BiCGSTAB kernels
//	generator/  truncated generator assembly at a given time
//	ode/        adaptive stiff integrator for the augmented system
//	fsp/        the adaptive FSP solver
//	recorder/   time-series statistics and the SQLite store
//	config/     YAML run configuration
//	cmd/cmefsp  command-line entry point
//
// Quick start:
//
//	m, deps, _ := model.Lookup("burr08")
//	exp, _ := expander.New(m.Reactions, expander.WithDepth(3))
//	s, _ := fsp.FromModel(m, exp, deps)
//	_ = s.Step(ctx, 0.5, 1e-2)
//	p, _ := s.Sparse()
package cmefsp
