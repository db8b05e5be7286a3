// SPDX-License-Identifier: MIT

// Package expander grows an FSP domain by bounded breadth-first reachability
// over a reaction network's stoichiometry.
//
// What
//
//   - Start from every state of a Domain (depth 0).
//   - Each round applies every reaction delta to the current frontier.
//   - A candidate state is kept iff all its components are non-negative.
//   - Rounds stop after Depth levels; the result is the input Domain followed
//     by the discovered states.
//
// Determinism
//
//	Discoveries are appended in (round, frontier order, reaction order), so
//	the same Domain and reactions always yield the same Domain order, and
//	therefore the same Enum.
//
// Complexity (N = result size, R = reactions, d = species)
//
//   - Time:   O(N·R·d)
//   - Memory: O(N·d)
//
// Usage
//
//	exp, err := expander.New(m.Reactions,
//	    expander.WithDepth(2),
//	    expander.WithMaxStates(100_000),
//	)
//	grown, err := exp.Expand(domain)
//
// Errors
//
//   - ErrOptionViolation    for Depth < 1 or a negative state limit.
//   - ErrTooManyStates      when growth passes WithMaxStates.
//   - ErrDimensionMismatch  when a reaction delta does not fit the Domain.
//   - ctx.Err()             on cancellation.
package expander
