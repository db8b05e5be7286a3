// SPDX-License-Identifier: MIT

// Package fsp is the adaptive Finite State Projection driver.
//
// A Solver holds a committed run state (t, Enum, Domain, p, pSink) and moves
// it forward with Step. Each Step integrates the truncated CME on the
// committed Enum; if the sink grew by more than the caller's error budget the
// attempt is discarded, the Domain is expanded, p is remapped into the larger
// Enum and the same target is retried. Only an attempt within budget is
// committed.
//
// Phases
//
//	Idle ──Step──▶ Integrating ──growth ≤ budget──▶ Accepted ──▶ Idle
//	                    ▲                │
//	                    └── Expanding ◀──┘ growth > budget
//
// Usage
//
//	exp, _ := expander.New(m.Reactions, expander.WithDepth(3))
//	s, err := fsp.FromModel(m, exp, model.Burr08TimeDependencies(),
//	    fsp.WithLogger(logger),
//	)
//	for _, t := range times {
//	    if err := s.Step(ctx, t, eps/float64(len(times))); err != nil {
//	        return err
//	    }
//	    p, sink := s.Y()
//	}
//
// A Solver is not safe for concurrent use. Y returns the internal slice,
// which callers must treat as read-only.
package fsp
