// SPDX-License-Identifier: MIT

// Package recorder collects per-species statistics from a sequence of
// sparse distributions and optionally persists them.
//
// A Recorder maps every State to per-species counts (model.Model.Counts) and,
// on each Write, stores the expectation, the standard deviation and the
// marginal distribution of every species, plus the joint distribution of all
// species so that any tuple can be viewed later through Joint.
//
// Expectations are taken against the distribution as given; FSP
// distributions sum to 1 − sink and are not renormalized.
//
// Store persists runs and snapshots to SQLite; Store.Sink adapts it to the
// Recorder's Sink hook so every Write is also saved.
package recorder
