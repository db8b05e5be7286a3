// SPDX-License-Identifier: MIT

// Package generator assembles the truncated CME generator over an Enum.
//
// For a source state s (column j) and a reaction r with propensity a = a_r(s,t):
//
//	A[j][j]      -= a
//	A[i][j]      += a    when s+Δr is enumerated at index i
//	Sink[j]      += a    otherwise
//
// so dp/dt = A·p and dpSink/dt = Sink·p, and for every column
// Σ_i A[i][j] + Sink[j] == 0.
//
// The Builder resolves targets once per Enum; Build only evaluates
// propensities, which lets time-varying models be rebuilt at every stage of
// the integrator cheaply. A Builder also satisfies ode.System directly.
package generator
