// SPDX-License-Identifier: MIT

package fsp

// Phase is the Solver's position in its step cycle.
type Phase int

const (
	// Idle waits for the next Step.
	Idle Phase = iota
	// Integrating runs the truncated system towards the target.
	Integrating
	// Accepted has committed the last attempt.
	Accepted
	// Expanding grows the domain after an over-budget attempt.
	Expanding
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Integrating:
		return "integrating"
	case Accepted:
		return "accepted"
	case Expanding:
		return "expanding"
	default:
		return "unknown"
	}
}
