// SPDX-License-Identifier: MIT

package state

import (
	"math"
)

// DefaultUnpackThreshold drops only exact zeros when unpacking.
const DefaultUnpackThreshold = 0.0

// PackOption configures Enum.Pack.
type PackOption func(*packOptions)

type packOptions struct {
	discard bool // drop out-of-enum mass into the remainder instead of failing
}

func defaultPackOptions() packOptions {
	return packOptions{discard: false}
}

// WithDiscard lets Pack drop states outside the enumeration. The dropped mass
// is returned as the remainder, it is never silently lost.
func WithDiscard() PackOption {
	return func(o *packOptions) { o.discard = true }
}

// UnpackOption configures Enum.Unpack.
type UnpackOption func(*unpackOptions)

type unpackOptions struct {
	keepZeros bool
	threshold float64
}

func defaultUnpackOptions() unpackOptions {
	return unpackOptions{keepZeros: false, threshold: DefaultUnpackThreshold}
}

// WithZeros keeps every enumerated state in the output, zeros included.
func WithZeros() UnpackOption {
	return func(o *unpackOptions) { o.keepZeros = true }
}

// WithThreshold drops entries with |p| <= eps.
// Panics if eps is negative or not finite (programmer error).
func WithThreshold(eps float64) UnpackOption {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		panic("state: WithThreshold: eps must be finite, non-negative")
	}
	return func(o *unpackOptions) { o.threshold = eps }
}
