// SPDX-License-Identifier: MIT

package state

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// keySep separates components inside a Key.
const keySep = ','

// State is one non-negative molecule count per species.
// A State is treated as immutable once handed to a Domain or an Enum;
// use Clone when a mutable copy is needed.
type State []int

// Key is the canonical, hashable form of a State. Two States are the same
// state iff their Keys are equal.
type Key string

// Sparse maps states (by Key) to probabilities. States that are absent have
// probability zero.
type Sparse map[Key]float64

// Key encodes s as comma-joined decimal components, e.g. (3,0,12) → "3,0,12".
// Complexity: O(d) for d components.
func (s State) Key() Key {
	buf := make([]byte, 0, 4*len(s)) // ~3 digits + separator per component
	for i, v := range s {
		if i > 0 {
			buf = append(buf, keySep)
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}

	return Key(buf)
}

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)

	return out
}

// Equal reports whether s and o have identical components.
func (s State) Equal(o State) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}

	return true
}

// Feasible reports whether every component of s is non-negative.
func (s State) Feasible() bool {
	for _, v := range s {
		if v < 0 {
			return false
		}
	}

	return true
}

// Shift returns s + delta as a new State. The result may be infeasible;
// callers check Feasible. Panics if the dimensions differ, which is a
// programmer error upstream of model validation.
func (s State) Shift(delta []int) State {
	if len(delta) != len(s) {
		panic("state: Shift: dimension mismatch")
	}
	out := make(State, len(s))
	for i := range s {
		out[i] = s[i] + delta[i]
	}

	return out
}

// String implements fmt.Stringer as "(3, 0, 12)".
func (s State) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range s {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(v))
	}
	sb.WriteByte(')')

	return sb.String()
}

// State decodes k back into a State.
// Returns ErrMalformedKey for empty components, non-integers or negatives.
func (k Key) State() (State, error) {
	if k == "" {
		return State{}, nil
	}
	parts := strings.Split(string(k), string(keySep))
	out := make(State, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, stateErrorf("Key.State", string(k), ErrMalformedKey)
		}
		out[i] = v
	}

	return out, nil
}

// Mass returns the total probability held by p. Keys are summed in sorted
// order so the result does not depend on map iteration order.
func (p Sparse) Mass() float64 {
	total := 0.0
	for _, k := range p.SortedKeys() {
		total += p[k]
	}

	return total
}

// SortedKeys returns the keys of p in lexicographic order.
func (p Sparse) SortedKeys() []Key {
	keys := make([]Key, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

// validProbability reports whether v is a finite, non-negative number.
func validProbability(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
