// SPDX-License-Identifier: MIT

package state

// Domain is a duplicate-free set of States that remembers first-seen order.
// States are only ever added; removal is intentionally not offered, so a
// Domain grows monotonically for its whole lifetime.
//
// A Domain is not safe for concurrent mutation.
type Domain struct {
	states []State     // insertion order, each entry unique
	index  map[Key]int // Key → position in states
	dim    int         // component count shared by all states; -1 while empty
}

// NewDomain builds a Domain from states, dropping repeats and keeping the
// first occurrence of each state in place.
// Returns ErrInvalidState for negative components or mixed dimensions.
// Complexity: O(n·d).
func NewDomain(states ...State) (*Domain, error) {
	d := &Domain{
		states: make([]State, 0, len(states)),
		index:  make(map[Key]int, len(states)),
		dim:    -1,
	}
	for _, s := range states {
		if _, err := d.Add(s); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// FromStates is NewDomain for callers holding a slice.
func FromStates(states []State) (*Domain, error) {
	return NewDomain(states...)
}

// Add inserts s if it is not present yet and reports whether it was added.
// The Domain keeps its own copy of s.
func (d *Domain) Add(s State) (bool, error) {
	if !s.Feasible() {
		return false, stateErrorf("Domain.Add", s, ErrInvalidState)
	}
	if d.dim >= 0 && len(s) != d.dim {
		return false, stateErrorf("Domain.Add", s, ErrInvalidState)
	}
	k := s.Key()
	if _, ok := d.index[k]; ok {
		return false, nil
	}
	if d.dim < 0 {
		d.dim = len(s)
	}
	d.index[k] = len(d.states)
	d.states = append(d.states, s.Clone())

	return true, nil
}

// Union returns a new Domain holding the states of a in order followed by
// the states of b that a did not already contain, in b's order.
// Neither input is modified. A nil operand is treated as empty.
func Union(a, b *Domain) (*Domain, error) {
	out := a.Clone()
	if b == nil {
		return out, nil
	}
	for _, s := range b.states {
		if _, err := out.Add(s); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Clone returns an independent Domain with the same states and order.
// The state slices themselves are shared; they are immutable by contract.
func (d *Domain) Clone() *Domain {
	if d == nil {
		return &Domain{index: map[Key]int{}, dim: -1}
	}
	out := &Domain{
		states: make([]State, len(d.states)),
		index:  make(map[Key]int, len(d.index)),
		dim:    d.dim,
	}
	copy(out.states, d.states)
	for k, i := range d.index {
		out.index[k] = i
	}

	return out
}

// Len returns the number of states.
func (d *Domain) Len() int { return len(d.states) }

// Dim returns the number of components per state, or -1 for an empty Domain.
func (d *Domain) Dim() int { return d.dim }

// Contains reports whether s belongs to the Domain.
func (d *Domain) Contains(s State) bool {
	_, ok := d.index[s.Key()]
	return ok
}

// ContainsKey reports whether the state encoded by k belongs to the Domain.
func (d *Domain) ContainsKey(k Key) bool {
	_, ok := d.index[k]
	return ok
}

// At returns the i-th state in first-seen order.
func (d *Domain) At(i int) State { return d.states[i] }

// States returns the states in first-seen order. The returned slice is a
// copy; the states it holds must not be mutated.
func (d *Domain) States() []State {
	out := make([]State, len(d.states))
	copy(out, d.states)

	return out
}

// Each calls fn for every state in order until fn returns false.
func (d *Domain) Each(fn func(i int, s State) bool) {
	for i, s := range d.states {
		if !fn(i, s) {
			return
		}
	}
}

// Enum snapshots the Domain into an immutable Enum with the same order.
func (d *Domain) Enum() (*Enum, error) {
	return NewEnum(d.states)
}
