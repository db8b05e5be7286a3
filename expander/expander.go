// SPDX-License-Identifier: MIT

package expander

import (
	"context"
	"fmt"

	"github.com/katalvlaran/cmefsp/model"
	"github.com/katalvlaran/cmefsp/state"
)

// SimpleExpander grows a Domain by applying reaction deltas breadth-first.
// It holds no mutable state, so one value may serve any number of Expand
// calls.
type SimpleExpander struct {
	deltas [][]int
	opts   Options
}

// New builds a SimpleExpander for the deltas of reactions.
// Returns ErrOptionViolation for invalid options.
func New(reactions []model.Reaction, opts ...Option) (*SimpleExpander, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	deltas := make([][]int, len(reactions))
	for i, r := range reactions {
		deltas[i] = append([]int(nil), r.Delta...)
	}

	return &SimpleExpander{deltas: deltas, opts: o}, nil
}

// Depth returns the configured number of rounds.
func (e *SimpleExpander) Depth() int { return e.opts.Depth }

// Expand returns a new Domain holding d followed by every feasible state
// reachable from it in at most Depth reactions. d is not modified.
func (e *SimpleExpander) Expand(d *state.Domain) (*state.Domain, error) {
	return e.ExpandContext(e.opts.Ctx, d)
}

// ExpandContext is Expand with an explicit context, checked once per
// frontier state.
func (e *SimpleExpander) ExpandContext(ctx context.Context, d *state.Domain) (*state.Domain, error) {
	out := d.Clone()
	if out.Len() == 0 {
		return out, nil
	}
	for i, delta := range e.deltas {
		if len(delta) != out.Dim() {
			return nil, fmt.Errorf("%w: reaction %d has %d components, domain has %d",
				ErrDimensionMismatch, i, len(delta), out.Dim())
		}
	}

	w := &walker{
		deltas: e.deltas,
		opts:   e.opts,
		ctx:    ctx,
		queue:  make([]queueItem, 0, out.Len()),
		out:    out,
	}
	out.Each(func(_ int, s state.State) bool {
		w.queue = append(w.queue, queueItem{s: s})
		return true
	})
	if err := w.loop(); err != nil {
		return nil, err
	}

	return out, nil
}

// queueItem pairs a state with the round it was reached in.
type queueItem struct {
	s     state.State
	depth int
}

// walker encapsulates mutable expansion state.
type walker struct {
	deltas [][]int
	opts   Options
	ctx    context.Context
	queue  []queueItem
	out    *state.Domain
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]
		if item.depth >= w.opts.Depth {
			continue
		}
		if err := w.enqueueSuccessors(item); err != nil {
			return err
		}
	}

	return nil
}

// enqueueSuccessors applies every delta to item, in reaction order, and
// enqueues the feasible states not seen before.
func (w *walker) enqueueSuccessors(item queueItem) error {
	next := item.depth + 1
	for _, delta := range w.deltas {
		c := item.s.Shift(delta)
		if !c.Feasible() {
			continue
		}
		added, err := w.out.Add(c)
		if err != nil {
			return fmt.Errorf("expander: add %v: %w", c, err)
		}
		if !added {
			continue
		}
		if w.opts.MaxStates > 0 && w.out.Len() > w.opts.MaxStates {
			return fmt.Errorf("%w: more than %d", ErrTooManyStates, w.opts.MaxStates)
		}
		w.opts.OnDiscover(c, next)
		w.queue = append(w.queue, queueItem{s: c, depth: next})
	}

	return nil
}
