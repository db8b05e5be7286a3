// SPDX-License-Identifier: MIT

package recorder

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/cmefsp/state"
)

// Sink receives every distribution written to a Recorder.
type Sink interface {
	Record(t float64, p state.Sparse) error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSink forwards every Write to sink after the statistics are stored.
func WithSink(sink Sink) Option {
	return func(r *Recorder) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// point is one support point of the projected joint distribution.
type point struct {
	counts []float64
	mass   float64
}

// snapshot is everything recorded for one time.
type snapshot struct {
	t        float64
	mean     []float64
	std      []float64
	marginal []map[float64]float64
	joint    []point
}

// Recorder accumulates statistics over time. Not safe for concurrent use.
type Recorder struct {
	species []string
	index   map[string]int
	counts  func(state.State) []float64
	snaps   []snapshot
	sink    Sink
}

// New returns a Recorder for the named species. counts maps a State to one
// value per species; nil uses the state components directly.
func New(species []string, counts func(state.State) []float64, opts ...Option) (*Recorder, error) {
	if len(species) == 0 {
		return nil, fmt.Errorf("%w: no species", ErrUnknownSpecies)
	}
	index := make(map[string]int, len(species))
	for i, name := range species {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate %q", ErrUnknownSpecies, name)
		}
		index[name] = i
	}
	if counts == nil {
		counts = func(s state.State) []float64 {
			out := make([]float64, len(s))
			for i, v := range s {
				out[i] = float64(v)
			}
			return out
		}
	}
	r := &Recorder{
		species: append([]string(nil), species...),
		index:   index,
		counts:  counts,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Species returns the tracked species names.
func (r *Recorder) Species() []string { return append([]string(nil), r.species...) }

// Write records the statistics of p at time t. Times must be non-decreasing.
// The sink sees p before the statistics are kept; a sink error records
// nothing.
func (r *Recorder) Write(t float64, p state.Sparse) error {
	if n := len(r.snaps); n > 0 && t < r.snaps[n-1].t {
		return fmt.Errorf("%w: %g after %g", ErrTimeOrder, t, r.snaps[n-1].t)
	}
	d := len(r.species)
	snap := snapshot{
		t:        t,
		mean:     make([]float64, d),
		std:      make([]float64, d),
		marginal: make([]map[float64]float64, d),
	}
	for i := range snap.marginal {
		snap.marginal[i] = make(map[float64]float64)
	}
	second := make([]float64, d)
	joint := make(map[string]int)

	// Sorted keys fix the summation order.
	for _, k := range p.SortedKeys() {
		s, err := k.State()
		if err != nil {
			return err
		}
		mass := p[k]
		c := r.counts(s)
		if len(c) != d {
			return fmt.Errorf("%w: %d values for %d species", ErrCountsMismatch, len(c), d)
		}
		for i, x := range c {
			snap.mean[i] += mass * x
			second[i] += mass * x * x
			snap.marginal[i][x] += mass
		}
		jk := countsKey(c)
		if j, ok := joint[jk]; ok {
			snap.joint[j].mass += mass
		} else {
			joint[jk] = len(snap.joint)
			snap.joint = append(snap.joint, point{counts: c, mass: mass})
		}
	}
	for i := range snap.std {
		snap.std[i] = math.Sqrt(math.Max(0, second[i]-snap.mean[i]*snap.mean[i]))
	}
	if r.sink != nil {
		if err := r.sink.Record(t, p); err != nil {
			return fmt.Errorf("recorder: sink: %w", err)
		}
	}
	r.snaps = append(r.snaps, snap)

	return nil
}

// Times returns the recorded times in order.
func (r *Recorder) Times() []float64 {
	out := make([]float64, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.t
	}

	return out
}

// Expectation returns E[species] at every recorded time.
func (r *Recorder) Expectation(species string) ([]float64, error) {
	i, err := r.lookup(species)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(r.snaps))
	for k, s := range r.snaps {
		out[k] = s.mean[i]
	}

	return out, nil
}

// StdDev returns the standard deviation of species at every recorded time.
func (r *Recorder) StdDev(species string) ([]float64, error) {
	i, err := r.lookup(species)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(r.snaps))
	for k, s := range r.snaps {
		out[k] = s.std[i]
	}

	return out, nil
}

// Marginal returns the distribution of species counts at time index k.
func (r *Recorder) Marginal(species string, k int) (map[float64]float64, error) {
	i, err := r.lookup(species)
	if err != nil {
		return nil, err
	}
	if k < 0 || k >= len(r.snaps) {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, k, len(r.snaps))
	}
	out := make(map[float64]float64, len(r.snaps[k].marginal[i]))
	for x, m := range r.snaps[k].marginal[i] {
		out[x] = m
	}

	return out, nil
}

// Measurement is the recorded view of a tuple of species.
type Measurement struct {
	Species []string
	Times   []float64

	// Distributions[k] maps a comma-joined count tuple ("3,0") to its mass
	// at Times[k].
	Distributions []map[string]float64
}

// Joint projects the recorded distributions onto the named species, in the
// order given.
func (r *Recorder) Joint(names ...string) (*Measurement, error) {
	if len(names) == 0 {
		names = r.species
	}
	idx := make([]int, len(names))
	for j, name := range names {
		i, err := r.lookup(name)
		if err != nil {
			return nil, err
		}
		idx[j] = i
	}
	m := &Measurement{
		Species:       append([]string(nil), names...),
		Times:         r.Times(),
		Distributions: make([]map[string]float64, len(r.snaps)),
	}
	sub := make([]float64, len(idx))
	for k, s := range r.snaps {
		dist := make(map[string]float64)
		for _, pt := range s.joint {
			for j, i := range idx {
				sub[j] = pt.counts[i]
			}
			dist[countsKey(sub)] += pt.mass
		}
		m.Distributions[k] = dist
	}

	return m, nil
}

// Keys returns the support of Distributions[k] in sorted order.
func (m *Measurement) Keys(k int) []string {
	out := make([]string, 0, len(m.Distributions[k]))
	for key := range m.Distributions[k] {
		out = append(out, key)
	}
	sort.Strings(out)

	return out
}

func (r *Recorder) lookup(species string) (int, error) {
	i, ok := r.index[species]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSpecies, species)
	}

	return i, nil
}

// countsKey joins counts with commas using the shortest exact formatting.
func countsKey(c []float64) string {
	var sb strings.Builder
	for i, x := range c {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}

	return sb.String()
}
