// SPDX-License-Identifier: MIT

package fsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/cmefsp/expander"
	"github.com/katalvlaran/cmefsp/generator"
	"github.com/katalvlaran/cmefsp/model"
	"github.com/katalvlaran/cmefsp/ode"
	"github.com/katalvlaran/cmefsp/state"
)

// Expander grows a Domain. It must return a superset of its input with the
// input's states first, and must not modify the input.
type Expander interface {
	Expand(d *state.Domain) (*state.Domain, error)
}

// contextExpander is implemented by expanders that honor a per-call context.
type contextExpander interface {
	ExpandContext(ctx context.Context, d *state.Domain) (*state.Domain, error)
}

// Stats accumulates work across the Solver's lifetime.
type Stats struct {
	Steps       int     // committed Step calls that advanced time
	Attempts    int     // integrations run
	Expansions  int     // domain expansions
	ClampedMass float64 // total negative mass zeroed at commit
	Integrator  ode.Stats
}

// Solver is the adaptive FSP driver.
type Solver struct {
	model     *model.Model
	reactions []model.Reaction
	exp       Expander
	opts      Options
	log       *slog.Logger

	// committed run state
	t       float64
	enum    *state.Enum
	domain  *state.Domain
	p       []float64
	pSink   float64
	builder *generator.Builder
	h       float64 // integrator step hint carried across Steps

	phase Phase
	stats Stats
}

// Create builds a Solver at t=0 with the given committed domain, Enum and
// dense distribution p0 (indexed by enum). Either domain or enum may be nil,
// in which case it is derived from the other. Time dependencies are applied
// to the model's reactions here.
func Create(m *model.Model, domain *state.Domain, enum *state.Enum, exp Expander,
	deps model.TimeDependencies, p0 []float64, opts ...Option) (*Solver, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: nil expander", ErrInvalidSetup)
	}
	reactions, err := model.ApplyTimeDependencies(m.Reactions, deps)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}

	switch {
	case domain == nil && enum == nil:
		return nil, fmt.Errorf("%w: need a domain or an enum", ErrInvalidSetup)
	case enum == nil:
		if enum, err = domain.Enum(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
		}
	case domain == nil:
		domain = enum.Domain()
	}
	if enum.Size() == 0 || domain.Len() != enum.Size() {
		return nil, fmt.Errorf("%w: domain has %d states, enum has %d", ErrInvalidSetup, domain.Len(), enum.Size())
	}
	for _, s := range enum.States() {
		if !domain.Contains(s) {
			return nil, fmt.Errorf("%w: enum state %v missing from domain", ErrInvalidSetup, s)
		}
	}
	if enum.Dim() != len(m.Species) {
		return nil, fmt.Errorf("%w: states have %d components, model has %d species", ErrInvalidSetup, enum.Dim(), len(m.Species))
	}
	if len(p0) != enum.Size() {
		return nil, fmt.Errorf("%w: p0 has %d entries, enum has %d", ErrInvalidSetup, len(p0), enum.Size())
	}
	for i, v := range p0 {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: p0[%d]=%v: %w", ErrInvalidSetup, i, v, state.ErrInvalidProbability)
		}
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if enum.Size() > o.MaxDomainSize {
		return nil, fmt.Errorf("%w: initial domain has %d states, limit %d", ErrDomainSizeExceeded, enum.Size(), o.MaxDomainSize)
	}
	builder, err := generator.NewBuilder(enum, reactions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}

	s := &Solver{
		model:     m,
		reactions: reactions,
		exp:       exp,
		opts:      o,
		log:       o.Logger.With(slog.String("run_id", o.RunID)),
		enum:      enum,
		domain:    domain.Clone(),
		p:         append([]float64(nil), p0...),
		builder:   builder,
	}
	s.log.Debug("solver created",
		slog.String("model", m.Name),
		slog.Int("domain", enum.Size()),
	)

	return s, nil
}

// FromModel starts a Solver from the model's initial state with probability 1.
// A nil exp uses an expander.SimpleExpander of depth 1.
func FromModel(m *model.Model, exp Expander, deps model.TimeDependencies, opts ...Option) (*Solver, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}
	if exp == nil {
		se, err := expander.New(m.Reactions)
		if err != nil {
			return nil, err
		}
		exp = se
	}
	domain, err := state.NewDomain(m.InitialState)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}

	return Create(m, domain, nil, exp, deps, []float64{1}, opts...)
}

// Step advances the committed state to target, keeping sink growth within
// budget. target == Time() is a no-op. On any error the committed state is
// unchanged.
func (s *Solver) Step(ctx context.Context, target, budget float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) || math.IsNaN(budget) || math.IsInf(budget, 0) {
		return fmt.Errorf("%w: target=%v budget=%v", ErrInvalidStep, target, budget)
	}
	if target < s.t {
		return fmt.Errorf("%w: target %g before current time %g", ErrInvalidStep, target, s.t)
	}
	if budget <= 0 {
		return fmt.Errorf("%w: budget %g must be positive", ErrInvalidStep, budget)
	}
	if target == s.t {
		return nil
	}
	defer func() { s.phase = Idle }()

	enum, domain, p, builder := s.enum, s.domain, s.p, s.builder
	log := s.log.With(slog.Float64("t", target), slog.Float64("budget", budget))
	for {
		s.phase = Integrating
		s.stats.Attempts++
		res, err := ode.Integrate(ctx, builder, s.t, target, p, s.pSink, ode.Options{
			RelTol:      s.opts.RelTol,
			AbsTol:      budget * s.opts.ToleranceRatio,
			InitialStep: math.Min(s.h, target-s.t),
			DenseLimit:  s.opts.DenseLimit,
		})
		addStats(&s.stats.Integrator, res.Stats)
		if err != nil {
			if errors.Is(err, ode.ErrDivergence) {
				return fmt.Errorf("%w: %w", ErrIntegrationDivergence, err)
			}
			return fmt.Errorf("fsp: integrate to %g: %w", target, err)
		}

		growth := res.Sink - s.pSink
		if growth <= budget {
			s.phase = Accepted
			s.commit(target, enum, domain, builder, res)
			log.Debug("step accepted",
				slog.Int("domain", enum.Size()),
				slog.Float64("growth", growth),
			)
			return nil
		}

		s.phase = Expanding
		log.Debug("step rejected, expanding",
			slog.Int("domain", enum.Size()),
			slog.Float64("growth", growth),
		)
		grown, err := s.expand(ctx, domain)
		if err != nil {
			return err
		}
		next, err := grown.Enum()
		if err != nil {
			return fmt.Errorf("fsp: enumerate expanded domain: %w", err)
		}
		if p, err = next.Remap(enum, p); err != nil {
			return fmt.Errorf("fsp: remap: %w", err)
		}
		if builder, err = generator.NewBuilder(next, s.reactions); err != nil {
			return fmt.Errorf("fsp: generator: %w", err)
		}
		s.stats.Expansions++
		s.opts.OnExpand(enum.Size(), next.Size())
		log.Info("domain expanded",
			slog.Int("from", enum.Size()),
			slog.Int("domain", next.Size()),
		)
		enum, domain = next, grown
	}
}

// expand grows d once and enforces the size guard.
func (s *Solver) expand(ctx context.Context, d *state.Domain) (*state.Domain, error) {
	var (
		grown *state.Domain
		err   error
	)
	if ce, ok := s.exp.(contextExpander); ok {
		grown, err = ce.ExpandContext(ctx, d)
	} else {
		grown, err = s.exp.Expand(d)
	}
	switch {
	case errors.Is(err, expander.ErrTooManyStates):
		return nil, fmt.Errorf("%w: %w", ErrDomainSizeExceeded, err)
	case err != nil:
		return nil, fmt.Errorf("fsp: expand: %w", err)
	case grown.Len() <= d.Len():
		return nil, fmt.Errorf("%w: expansion added no states to %d", ErrDomainSizeExceeded, d.Len())
	case grown.Len() > s.opts.MaxDomainSize:
		return nil, fmt.Errorf("%w: %d states, limit %d", ErrDomainSizeExceeded, grown.Len(), s.opts.MaxDomainSize)
	}

	return grown, nil
}

// commit installs an accepted attempt. Round-off negatives are zeroed.
func (s *Solver) commit(t float64, enum *state.Enum, domain *state.Domain, b *generator.Builder, res ode.Result) {
	for i, v := range res.Y {
		if v < 0 {
			s.stats.ClampedMass -= v
			res.Y[i] = 0
		}
	}
	s.t = t
	s.enum = enum
	s.domain = domain
	s.builder = b
	s.p = res.Y
	s.pSink = res.Sink
	s.h = res.NextStep
	s.stats.Steps++
}

func addStats(dst *ode.Stats, src ode.Stats) {
	dst.Steps += src.Steps
	dst.Rejected += src.Rejected
	dst.Evaluations += src.Evaluations
	dst.LinearSolves += src.LinearSolves
	dst.Factorizations += src.Factorizations
	dst.Iterations += src.Iterations
}

// Time returns the committed time.
func (s *Solver) Time() float64 { return s.t }

// Y returns the committed dense distribution (indexed by Enum) and the sink
// mass. The slice is owned by the Solver.
func (s *Solver) Y() ([]float64, float64) { return s.p, s.pSink }

// Enum returns the committed Enum.
func (s *Solver) Enum() *state.Enum { return s.enum }

// DomainStates returns the committed domain's states in order.
func (s *Solver) DomainStates() []state.State { return s.domain.States() }

// Phase reports where the Solver is in its step cycle.
func (s *Solver) Phase() Phase { return s.phase }

// Stats returns accumulated counters.
func (s *Solver) Stats() Stats { return s.stats }

// RunID returns the identifier attached to every log record.
func (s *Solver) RunID() string { return s.opts.RunID }

// Model returns the model the Solver was created for.
func (s *Solver) Model() *model.Model { return s.model }

// Sparse unpacks the committed distribution.
func (s *Solver) Sparse(opts ...state.UnpackOption) (state.Sparse, error) {
	return s.enum.Unpack(s.p, opts...)
}
