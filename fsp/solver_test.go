// SPDX-License-Identifier: MIT

package fsp_test

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cmefsp/expander"
	"github.com/katalvlaran/cmefsp/fsp"
	"github.com/katalvlaran/cmefsp/model"
	"github.com/katalvlaran/cmefsp/state"
)

func poisson(k int, mu float64) float64 {
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(mu) - mu - lg)
}

func mass(p []float64, sink float64) float64 {
	total := sink
	for _, v := range p {
		total += v
	}
	return total
}

func newBirthSolver(t *testing.T, lambda float64, opts ...fsp.Option) *fsp.Solver {
	t.Helper()
	m := model.Birth(lambda)
	exp, err := expander.New(m.Reactions, expander.WithDepth(1))
	require.NoError(t, err)
	domain, err := state.NewDomain(state.State{0})
	require.NoError(t, err)
	enum, err := domain.Enum()
	require.NoError(t, err)
	dense, _, err := enum.Pack(state.Sparse{state.State{0}.Key(): 1})
	require.NoError(t, err)

	s, err := fsp.Create(m, domain, enum, exp, nil, dense, opts...)
	require.NoError(t, err)
	return s
}

func TestSolver_BirthMatchesPoisson(t *testing.T) {
	const lambda = 1.0
	s := newBirthSolver(t, lambda)
	assert.Equal(t, fsp.Idle, s.Phase())

	require.NoError(t, s.Step(context.Background(), 1, 1e-3))
	assert.Equal(t, 1.0, s.Time())
	assert.Equal(t, fsp.Idle, s.Phase())

	p, sink := s.Y()
	assert.LessOrEqual(t, sink, 1e-3)
	assert.InDelta(t, 1, mass(p, sink), 1e-6)
	assert.Greater(t, s.Enum().Size(), 1)

	e := s.Enum()
	for i := 0; i < e.Size(); i++ {
		k := e.At(i)[0]
		assert.InDelta(t, poisson(k, lambda), p[i], 1e-4, "p(%d)", k)
	}
	assert.Positive(t, s.Stats().Expansions)
	assert.Equal(t, 1, s.Stats().Steps)
	assert.Equal(t, s.Stats().Expansions+1, s.Stats().Attempts)
}

func TestSolver_InvalidStepLeavesStateUnchanged(t *testing.T) {
	s := newBirthSolver(t, 2)
	ctx := context.Background()
	require.NoError(t, s.Step(ctx, 0.5, 1e-3))

	p0, sink0 := s.Y()
	p0 = append([]float64(nil), p0...)
	size0 := s.Enum().Size()
	stats0 := s.Stats()

	for _, tc := range []struct {
		name           string
		target, budget float64
	}{
		{"past target", 0.25, 1e-3},
		{"zero budget", 1, 0},
		{"negative budget", 1, -1},
		{"nan target", math.NaN(), 1e-3},
		{"inf budget", 1, math.Inf(1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Step(ctx, tc.target, tc.budget)
			require.ErrorIs(t, err, fsp.ErrInvalidStep)

			p, sink := s.Y()
			assert.Equal(t, 0.5, s.Time())
			assert.Equal(t, p0, p)
			assert.Equal(t, sink0, sink)
			assert.Equal(t, size0, s.Enum().Size())
			assert.Equal(t, stats0, s.Stats())
		})
	}

	// Equal target is a no-op.
	require.NoError(t, s.Step(ctx, 0.5, 1e-3))
	assert.Equal(t, stats0, s.Stats())
}

func TestSolver_NonFiniteRateIsDivergence(t *testing.T) {
	m := model.Birth(2)
	deps := model.TimeDependencies{"birth": func(t float64) float64 {
		if t > 0.5 {
			return math.Inf(1)
		}
		return 1
	}}
	s, err := fsp.FromModel(m, nil, deps)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Step(ctx, 0.25, 1e-3))
	p0, sink0 := s.Y()
	p0 = append([]float64(nil), p0...)
	size0 := s.Enum().Size()

	err = s.Step(ctx, 1, 1e-3)
	require.ErrorIs(t, err, fsp.ErrIntegrationDivergence)

	p, sink := s.Y()
	assert.Equal(t, 0.25, s.Time())
	assert.Equal(t, p0, p)
	assert.Equal(t, sink0, sink)
	assert.Equal(t, size0, s.Enum().Size())
	assert.Equal(t, fsp.Idle, s.Phase())
}

func TestSolver_BudgetAndGrowth(t *testing.T) {
	m := model.Burr08()
	exp, err := expander.New(m.Reactions, expander.WithDepth(3))
	require.NoError(t, err)

	var sizes []int
	var phases []fsp.Phase
	var s *fsp.Solver
	s, err = fsp.FromModel(m, exp, model.Burr08TimeDependencies(),
		fsp.WithOnExpand(func(oldSize, newSize int) {
			sizes = append(sizes, oldSize, newSize)
			phases = append(phases, s.Phase())
		}),
	)
	require.NoError(t, err)

	const budget = 1e-3
	ctx := context.Background()
	prev := s.DomainStates()
	_, prevSink := s.Y()
	for _, target := range []float64{0, 0.25, 0.5, 0.75, 1} {
		require.NoError(t, s.Step(ctx, target, budget))

		p, sink := s.Y()
		assert.LessOrEqual(t, sink-prevSink, budget, "t=%g", target)
		assert.InDelta(t, 1, mass(p, sink), 1e-6, "t=%g", target)
		for _, v := range p {
			assert.GreaterOrEqual(t, v, 0.0)
		}

		cur := s.DomainStates()
		require.GreaterOrEqual(t, len(cur), len(prev))
		for i := range prev {
			assert.True(t, prev[i].Equal(cur[i]), "state %d moved", i)
		}
		prev, prevSink = cur, sink
	}

	require.NotEmpty(t, sizes)
	for i := 0; i < len(sizes); i += 2 {
		assert.Less(t, sizes[i], sizes[i+1])
	}
	for _, ph := range phases {
		assert.Equal(t, fsp.Expanding, ph)
	}

	sparse, err := s.Sparse()
	require.NoError(t, err)
	_, sink := s.Y()
	assert.InDelta(t, 1-sink, sparse.Mass(), 1e-9)
}

func TestSolver_DomainSizeGuard(t *testing.T) {
	s := newBirthSolver(t, 1, fsp.WithMaxDomainSize(3))
	err := s.Step(context.Background(), 1, 1e-6)
	require.ErrorIs(t, err, fsp.ErrDomainSizeExceeded)

	assert.Equal(t, 0.0, s.Time())
	assert.Equal(t, 1, s.Enum().Size())
	p, sink := s.Y()
	assert.Equal(t, []float64{1}, p)
	assert.Equal(t, 0.0, sink)
}

// stuck never adds states.
type stuck struct{}

func (stuck) Expand(d *state.Domain) (*state.Domain, error) { return d.Clone(), nil }

func TestSolver_ExpansionMustGrow(t *testing.T) {
	s, err := fsp.FromModel(model.Birth(1), stuck{}, nil)
	require.NoError(t, err)
	err = s.Step(context.Background(), 1, 1e-3)
	require.ErrorIs(t, err, fsp.ErrDomainSizeExceeded)
	assert.Equal(t, fsp.Idle, s.Phase())
}

func TestSolver_ExpanderLimit(t *testing.T) {
	m := model.Birth(1)
	exp, err := expander.New(m.Reactions, expander.WithMaxStates(2))
	require.NoError(t, err)
	s, err := fsp.FromModel(m, exp, nil)
	require.NoError(t, err)

	err = s.Step(context.Background(), 1, 1e-6)
	require.ErrorIs(t, err, fsp.ErrDomainSizeExceeded)
	require.ErrorIs(t, err, expander.ErrTooManyStates)
}

func TestSolver_Cancelled(t *testing.T) {
	s := newBirthSolver(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Step(ctx, 1, 1e-3), context.Canceled)
	assert.Equal(t, 0.0, s.Time())
}

func TestSolver_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := newBirthSolver(t, 1, fsp.WithLogger(logger), fsp.WithRunID("run-42"))
	assert.Equal(t, "run-42", s.RunID())
	require.NoError(t, s.Step(context.Background(), 1, 1e-3))

	out := buf.String()
	assert.Contains(t, out, "run_id=run-42")
	assert.Contains(t, out, "domain expanded")
	assert.Contains(t, out, "step accepted")
}

func TestCreate_Errors(t *testing.T) {
	m := model.Birth(1)
	exp, err := expander.New(m.Reactions)
	require.NoError(t, err)
	domain, err := state.NewDomain(state.State{0}, state.State{1})
	require.NoError(t, err)

	_, err = fsp.Create(m, domain, nil, exp, nil, []float64{1})
	assert.ErrorIs(t, err, fsp.ErrInvalidSetup)

	_, err = fsp.Create(m, domain, nil, exp, nil, []float64{1, -0.5})
	assert.ErrorIs(t, err, state.ErrInvalidProbability)

	_, err = fsp.Create(m, domain, nil, nil, nil, []float64{1, 0})
	assert.ErrorIs(t, err, fsp.ErrInvalidSetup)

	_, err = fsp.Create(m, nil, nil, exp, nil, []float64{1})
	assert.ErrorIs(t, err, fsp.ErrInvalidSetup)

	_, err = fsp.Create(m, domain, nil, exp, model.TimeDependencies{"nope": math.Exp}, []float64{1, 0})
	assert.ErrorIs(t, err, model.ErrUnknownReaction)

	other, err := state.NewEnum([]state.State{{0}, {2}})
	require.NoError(t, err)
	_, err = fsp.Create(m, domain, other, exp, nil, []float64{1, 0})
	assert.ErrorIs(t, err, fsp.ErrInvalidSetup)

	_, err = fsp.Create(m, domain, nil, exp, nil, []float64{1, 0}, fsp.WithMaxDomainSize(1))
	assert.ErrorIs(t, err, fsp.ErrDomainSizeExceeded)

	s, err := fsp.Create(m, domain, nil, exp, nil, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.Same(t, m, s.Model())
	assert.Len(t, s.DomainStates(), 2)
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { fsp.WithMaxDomainSize(0) })
	assert.Panics(t, func() { fsp.WithToleranceRatio(0) })
	assert.Panics(t, func() { fsp.WithToleranceRatio(2) })
	assert.Panics(t, func() { fsp.WithRelTol(-1) })
	assert.NotPanics(t, func() { fsp.WithRelTol(1e-8) })
}
