// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/cmefsp/config"
	"github.com/katalvlaran/cmefsp/expander"
	"github.com/katalvlaran/cmefsp/fsp"
	"github.com/katalvlaran/cmefsp/model"
	"github.com/katalvlaran/cmefsp/recorder"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string
	Model    string
	Database string
	Epsilon  float64
	Depth    int

	// RunID overrides the generated run ID (for testing).
	RunID string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Solve a model over a time grid",
		Long: `Solve a model with adaptive FSP over a time grid.

The total error budget epsilon is spread evenly over the time points.
Flags override values from the --config file.

Example:
  cmefsp run
  cmefsp run --model birth --epsilon 1e-3
  cmefsp run --config run.yaml --db runs.db --log-level debug`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolver(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to a run configuration YAML")
	cmd.Flags().StringVar(&opts.Model, "model", "", "bundled model name or path to a model YAML")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to a SQLite database for snapshots")
	cmd.Flags().Float64Var(&opts.Epsilon, "epsilon", config.DefaultEpsilon, "total error budget at the final time")
	cmd.Flags().IntVar(&opts.Depth, "depth", config.DefaultDepth, "expansion depth")

	return cmd
}

// resolveConfig loads --config and applies flag overrides.
func resolveConfig(opts *RunOptions, cmd *cobra.Command) (*config.Run, error) {
	run := config.Default()
	if opts.Config != "" {
		var err error
		if run, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("model") {
		if strings.HasSuffix(opts.Model, ".yaml") || strings.HasSuffix(opts.Model, ".yml") {
			run.ModelFile = opts.Model
		} else {
			run.Model, run.ModelFile = opts.Model, ""
		}
	}
	if flags.Changed("db") {
		run.Database = opts.Database
	}
	if flags.Changed("epsilon") {
		run.Epsilon = opts.Epsilon
	}
	if flags.Changed("depth") {
		run.Depth = opts.Depth
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	return run, nil
}

// loadModel returns the configured model and its time dependencies.
func loadModel(run *config.Run) (*model.Model, model.TimeDependencies, error) {
	if run.ModelFile != "" {
		m, err := model.LoadFile(run.ModelFile)
		return m, nil, err
	}

	return model.Lookup(run.Model)
}

func runSolver(opts *RunOptions, cmd *cobra.Command) error {
	level, err := parseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	base := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	run, err := resolveConfig(opts, cmd)
	if err != nil {
		return err
	}
	m, deps, err := loadModel(run)
	if err != nil {
		return err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.Must(uuid.NewV7()).String()
	}
	// The solver attaches run_id itself.
	logger := base.With(slog.String("run_id", runID))

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var recOpts []recorder.Option
	if run.Database != "" {
		st, err := recorder.Open(run.Database)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		err = st.SaveRun(ctx, recorder.Run{ID: runID, Model: m.Name, Species: m.Species, Epsilon: run.Epsilon})
		if err != nil {
			return err
		}
		recOpts = append(recOpts, recorder.WithSink(st.Sink(ctx, runID)))
		logger.Info("database ready", "path", run.Database)
	}
	rec, err := recorder.New(m.Species, m.Counts, recOpts...)
	if err != nil {
		return err
	}

	exp, err := expander.New(m.Reactions, expander.WithDepth(run.Depth))
	if err != nil {
		return err
	}
	solverOpts := []fsp.Option{fsp.WithLogger(base), fsp.WithRunID(runID)}
	if run.MaxDomainSize > 0 {
		solverOpts = append(solverOpts, fsp.WithMaxDomainSize(run.MaxDomainSize))
	}
	if run.ToleranceRatio > 0 {
		solverOpts = append(solverOpts, fsp.WithToleranceRatio(run.ToleranceRatio))
	}
	if run.RelTol > 0 {
		solverOpts = append(solverOpts, fsp.WithRelTol(run.RelTol))
	}
	solver, err := fsp.FromModel(m, exp, deps, solverOpts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	points := run.Points()
	budget := run.StepBudget()
	logger.Info("solving", "model", m.Name, "points", len(points), "budget", budget)
	for i, t := range points {
		if err := solver.Step(ctx, t, budget); err != nil {
			return fmt.Errorf("step to t=%g: %w", t, err)
		}
		_, sink := solver.Y()
		fmt.Fprintf(out, "STEP t=%g domain=%d sink=%.3g\n", t, solver.Enum().Size(), sink)
		if i%run.RecordEvery != 0 {
			continue
		}
		p, err := solver.Sparse()
		if err != nil {
			return err
		}
		if err := rec.Write(t, p); err != nil {
			return err
		}
	}

	return writeSummary(out, rec)
}

// writeSummary prints expectation ± standard deviation per recorded time.
func writeSummary(out io.Writer, rec *recorder.Recorder) error {
	species := rec.Species()
	means := make([][]float64, len(species))
	stds := make([][]float64, len(species))
	for i, name := range species {
		var err error
		if means[i], err = rec.Expectation(name); err != nil {
			return err
		}
		if stds[i], err = rec.StdDev(name); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "%-8s", "t")
	for _, name := range species {
		fmt.Fprintf(out, " %20s", name)
	}
	fmt.Fprintln(out)
	for k, t := range rec.Times() {
		fmt.Fprintf(out, "%-8g", t)
		for i := range species {
			fmt.Fprintf(out, " %20s", fmt.Sprintf("%.4f ± %.4f", means[i][k], stds[i][k]))
		}
		fmt.Fprintln(out)
	}

	return nil
}
