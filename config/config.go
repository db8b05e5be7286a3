// SPDX-License-Identifier: MIT

// Package config loads run configurations for the cmefsp command.
//
// A run file names a model (bundled or a YAML model file), the time grid,
// the total error budget and the expansion and recording settings:
//
//	model: burr08
//	epsilon: 0.01
//	depth: 3
//	record_every: 3
//	times:
//	  - {start: 0, stop: 1, num: 10}
//	  - {start: 2, stop: 16, num: 15}
//
// The budget of every step is epsilon divided by the number of time points,
// so the error at the final time stays below epsilon.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Defaults used by Default and for omitted fields.
const (
	DefaultModel       = "burr08"
	DefaultEpsilon     = 1e-2
	DefaultDepth       = 3
	DefaultRecordEvery = 3
)

// Segment is an inclusive, evenly spaced run of Num time points.
type Segment struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Num   int     `yaml:"num"`
}

// Points returns Num points from Start to Stop inclusive.
func (s Segment) Points() []float64 {
	switch {
	case s.Num <= 0:
		return nil
	case s.Num == 1:
		return []float64{s.Start}
	}
	out := make([]float64, s.Num)
	step := (s.Stop - s.Start) / float64(s.Num-1)
	for i := range out {
		out[i] = s.Start + float64(i)*step
	}
	out[s.Num-1] = s.Stop

	return out
}

// Run is a complete run configuration.
type Run struct {
	// Model is a bundled model name; ignored when ModelFile is set.
	Model string `yaml:"model,omitempty"`

	// ModelFile is a YAML model path, resolved relative to the run file.
	ModelFile string `yaml:"model_file,omitempty"`

	// Epsilon bounds the total truncation error at the final time.
	Epsilon float64 `yaml:"epsilon"`

	// Depth is the expander's breadth-first depth.
	Depth int `yaml:"depth"`

	// MaxDomainSize caps the domain; 0 keeps the solver default.
	MaxDomainSize int `yaml:"max_domain_size,omitempty"`

	// ToleranceRatio and RelTol tune the integrator; 0 keeps the defaults.
	ToleranceRatio float64 `yaml:"tolerance_ratio,omitempty"`
	RelTol         float64 `yaml:"rel_tol,omitempty"`

	// RecordEvery records every n-th time point (the first is always recorded).
	RecordEvery int `yaml:"record_every"`

	// Database is an optional SQLite path for persisted snapshots.
	Database string `yaml:"db,omitempty"`

	// Times lists grid segments; TimePoints lists explicit times. Both may
	// be given; the union is used.
	Times      []Segment `yaml:"times,omitempty"`
	TimePoints []float64 `yaml:"time_points,omitempty"`
}

// Default returns the configuration of the bundled burr08 example: a fine
// grid over the stiff start, then a coarse one.
func Default() *Run {
	return &Run{
		Model:       DefaultModel,
		Epsilon:     DefaultEpsilon,
		Depth:       DefaultDepth,
		RecordEvery: DefaultRecordEvery,
		Times: []Segment{
			{Start: 0, Stop: 1, Num: 10},
			{Start: 2, Stop: 16, Num: 15},
		},
	}
}

// Load reads a run file. Relative model_file paths resolve against the
// file's directory.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	r, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if r.ModelFile != "" && !filepath.IsAbs(r.ModelFile) {
		r.ModelFile = filepath.Join(filepath.Dir(path), r.ModelFile)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// LoadYAML decodes and validates a run configuration from r. Omitted fields
// keep their Default values.
func LoadYAML(r io.Reader) (*Run, error) {
	run, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	return run, nil
}

func decode(r io.Reader) (*Run, error) {
	run := Default()
	run.Times = nil
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(run); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(run.Times) == 0 && len(run.TimePoints) == 0 {
		run.Times = Default().Times
	}

	return run, nil
}

// Validate checks the configuration.
func (r *Run) Validate() error {
	switch {
	case r.Model == "" && r.ModelFile == "":
		return fmt.Errorf("%w: model or model_file is required", ErrInvalidConfig)
	case !(r.Epsilon > 0) || math.IsInf(r.Epsilon, 0):
		return fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidConfig, r.Epsilon)
	case r.Depth < 1:
		return fmt.Errorf("%w: depth must be >= 1, got %d", ErrInvalidConfig, r.Depth)
	case r.RecordEvery < 1:
		return fmt.Errorf("%w: record_every must be >= 1, got %d", ErrInvalidConfig, r.RecordEvery)
	case r.MaxDomainSize < 0:
		return fmt.Errorf("%w: max_domain_size must not be negative", ErrInvalidConfig)
	case !(r.ToleranceRatio >= 0 && r.ToleranceRatio <= 1):
		return fmt.Errorf("%w: tolerance_ratio must be in [0, 1], got %v", ErrInvalidConfig, r.ToleranceRatio)
	case !(r.RelTol >= 0) || math.IsInf(r.RelTol, 0):
		return fmt.Errorf("%w: rel_tol must be finite and not negative, got %v", ErrInvalidConfig, r.RelTol)
	}
	for i, s := range r.Times {
		if s.Num < 1 || !finite(s.Start) || !finite(s.Stop) || s.Stop < s.Start {
			return fmt.Errorf("%w: times[%d] = %+v", ErrInvalidConfig, i, s)
		}
	}
	for i, t := range r.TimePoints {
		if !finite(t) {
			return fmt.Errorf("%w: time_points[%d] = %v", ErrInvalidConfig, i, t)
		}
	}
	pts := r.Points()
	if len(pts) == 0 {
		return fmt.Errorf("%w: empty time grid", ErrInvalidConfig)
	}
	if pts[0] < 0 {
		return fmt.Errorf("%w: negative time %g", ErrInvalidConfig, pts[0])
	}

	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Points returns the sorted, de-duplicated time grid.
func (r *Run) Points() []float64 {
	var pts []float64
	for _, s := range r.Times {
		pts = append(pts, s.Points()...)
	}
	pts = append(pts, r.TimePoints...)
	sort.Float64s(pts)

	out := pts[:0]
	for _, t := range pts {
		if len(out) == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}

	return out
}

// StepBudget is epsilon spread evenly over the time grid.
func (r *Run) StepBudget() float64 {
	n := len(r.Points())
	if n == 0 {
		return r.Epsilon
	}

	return r.Epsilon / float64(n)
}
