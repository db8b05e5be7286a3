// SPDX-License-Identifier: MIT

package model

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/cmefsp/state"
)

// File is the YAML form of a mass-action model.
type File struct {
	// Name labels the model in logs and recordings.
	Name string `yaml:"name"`

	// Species lists species names; their order fixes state component order.
	Species []string `yaml:"species"`

	// InitialState gives starting counts by species; omitted species start at 0.
	InitialState map[string]int `yaml:"initial_state"`

	// Reactions lists the reaction channels in order.
	Reactions []ReactionFile `yaml:"reactions"`
}

// ReactionFile is the YAML form of one mass-action reaction.
type ReactionFile struct {
	Name      string         `yaml:"name"`
	Reactants map[string]int `yaml:"reactants,omitempty"`
	Products  map[string]int `yaml:"products,omitempty"`
	Rate      float64        `yaml:"rate"`
}

// LoadFile reads a YAML model from path.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	return LoadYAML(bytes.NewReader(data))
}

// LoadYAML decodes and validates a YAML model. Unknown fields are rejected
// so typos surface early.
func LoadYAML(r io.Reader) (*Model, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse model YAML: %w", err)
	}

	return f.Build()
}

// Build turns the decoded file into a validated Model. Species names are
// normalized to Unicode NFC so that visually identical names match.
func (f *File) Build() (*Model, error) {
	index := make(map[string]int, len(f.Species))
	species := make([]string, len(f.Species))
	for i, name := range f.Species {
		n := norm.NFC.String(name)
		if n == "" {
			return nil, fmt.Errorf("%w: species %d has no name", ErrInvalidModel, i)
		}
		if _, dup := index[n]; dup {
			return nil, fmt.Errorf("%w: duplicate species %q", ErrInvalidModel, n)
		}
		index[n] = i
		species[i] = n
	}

	vector := func(counts map[string]int, what string) ([]int, error) {
		v := make([]int, len(species))
		for name, c := range counts {
			i, ok := index[norm.NFC.String(name)]
			if !ok {
				return nil, fmt.Errorf("%w: %q in %s", ErrUnknownSpecies, name, what)
			}
			if c < 0 {
				return nil, fmt.Errorf("%w: negative count for %q in %s", ErrInvalidModel, name, what)
			}
			v[i] = c
		}
		return v, nil
	}

	init, err := vector(f.InitialState, "initial_state")
	if err != nil {
		return nil, err
	}

	reactions := make([]Reaction, 0, len(f.Reactions))
	for _, rf := range f.Reactions {
		if !validRate(rf.Rate) {
			return nil, fmt.Errorf("%w: reaction %q rate %v", ErrInvalidRate, rf.Name, rf.Rate)
		}
		in, err := vector(rf.Reactants, "reaction "+rf.Name)
		if err != nil {
			return nil, err
		}
		out, err := vector(rf.Products, "reaction "+rf.Name)
		if err != nil {
			return nil, err
		}
		delta := make([]int, len(species))
		for i := range delta {
			delta[i] = out[i] - in[i]
		}
		reactions = append(reactions, Reaction{
			Name:       rf.Name,
			Delta:      delta,
			Propensity: MassAction(rf.Rate, in),
		})
	}

	m := &Model{
		Name:         f.Name,
		Species:      species,
		Reactions:    reactions,
		InitialState: state.State(init),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}
