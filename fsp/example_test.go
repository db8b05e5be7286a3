// SPDX-License-Identifier: MIT

package fsp_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/cmefsp/fsp"
	"github.com/katalvlaran/cmefsp/model"
)

// ExampleSolver_Step solves the pure birth process up to t=1.
func ExampleSolver_Step() {
	s, err := fsp.FromModel(model.Birth(1), nil, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err = s.Step(context.Background(), 1, 1e-3); err != nil {
		fmt.Println(err)
		return
	}
	p, sink := s.Y()
	fmt.Printf("P(0)=%.3f P(1)=%.3f sink<=1e-3: %v\n", p[0], p[1], sink <= 1e-3)
	// Output: P(0)=0.368 P(1)=0.368 sink<=1e-3: true
}
