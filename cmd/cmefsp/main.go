// SPDX-License-Identifier: MIT

// Command cmefsp runs the adaptive FSP solver. See `cmefsp --help`.
package main

import (
	"fmt"
	"os"

	"github.com/katalvlaran/cmefsp/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
