// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/cmefsp/model"
)

// NewModelsCommand creates the models command.
func NewModelsCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List bundled models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range model.Names() {
				m, deps, err := model.Lookup(name)
				if err != nil {
					return err
				}
				timeVarying := ""
				if len(deps) > 0 {
					timeVarying = " (time-varying)"
				}
				fmt.Fprintf(out, "%-8s species=%s reactions=%d%s\n",
					name, strings.Join(m.Species, ","), len(m.Reactions), timeVarying)
			}
			return nil
		},
	}
}
