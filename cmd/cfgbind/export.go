// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfgbind/cfgbind/internal/issue"
	"github.com/cfgbind/cfgbind/pkg/rootscan"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

func newExportCommand(app *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dest>",
		Short: "Write the concrete registered types as a loadable root",
		Long: `Write one unit file per concrete registered type.

A destination ending in .zip produces an archive root, anything else a
directory root. The result can be passed to --root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), opts)
			if err != nil {
				return wrapServiceError(err)
			}
			units := exportUnits(s.registry.Entries())
			root, err := rootscan.Export(args[0], units)
			if err != nil {
				return wrapServiceError(issue.WrapWithContext(err, "export root", args[0]))
			}
			s.logger.Debug("root exported", "root", root, "units", len(units))
			fmt.Fprintf(app.stdout, "%s %d units written to %s\n",
				SuccessStyle.Render("✓"), len(units), TypeStyle.Render(root))
			return nil
		},
	}
}

// exportUnits describes every concrete entry as a unit.
func exportUnits(entries []*typereg.Entry) []rootscan.Descriptor {
	var units []rootscan.Descriptor
	for _, e := range entries {
		if !e.Concrete() {
			continue
		}
		caps := make([]string, len(e.Capabilities))
		for i, c := range e.Capabilities {
			caps[i] = c.String()
		}
		desc := e.Name.SimpleName()
		if len(caps) > 0 {
			desc += " providing " + strings.Join(caps, ", ")
		}
		units = append(units, rootscan.Descriptor{
			Name:        string(e.Name),
			Format:      rootscan.FormatVersion,
			Description: desc,
		})
	}
	return units
}
