// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/cfgbind/cfgbind/pkg/typereg"
)

func newTypesCommand(app *App, opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the registered types",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), opts)
			if err != nil {
				return wrapServiceError(err)
			}
			md := typesMarkdown(s.registry.Entries())
			if plain {
				fmt.Fprint(app.stdout, md)
				return nil
			}
			rendered, err := glamour.Render(md, "dark")
			if err != nil {
				return fmt.Errorf("render type table: %w", err)
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	return cmd
}

// typesMarkdown renders the registry as a markdown table.
func typesMarkdown(entries []*typereg.Entry) string {
	var b strings.Builder
	b.WriteString("# Registered types\n\n")
	b.WriteString("| Type | Kind | Capabilities | Population | Schema |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, e := range entries {
		caps := make([]string, len(e.Capabilities))
		for i, c := range e.Capabilities {
			caps[i] = c.String()
		}
		schema := ""
		if e.Schema != nil {
			schema = e.Schema.Definition
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n",
			e.Name, e.Kind, strings.Join(caps, ", "), e.Population, schema)
	}
	fmt.Fprintf(&b, "\n%d types registered.\n", len(entries))
	return b.String()
}
