// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfgbind/cfgbind/pkg/rootscan"
	"github.com/cfgbind/cfgbind/pkg/typefind"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

func newFindCommand(app *App, opts *rootOptions) *cobra.Command {
	var suffix string

	cmd := &cobra.Command{
		Use:   "find <capability>",
		Short: "Find the concrete types providing a capability",
		Long: `Find the concrete types providing a capability.

With loadable roots, only types that have a unit in one of the roots are
returned. Without roots every registered implementation is listed.
--suffix keeps only names ending with the given text, the same test used
to resolve partial type names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wrapServiceError(runFind(cmd, app, opts, typereg.Capability(args[0]), suffix))
		},
	}
	cmd.Flags().StringVar(&suffix, "suffix", "", "keep only type names ending with this text")
	return cmd
}

func runFind(cmd *cobra.Command, app *App, opts *rootOptions, capability typereg.Capability, suffix string) error {
	s, err := app.newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}

	var accept typefind.Predicate
	if suffix != "" {
		accept = typefind.HasSuffix(suffix)
	}

	var (
		names []string
		diags []rootscan.Diagnostic
	)
	if s.scanner != nil {
		res := s.scanner.Find(cmd.Context(), capability, typefind.Accept(accept))
		names, diags = res.Names, res.Diagnostics
	} else {
		names = typefind.RegistryFinder{Registry: s.registry}.FindSubTypes(cmd.Context(), capability, accept)
	}

	for _, name := range names {
		fmt.Fprintln(app.stdout, TypeStyle.Render(name))
	}
	printDiagnostics(app.stderr, diags)
	if len(names) == 0 {
		fmt.Fprintln(app.stderr, WarningStyle.Render(fmt.Sprintf("no concrete types provide %s", capability)))
	}
	return nil
}
