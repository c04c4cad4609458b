// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cfgbind/cfgbind/internal/issue"
	"github.com/cfgbind/cfgbind/pkg/rootscan"
)

// errNoRoots is returned by commands that need at least one loadable root.
var errNoRoots = errors.New("no loadable roots configured")

func newScanCommand(app *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [root]...",
		Short: "List the units found in loadable roots",
		Long: `List the candidate type names found in loadable roots.

Roots are directories or .zip archives of unit files. Without arguments
the roots from --root or the configuration file are scanned. Unreadable
roots are reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wrapServiceError(runScan(cmd, app, opts, args))
		},
	}
}

func runScan(cmd *cobra.Command, app *App, opts *rootOptions, args []string) error {
	s, err := app.newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	roots := args
	if len(roots) == 0 {
		roots = s.roots
	}
	if len(roots) == 0 {
		return noRootsError()
	}

	var diags []rootscan.Diagnostic
	report := rootscan.Collect(&diags)
	for _, root := range roots {
		kind, _ := rootscan.Classify(root)
		fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render(root), SubtitleStyle.Render("("+kind.String()+")"))

		count := 0
		for c := range rootscan.Scan(root, report) {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			count++
			line := "  " + TypeStyle.Render(c.Name)
			if d, err := rootscan.ReadCandidate(c); err != nil {
				line += " " + WarningStyle.Render("("+err.Error()+")")
			} else if d.Description != "" {
				line += " " + SubtitleStyle.Render(d.Description)
			}
			if opts.verbose {
				line += " " + SubtitleStyle.Render("["+c.Entry+"]")
			}
			fmt.Fprintln(app.stdout, line)
		}
		if count == 0 {
			fmt.Fprintln(app.stdout, "  "+SubtitleStyle.Render("(no units)"))
		}
	}
	printDiagnostics(app.stderr, diags)
	return nil
}

// printDiagnostics writes one styled line per diagnostic.
func printDiagnostics(w io.Writer, diags []rootscan.Diagnostic) {
	for _, d := range diags {
		style := WarningStyle
		if d.Severity == rootscan.SeverityError {
			style = ErrorStyle
		}
		fmt.Fprintln(w, style.Render(d.String()))
	}
}

func noRootsError() error {
	return issue.NewErrorContext().
		WithOperation("scan loadable roots").
		WithSuggestions(
			"Pass one or more roots as arguments or with --root",
			"Set 'roots' in the configuration file or CFGBIND_ROOTS",
			"Run 'cfgbind export <dir>' to write the built-in types as a root",
		).
		WithIssue(issue.RootUnreadableId).
		Wrap(errNoRoots).
		BuildError()
}
