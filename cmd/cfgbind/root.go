// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the cfgbind command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "cfgbind",
		Short: "Bind configuration documents to typed objects",
		Long: TitleStyle.Render("cfgbind") + SubtitleStyle.Render(" - Bind configuration documents to typed objects") + `

cfgbind resolves the implementation type named inside a configuration
node, instantiates it and populates it from the node's attributes and
children. Types may be named in full or by a unique suffix, which is
resolved against the loadable roots (directories or .zip archives of
unit files) given with --root or in the configuration file.

` + SubtitleStyle.Render("Examples:") + `
  cfgbind types                               List the built-in types
  cfgbind export ./types                      Write the built-in types as a root
  cfgbind --root ./types scan                 List the units of a root
  cfgbind find cfgbind.convert.Converter      Find the implementations of a capability
  cfgbind hydrate app.xml --path /app/conv    Build the object declared by a node
  cfgbind config show                         Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/cfgbind/config.cue)")
	rootCmd.PersistentFlags().StringArrayVar(&opts.roots, "root", nil, "loadable root to search (repeatable; replaces configured roots)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newScanCommand(app, opts),
		newFindCommand(app, opts),
		newTypesCommand(app, opts),
		newExportCommand(app, opts),
		newHydrateCommand(app, opts),
		newValidateCommand(app, opts),
		newConfigCommand(app, opts),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(app.stderr, svcErr)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(ExitFailure)
}
