// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfgbind/cfgbind/internal/config"
)

// newConfigCommand creates the `cfgbind config` command tree.
func newConfigCommand(app *App, opts *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cfgbind configuration",
		Long: `Manage cfgbind configuration.

Configuration is stored in:
  - Linux: ~/.config/cfgbind/config.cue
  - macOS: ~/Library/Application Support/cfgbind/config.cue
  - Windows: %APPDATA%\cfgbind\config.cue

Every key can be overridden with a CFGBIND_* environment variable,
e.g. CFGBIND_STRICT_SCHEMA=false or CFGBIND_LOG_LEVEL=debug.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wrapServiceError(showConfig(cmd.Context(), app, opts))
		},
	})

	var printOnly, force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				fmt.Fprint(app.stdout, config.GenerateCUE(config.DefaultConfig()))
				return nil
			}
			return wrapServiceError(initConfig(app, opts.configPath, force))
		},
	}
	initCmd.Flags().BoolVar(&printOnly, "print", false, "print the default configuration instead of writing it")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, opts *rootOptions) error {
	provider, ok := app.Config.(config.SourceProvider)
	var (
		cfg    *config.Config
		source string
		err    error
	)
	loadOpts := config.LoadOptions{ConfigFilePath: opts.configPath}
	if ok {
		cfg, source, err = provider.LoadWithSource(ctx, loadOpts)
	} else {
		cfg, err = app.Config.Load(ctx, loadOpts)
	}
	if err != nil {
		return err
	}

	keyStyle := TypeStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)
	if source != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	roots := SubtitleStyle.Render("(none; registered types are searched directly)")
	if len(cfg.Roots) > 0 {
		roots = valueStyle.Render(strings.Join(cfg.RootStrings(), ", "))
	}
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("roots"), roots)
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("marker_attribute"), valueStyle.Render(string(cfg.MarkerAttribute)))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("strict_schema"), valueStyle.Render(fmt.Sprint(cfg.StrictSchema)))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("max_document_size"), valueStyle.Render(fmt.Sprint(cfg.MaxDocumentSize)))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("log.level"), valueStyle.Render(string(cfg.Log.Level)))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("log.format"), valueStyle.Render(string(cfg.Log.Format)))
	return nil
}

func initConfig(app *App, path string, force bool) error {
	if path == "" {
		var err error
		if path, err = config.ConfigFilePath(""); err != nil {
			return err
		}
	}
	if err := config.WriteDefaultConfig(path, force); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Configuration written to %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
