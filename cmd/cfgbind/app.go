// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cfgbind/cfgbind/internal/config"
	"github.com/cfgbind/cfgbind/internal/logging"
	"github.com/cfgbind/cfgbind/pkg/convert"
	"github.com/cfgbind/cfgbind/pkg/typefind"
	"github.com/cfgbind/cfgbind/pkg/typereg"
	"github.com/cfgbind/cfgbind/pkg/xmlconf"
)

type (
	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference.
	App struct {
		Config        ConfigProvider
		RegisterTypes TypeRegistrar
		stdout        io.Writer
		stderr        io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config        ConfigProvider
		RegisterTypes TypeRegistrar
		Stdout        io.Writer
		Stderr        io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// TypeRegistrar fills a fresh registry with the types the CLI can hydrate.
	TypeRegistrar func(reg *typereg.Registry) error

	// rootOptions holds the global flag values.
	rootOptions struct {
		configPath string
		roots      []string
		verbose    bool
	}

	// session is everything a command needs once configuration is loaded.
	session struct {
		cfg      *config.Config
		logger   *slog.Logger
		registry *typereg.Registry
		roots    []string
		// scanner is nil when no roots are configured.
		scanner *typefind.Finder
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.RegisterTypes == nil {
		deps.RegisterTypes = convert.RegisterTypes
	}
	return &App{
		Config:        deps.Config,
		RegisterTypes: deps.RegisterTypes,
		stdout:        deps.Stdout,
		stderr:        deps.Stderr,
	}
}

// newSession loads configuration, installs the logger and builds the type
// registry. Roots given with --root replace the configured ones.
func (a *App) newSession(ctx context.Context, opts *rootOptions) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: opts.configPath})
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(a.stderr, logging.FromConfig(cfg.Log, opts.verbose))
	if err != nil {
		return nil, err
	}

	reg := typereg.New()
	if err := a.RegisterTypes(reg); err != nil {
		return nil, fmt.Errorf("register built-in types: %w", err)
	}

	s := &session{cfg: cfg, logger: logger, registry: reg, roots: cfg.RootStrings()}
	if len(opts.roots) > 0 {
		s.roots = opts.roots
	}
	if len(s.roots) > 0 {
		s.scanner = typefind.New(reg, s.roots, typefind.WithLogger(logger))
	}
	return s, nil
}

// finder returns the finder used for partial names: the root scanner when
// roots are configured, the registry alone otherwise.
func (s *session) finder() xmlconf.TypeFinder {
	if s.scanner != nil {
		return s.scanner
	}
	return typefind.RegistryFinder{Registry: s.registry}
}

// engine builds a hydration engine from the session configuration.
// lenient downgrades schema violations to warnings.
func (s *session) engine(lenient bool) *xmlconf.Engine {
	return xmlconf.NewEngine(s.registry,
		xmlconf.WithFinder(s.finder()),
		xmlconf.WithLogger(s.logger),
		xmlconf.WithMarkerAttribute(string(s.cfg.MarkerAttribute)),
		xmlconf.WithStrictSchema(s.cfg.StrictSchema && !lenient),
		xmlconf.WithMaxDocumentSize(s.cfg.MaxDocumentSize),
	)
}
