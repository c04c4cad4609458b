// SPDX-License-Identifier: MPL-2.0

// Package logging builds the slog logger used by the cfgbind CLI.
//
// Library packages only ever see a *slog.Logger. The CLI backs it with a
// charmbracelet/log logger so records are styled on a terminal and can be
// switched to JSON or logfmt through configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/cfgbind/cfgbind/internal/config"
)

// Prefix is printed in front of every record.
const Prefix = "cfgbind"

// Options controls the logger built by New.
type Options struct {
	Level  config.LogLevel
	Format config.LogFormat
	// Verbose forces the debug level and enables caller reporting.
	Verbose bool
	// Timestamps adds the record time to each line.
	Timestamps bool
}

// FromConfig returns the options described by a loaded configuration.
func FromConfig(cfg config.LogConfig, verbose bool) Options {
	return Options{Level: cfg.Level, Format: cfg.Format, Verbose: verbose}
}

// New creates a charmbracelet/log logger writing to w and wraps it as a
// slog handler. Unknown levels or formats are rejected.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := parseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = log.DebugLevel
	}

	l := log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.Timestamps,
		ReportCaller:    opts.Verbose,
	})
	return slog.New(l), nil
}

// Install builds a logger with New and makes it the slog default.
func Install(w io.Writer, opts Options) (*slog.Logger, error) {
	logger, err := New(w, opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

func parseLevel(l config.LogLevel) (log.Level, error) {
	if l == "" {
		return log.InfoLevel, nil
	}
	if valid, errs := l.IsValid(); !valid {
		return 0, errs[0]
	}
	level, err := log.ParseLevel(string(l))
	if err != nil {
		return 0, fmt.Errorf("log level %q: %w", l, err)
	}
	return level, nil
}

func parseFormat(f config.LogFormat) (log.Formatter, error) {
	switch f {
	case "", config.LogFormatText:
		return log.TextFormatter, nil
	case config.LogFormatJSON:
		return log.JSONFormatter, nil
	case config.LogFormatLogfmt:
		return log.LogfmtFormatter, nil
	default:
		return 0, &config.InvalidLogFormatError{Value: f}
	}
}
