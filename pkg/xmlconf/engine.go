// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"context"
	"log/slog"

	"github.com/cfgbind/cfgbind/pkg/typefind"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

const (
	// DefaultMarkerAttribute is the attribute naming a node's type.
	DefaultMarkerAttribute = "class"

	// DefaultMaxDocumentSize bounds documents read by Parse and ParseFile (10MB).
	DefaultMaxDocumentSize int64 = 10 << 20
)

type (
	// TypeFinder resolves a capability and a name predicate to the sorted
	// names of the concrete types providing it. *typefind.Finder and
	// typefind.RegistryFinder implement it.
	TypeFinder interface {
		FindSubTypes(ctx context.Context, capability typereg.Capability, accept typefind.Predicate) []string
	}

	// Engine holds what documents need to hydrate objects: the type
	// registry, the finder used for partial names and a few switches.
	// An Engine is immutable once built and safe for concurrent use.
	Engine struct {
		registry *typereg.Registry
		finder   TypeFinder
		logger   *slog.Logger
		marker   string
		strict   bool
		maxSize  int64
	}

	// EngineOption configures an Engine.
	EngineOption func(*Engine)
)

// WithFinder sets the finder used to resolve partial type names.
func WithFinder(f TypeFinder) EngineOption {
	return func(e *Engine) { e.finder = f }
}

// WithLogger sets the logger for default-mode failures and debug traces.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMarkerAttribute changes the attribute that names a node's type.
func WithMarkerAttribute(name string) EngineOption {
	return func(e *Engine) {
		if name != "" {
			e.marker = name
		}
	}
}

// WithStrictSchema turns schema violations into population failures.
// By default they are logged as warnings.
func WithStrictSchema(strict bool) EngineOption {
	return func(e *Engine) { e.strict = strict }
}

// WithMaxDocumentSize bounds the size of parsed documents.
func WithMaxDocumentSize(n int64) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSize = n
		}
	}
}

// NewEngine creates an engine over reg. A nil registry is replaced by an
// empty one.
func NewEngine(reg *typereg.Registry, opts ...EngineOption) *Engine {
	if reg == nil {
		reg = typereg.New()
	}
	e := &Engine{
		registry: reg,
		marker:   DefaultMarkerAttribute,
		maxSize:  DefaultMaxDocumentSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's type registry.
func (e *Engine) Registry() *typereg.Registry { return e.registry }

// MarkerAttribute returns the attribute that names a node's type.
func (e *Engine) MarkerAttribute() string { return e.marker }

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

var defaultEngine = NewEngine(nil)
