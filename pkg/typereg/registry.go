// SPDX-License-Identifier: MPL-2.0

package typereg

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

type (
	// Registry maps fully-qualified type names to entries.
	// It is safe for concurrent use.
	Registry struct {
		mu     sync.RWMutex
		byName map[TypeName]*Entry
		byType map[reflect.Type]*Entry
	}

	// Option configures an entry at registration time.
	Option func(*Entry)
)

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[TypeName]*Entry),
		byType: make(map[reflect.Type]*Entry),
	}
}

// WithCapabilities adds capabilities to the entry.
func WithCapabilities(caps ...Capability) Option {
	return func(e *Entry) {
		e.Capabilities = append(e.Capabilities, caps...)
	}
}

// Abstract marks the entry as a non-instantiable abstract type.
func Abstract() Option {
	return func(e *Entry) { e.Kind = KindAbstract }
}

// Interface marks the entry as a pure capability declaration.
func Interface() Option {
	return func(e *Entry) { e.Kind = KindInterface }
}

// SelfPopulating selects PopulateSelf for the entry.
func SelfPopulating() Option {
	return func(e *Entry) { e.Population = PopulateSelf }
}

// SchemaPopulating selects PopulateSchema for the entry.
func SchemaPopulating() Option {
	return func(e *Entry) { e.Population = PopulateSchema }
}

// WithSchema attaches a CUE schema used to validate nodes before population.
func WithSchema(source []byte, definition string) Option {
	return func(e *Entry) {
		e.Schema = &Schema{Source: source, Definition: definition}
	}
}

// Register adds a type under name. The factory may be nil for abstract and
// interface entries. A type always provides the capability named after itself.
func (r *Registry) Register(name TypeName, factory Factory, opts ...Option) error {
	if err := name.Validate(); err != nil {
		return err
	}

	e := &Entry{Name: name, factory: factory}
	for _, opt := range opts {
		opt(e)
	}
	if e.Kind == KindConcrete && factory == nil {
		return fmt.Errorf("register %s: concrete type without factory: %w", name, ErrNotInstantiable)
	}
	if !e.Has(Capability(name)) {
		e.Capabilities = append(e.Capabilities, Capability(name))
	}
	slices.Sort(e.Capabilities)
	e.Capabilities = slices.Compact(e.Capabilities)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("register %s: %w", name, ErrDuplicate)
	}
	r.byName[name] = e
	if e.Type != nil {
		if _, taken := r.byType[e.Type]; !taken {
			r.byType[e.Type] = e
		}
	}
	return nil
}

// Provide registers a concrete type produced by ctor. The Go type of T is
// recorded for reverse lookups.
func Provide[T any](r *Registry, name TypeName, ctor func() T, opts ...Option) error {
	if ctor == nil {
		return fmt.Errorf("register %s: nil constructor: %w", name, ErrNotInstantiable)
	}
	opts = append(opts, func(e *Entry) { e.Type = reflect.TypeFor[T]() })
	return r.Register(name, func() (any, error) { return ctor(), nil }, opts...)
}

// Declare registers a non-instantiable abstract or interface entry.
func (r *Registry) Declare(name TypeName, kind Kind, caps ...Capability) error {
	if kind == KindConcrete {
		return fmt.Errorf("declare %s: %w", name, ErrNotInstantiable)
	}
	return r.Register(name, nil, WithCapabilities(caps...), func(e *Entry) { e.Kind = kind })
}

// DeclareInterface registers an interface entry bound to the Go interface
// type T, so fields of type T can be resolved back to the capability.
func DeclareInterface[T any](r *Registry, name TypeName, caps ...Capability) error {
	return r.Register(name, nil, Interface(), WithCapabilities(caps...), func(e *Entry) {
		e.Type = reflect.TypeFor[T]()
	})
}

// MustRegister is like Register but panics on error. Intended for
// registration code that runs at startup.
func (r *Registry) MustRegister(name TypeName, factory Factory, opts ...Option) {
	if err := r.Register(name, factory, opts...); err != nil {
		panic(err)
	}
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name TypeName) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byName[TypeName(strings.TrimSpace(string(name)))]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return e, nil
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name TypeName) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// LookupValue returns the entry whose recorded Go type matches the dynamic
// type of v.
func (r *Registry) LookupValue(v any) (*Entry, bool) {
	if v == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byType[reflect.TypeOf(v)]
	return e, ok
}

// LookupType returns the entry recorded for the Go type t.
func (r *Registry) LookupType(t reflect.Type) (*Entry, bool) {
	if t == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byType[t]
	return e, ok
}

// Entries returns all entries sorted by name.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, len(r.byName))
	for _, e := range r.byName {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b *Entry) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})
	return entries
}

// Implementations returns the concrete entries providing capability c,
// sorted by name.
func (r *Registry) Implementations(c Capability) []*Entry {
	var out []*Entry
	for _, e := range r.Entries() {
		if e.Concrete() && e.Has(c) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
