// SPDX-License-Identifier: MPL-2.0

package typereg

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

const (
	// KindConcrete marks a type that can be instantiated.
	KindConcrete Kind = iota
	// KindAbstract marks a type that declares capabilities but cannot be instantiated.
	KindAbstract
	// KindInterface marks a pure capability declaration.
	KindInterface
)

const (
	// PopulateNone leaves the fresh instance as produced by its factory.
	PopulateNone Population = iota
	// PopulateSelf delegates population to the instance itself.
	PopulateSelf
	// PopulateSchema fills the instance from the node's attributes and children
	// by field name.
	PopulateSchema
)

var (
	// ErrNotFound is returned when no type is registered under a name.
	ErrNotFound = errors.New("type not found")
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("type already registered")
	// ErrInvalidName is the sentinel error wrapped by InvalidNameError.
	ErrInvalidName = errors.New("invalid type name")
	// ErrNotInstantiable is returned when New is called on an entry without a
	// factory or whose kind is not concrete.
	ErrNotInstantiable = errors.New("type is not instantiable")
	// ErrFactory is the sentinel error wrapped by FactoryError.
	ErrFactory = errors.New("factory failed")

	namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

type (
	// Kind tells whether a registered type can be instantiated.
	Kind int

	// Population selects how a fresh instance is filled from a document node.
	Population int

	// Capability names a contract a type fulfils, usually the
	// fully-qualified name of an interface-kind entry.
	Capability string

	// TypeName is a fully-qualified, dot-separated type name.
	TypeName string

	// Factory produces a fresh, unpopulated instance.
	Factory func() (any, error)

	// Schema is an optional CUE schema attached to an entry. Definition is the
	// path of the definition inside Source (e.g. "#Circle").
	Schema struct {
		Source     []byte
		Definition string
	}

	// Entry describes a registered type.
	Entry struct {
		// Name is the fully-qualified type name.
		Name TypeName
		// Kind tells whether the type can be instantiated.
		Kind Kind
		// Capabilities lists the capabilities this type provides.
		Capabilities []Capability
		// Population is the strategy used to fill fresh instances.
		Population Population
		// Schema optionally validates nodes before population.
		Schema *Schema
		// Type is the dynamic Go type of the instances, used for reverse lookups.
		Type reflect.Type

		factory Factory
	}

	// InvalidNameError is returned when a TypeName is malformed.
	InvalidNameError struct {
		Value TypeName
	}

	// NotFoundError is returned by Lookup for unregistered names.
	NotFoundError struct {
		Name TypeName
	}

	// FactoryError wraps a failure (error or panic) raised by a factory.
	FactoryError struct {
		Name  TypeName
		Cause error
	}
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConcrete:
		return "concrete"
	case KindAbstract:
		return "abstract"
	case KindInterface:
		return "interface"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String returns the strategy name.
func (p Population) String() string {
	switch p {
	case PopulateNone:
		return "none"
	case PopulateSelf:
		return "self"
	case PopulateSchema:
		return "schema"
	default:
		return fmt.Sprintf("population(%d)", int(p))
	}
}

// String returns the capability as a string.
func (c Capability) String() string { return string(c) }

// String returns the name as a string.
func (n TypeName) String() string { return string(n) }

// Validate returns nil if the name is a well-formed dotted identifier.
func (n TypeName) Validate() error {
	if !namePattern.MatchString(string(n)) {
		return &InvalidNameError{Value: n}
	}
	return nil
}

// SimpleName returns the last dot-separated segment.
func (n TypeName) SimpleName() string {
	s := string(n)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid type name %q (expected dot-separated identifiers)", e.Value)
}

// Unwrap returns ErrInvalidName for errors.Is() compatibility.
func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("type %q not found", e.Name)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Error implements the error interface.
func (e *FactoryError) Error() string {
	return fmt.Sprintf("create %s: %v", e.Name, e.Cause)
}

// Is reports whether target is ErrFactory.
func (e *FactoryError) Is(target error) bool { return target == ErrFactory }

// Unwrap returns the underlying factory failure.
func (e *FactoryError) Unwrap() error { return e.Cause }

// Has reports whether the entry provides capability c.
func (e *Entry) Has(c Capability) bool {
	return slices.Contains(e.Capabilities, c)
}

// Concrete reports whether the entry can be instantiated.
func (e *Entry) Concrete() bool {
	return e.Kind == KindConcrete && e.factory != nil
}

// New invokes the entry factory. Panics raised by the factory are recovered
// and returned as a *FactoryError.
func (e *Entry) New() (obj any, err error) {
	if !e.Concrete() {
		return nil, fmt.Errorf("%s (%s): %w", e.Name, e.Kind, ErrNotInstantiable)
	}

	defer func() {
		if r := recover(); r != nil {
			obj = nil
			err = &FactoryError{Name: e.Name, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	obj, err = e.factory()
	if err != nil {
		return nil, &FactoryError{Name: e.Name, Cause: err}
	}
	if obj == nil {
		return nil, &FactoryError{Name: e.Name, Cause: errors.New("factory returned nil")}
	}
	return obj, nil
}
