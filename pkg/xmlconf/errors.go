// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cfgbind/cfgbind/pkg/typereg"
)

// Sentinel errors for errors.Is checks against *Error.
var (
	ErrNotFound          = errors.New("type not found")
	ErrAmbiguousMatch    = errors.New("ambiguous partial type name")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrInstantiation     = errors.New("type cannot be instantiated")
	ErrPopulation        = errors.New("population failed")
	ErrSchema            = errors.New("schema violation")
	ErrMalformed         = errors.New("malformed XML document")
	ErrInvalidExpression = errors.New("invalid XPath expression")
)

// ErrorKind classifies hydration and parsing failures.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindAmbiguousMatch
	KindTypeMismatch
	KindInstantiation
	KindPopulation
	KindSchema
	KindMalformed
)

// Error is returned by hydration and parsing operations.
type Error struct {
	Kind ErrorKind
	// Path locates the node being processed, e.g. "/config/shapes/shape[2]".
	Path string
	// TypeName is the declared or resolved type, when known.
	TypeName typereg.TypeName
	// Message overrides the kind's default text.
	Message string
	Cause   error
}

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindAmbiguousMatch:
		return "ambiguous-match"
	case KindTypeMismatch:
		return "type-mismatch"
	case KindInstantiation:
		return "instantiation"
	case KindPopulation:
		return "population"
	case KindSchema:
		return "schema"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindAmbiguousMatch:
		return ErrAmbiguousMatch
	case KindTypeMismatch:
		return ErrTypeMismatch
	case KindInstantiation:
		return ErrInstantiation
	case KindPopulation:
		return ErrPopulation
	case KindSchema:
		return ErrSchema
	case KindMalformed:
		return ErrMalformed
	default:
		return nil
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Message != "" {
		b.WriteString(e.Message)
	} else if s := e.Kind.sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString("xmlconf error")
	}

	var where []string
	if e.Path != "" {
		where = append(where, "node "+e.Path)
	}
	if e.TypeName != "" {
		where = append(where, "type "+string(e.TypeName))
	}
	if len(where) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(where, ", "))
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var xe *Error
	if errors.As(err, &xe) {
		return xe.Kind
	}
	return 0
}
