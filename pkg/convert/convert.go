// SPDX-License-Identifier: MPL-2.0

// Package convert turns document text into typed Go values and back.
//
// Conversion is dispatched on the target reflect.Type to one of the
// Converter implementations of this package. Scalar parsing is delegated to
// github.com/spf13/cast.
package convert

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

var (
	// ErrUnsupportedType is returned for target types no converter handles.
	ErrUnsupportedType = errors.New("unsupported conversion type")
	// ErrConversion is the sentinel error wrapped by Error.
	ErrConversion = errors.New("conversion failed")

	durationType        = reflect.TypeFor[time.Duration]()
	timeType            = reflect.TypeFor[time.Time]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

type (
	// Converter converts between text and one family of Go types.
	Converter interface {
		// ToType parses value into a value of type t.
		ToType(value string, t reflect.Type) (any, error)
		// ToString formats v as text.
		ToString(v any) (string, error)
	}

	// Error reports a value that could not be converted.
	Error struct {
		Value string
		Type  reflect.Type
		Cause error
	}
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", e.Value, e.Type, e.Cause)
}

// Is reports whether target is ErrConversion.
func (e *Error) Is(target error) bool { return target == ErrConversion }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// For returns the converter handling t, or nil if t is not convertible.
func For(t reflect.Type) Converter {
	if t == nil {
		return nil
	}
	switch {
	case t == durationType:
		return DurationConverter{}
	case t == timeType:
		return TimeConverter{}
	case reflect.PointerTo(t).Implements(textUnmarshalerType) && t.Kind() != reflect.Pointer:
		return TextConverter{}
	}

	switch t.Kind() {
	case reflect.String:
		return StringConverter{}
	case reflect.Bool:
		return BoolConverter{}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntConverter{}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return UintConverter{}
	case reflect.Float32, reflect.Float64:
		return FloatConverter{}
	case reflect.Pointer:
		if For(t.Elem()) != nil {
			return pointerConverter{}
		}
	}
	return nil
}

// IsConvertible reports whether values of type t can be read from text.
func IsConvertible(t reflect.Type) bool {
	return For(t) != nil
}

// Convert parses value into type t.
func Convert(value string, t reflect.Type) (any, error) {
	c := For(t)
	if c == nil {
		return nil, fmt.Errorf("%s: %w", t, ErrUnsupportedType)
	}
	v, err := c.ToType(value, t)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &Error{Value: value, Type: t, Cause: err}
	}
	return v, nil
}

// To parses value into a T.
func To[T any](value string) (T, error) {
	var zero T
	v, err := Convert(value, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// ToOr parses value into a T, returning def when value is empty or invalid.
func ToOr[T any](value string, def T) T {
	if value == "" {
		return def
	}
	v, err := To[T](value)
	if err != nil {
		return def
	}
	return v
}

// ToString formats v as text. A nil value formats as "".
func ToString(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", nil
		}
		if _, ok := v.(encoding.TextMarshaler); !ok {
			return ToString(rv.Elem().Interface())
		}
	}
	c := For(rv.Type())
	if c == nil {
		return cast.ToStringE(v)
	}
	return c.ToString(v)
}

// setConverted stores a converted value into a fresh value of type t,
// converting named types (type Level string) from their underlying kind.
func setConverted(v any, t reflect.Type) any {
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return v
	}
	return rv.Convert(t).Interface()
}
