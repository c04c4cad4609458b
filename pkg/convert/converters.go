// SPDX-License-Identifier: MPL-2.0

package convert

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

type (
	// StringConverter handles string kinds.
	StringConverter struct{}
	// BoolConverter handles bool kinds.
	BoolConverter struct{}
	// IntConverter handles signed integer kinds.
	IntConverter struct{}
	// UintConverter handles unsigned integer kinds.
	UintConverter struct{}
	// FloatConverter handles floating point kinds.
	FloatConverter struct{}
	// DurationConverter handles time.Duration ("1m30s", or plain nanoseconds).
	DurationConverter struct{}
	// TimeConverter handles time.Time. With an empty Layout the common
	// layouts known to cast are tried; formatting then uses RFC 3339.
	TimeConverter struct {
		Layout string `cfg:"layout"`
	}
	// TextConverter handles types implementing encoding.TextUnmarshaler.
	TextConverter struct{}

	pointerConverter struct{}
)

// ToType implements Converter.
func (StringConverter) ToType(value string, t reflect.Type) (any, error) {
	return setConverted(value, t), nil
}

// ToString implements Converter.
func (StringConverter) ToString(v any) (string, error) {
	return reflect.ValueOf(v).String(), nil
}

// ToType implements Converter.
func (BoolConverter) ToType(value string, t reflect.Type) (any, error) {
	b, err := cast.ToBoolE(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	return setConverted(b, t), nil
}

// ToString implements Converter.
func (BoolConverter) ToString(v any) (string, error) {
	return strconv.FormatBool(reflect.ValueOf(v).Bool()), nil
}

// ToType implements Converter.
func (IntConverter) ToType(value string, t reflect.Type) (any, error) {
	n, err := cast.ToInt64E(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	out := reflect.New(t).Elem()
	if out.OverflowInt(n) {
		return nil, fmt.Errorf("value %d overflows %s", n, t)
	}
	out.SetInt(n)
	return out.Interface(), nil
}

// ToString implements Converter.
func (IntConverter) ToString(v any) (string, error) {
	return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
}

// ToType implements Converter.
func (UintConverter) ToType(value string, t reflect.Type) (any, error) {
	s := strings.TrimSpace(value)
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative value for %s", t)
	}
	n, err := cast.ToUint64E(s)
	if err != nil {
		return nil, err
	}
	out := reflect.New(t).Elem()
	if out.OverflowUint(n) {
		return nil, fmt.Errorf("value %d overflows %s", n, t)
	}
	out.SetUint(n)
	return out.Interface(), nil
}

// ToString implements Converter.
func (UintConverter) ToString(v any) (string, error) {
	return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
}

// ToType implements Converter.
func (FloatConverter) ToType(value string, t reflect.Type) (any, error) {
	f, err := cast.ToFloat64E(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	out := reflect.New(t).Elem()
	if !math.IsInf(f, 0) && out.OverflowFloat(f) {
		return nil, fmt.Errorf("value %g overflows %s", f, t)
	}
	out.SetFloat(f)
	return out.Interface(), nil
}

// ToString implements Converter.
func (FloatConverter) ToString(v any) (string, error) {
	rv := reflect.ValueOf(v)
	bits := 64
	if rv.Kind() == reflect.Float32 {
		bits = 32
	}
	return strconv.FormatFloat(rv.Float(), 'g', -1, bits), nil
}

// ToType implements Converter.
func (DurationConverter) ToType(value string, t reflect.Type) (any, error) {
	d, err := cast.ToDurationE(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	return setConverted(d, t), nil
}

// ToString implements Converter.
func (DurationConverter) ToString(v any) (string, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return "", fmt.Errorf("%T is not a duration", v)
	}
	return d.String(), nil
}

// ToType implements Converter.
func (c TimeConverter) ToType(value string, _ reflect.Type) (any, error) {
	s := strings.TrimSpace(value)
	if c.Layout == "" {
		return cast.ToTimeE(s)
	}
	return time.Parse(c.Layout, s)
}

// ToString implements Converter.
func (c TimeConverter) ToString(v any) (string, error) {
	tm, ok := v.(time.Time)
	if !ok {
		return "", fmt.Errorf("%T is not a time", v)
	}
	layout := c.Layout
	if layout == "" {
		layout = time.RFC3339Nano
	}
	return tm.Format(layout), nil
}

// ToType implements Converter.
func (TextConverter) ToType(value string, t reflect.Type) (any, error) {
	ptr := reflect.New(t)
	u, ok := ptr.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return nil, fmt.Errorf("%s: %w", t, ErrUnsupportedType)
	}
	if err := u.UnmarshalText([]byte(value)); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// ToString implements Converter.
func (TextConverter) ToString(v any) (string, error) {
	if m, ok := v.(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		return string(b), err
	}
	// value receivers only expose MarshalText through a pointer
	ptr := reflect.New(reflect.TypeOf(v))
	ptr.Elem().Set(reflect.ValueOf(v))
	if m, ok := ptr.Interface().(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		return string(b), err
	}
	return cast.ToStringE(v)
}

func (pointerConverter) ToType(value string, t reflect.Type) (any, error) {
	v, err := Convert(value, t.Elem())
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(t.Elem())
	ptr.Elem().Set(reflect.ValueOf(v))
	return ptr.Interface(), nil
}

func (pointerConverter) ToString(v any) (string, error) {
	rv := reflect.ValueOf(v)
	if rv.IsNil() {
		return "", nil
	}
	return ToString(rv.Elem().Interface())
}
