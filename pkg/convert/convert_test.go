// SPDX-License-Identifier: MPL-2.0

package convert

import (
	"errors"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/cfgbind/cfgbind/pkg/typereg"
)

type level string

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		typ   reflect.Type
		want  any
	}{
		{"string", "hello", reflect.TypeFor[string](), "hello"},
		{"named string", "debug", reflect.TypeFor[level](), level("debug")},
		{"bool", " true ", reflect.TypeFor[bool](), true},
		{"int", "42", reflect.TypeFor[int](), 42},
		{"int8", "-7", reflect.TypeFor[int8](), int8(-7)},
		{"uint16", "65535", reflect.TypeFor[uint16](), uint16(65535)},
		{"float64", "2.5", reflect.TypeFor[float64](), 2.5},
		{"duration", "1m30s", reflect.TypeFor[time.Duration](), 90 * time.Second},
		{"text unmarshaler", "10.0.0.1", reflect.TypeFor[netip.Addr](), netip.MustParseAddr("10.0.0.1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Convert(tt.value, tt.typ)
			if err != nil {
				t.Fatalf("Convert(%q) returned error: %v", tt.value, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Convert(%q) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Convert("300", reflect.TypeFor[int8]()); !errors.Is(err, ErrConversion) {
		t.Errorf("overflow error = %v, want ErrConversion", err)
	}
	if _, err := Convert("-1", reflect.TypeFor[uint]()); !errors.Is(err, ErrConversion) {
		t.Errorf("negative uint error = %v, want ErrConversion", err)
	}
	if _, err := Convert("abc", reflect.TypeFor[int]()); !errors.Is(err, ErrConversion) {
		t.Errorf("parse error = %v, want ErrConversion", err)
	}
	if _, err := Convert("x", reflect.TypeFor[struct{}]()); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("struct error = %v, want ErrUnsupportedType", err)
	}
}

func TestTo_Pointer(t *testing.T) {
	t.Parallel()

	p, err := To[*int]("12")
	if err != nil {
		t.Fatalf("To[*int]() returned error: %v", err)
	}
	if p == nil || *p != 12 {
		t.Errorf("To[*int]() = %v, want pointer to 12", p)
	}
}

func TestToOr(t *testing.T) {
	t.Parallel()

	if got := ToOr("", 5); got != 5 {
		t.Errorf("ToOr(\"\") = %d, want 5", got)
	}
	if got := ToOr("nope", 5); got != 5 {
		t.Errorf("ToOr(invalid) = %d, want 5", got)
	}
	if got := ToOr("8", 5); got != 8 {
		t.Errorf("ToOr(\"8\") = %d, want 8", got)
	}
}

func TestToString(t *testing.T) {
	t.Parallel()

	n := 3
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{level("warn"), "warn"},
		{true, "true"},
		{-12, "-12"},
		{uint8(200), "200"},
		{1.25, "1.25"},
		{90 * time.Second, "1m30s"},
		{&n, "3"},
		{netip.MustParseAddr("::1"), "::1"},
		{time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "2024-03-01T12:00:00Z"},
	}
	for _, tt := range tests {
		got, err := ToString(tt.in)
		if err != nil {
			t.Errorf("ToString(%v) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ToString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimeConverter_Layout(t *testing.T) {
	t.Parallel()

	c := TimeConverter{Layout: "2006-01-02"}
	v, err := c.ToType("2024-02-29", reflect.TypeFor[time.Time]())
	if err != nil {
		t.Fatalf("ToType() returned error: %v", err)
	}
	s, err := c.ToString(v)
	if err != nil {
		t.Fatalf("ToString() returned error: %v", err)
	}
	if s != "2024-02-29" {
		t.Errorf("round trip = %q, want 2024-02-29", s)
	}
}

func TestIsConvertible(t *testing.T) {
	t.Parallel()

	if !IsConvertible(reflect.TypeFor[*time.Duration]()) {
		t.Error("*time.Duration should be convertible")
	}
	if IsConvertible(reflect.TypeFor[[]string]()) {
		t.Error("[]string should not be convertible")
	}
	if IsConvertible(nil) {
		t.Error("nil type should not be convertible")
	}
}

func TestRegisterTypes(t *testing.T) {
	t.Parallel()

	reg := typereg.New()
	if err := RegisterTypes(reg); err != nil {
		t.Fatalf("RegisterTypes() returned error: %v", err)
	}

	impls := reg.Implementations(Capability)
	if len(impls) != 8 {
		t.Errorf("expected 8 converter types, got %d", len(impls))
	}
	for _, e := range impls {
		obj, err := e.New()
		if err != nil {
			t.Fatalf("%s.New() returned error: %v", e.Name, err)
		}
		if _, ok := obj.(Converter); !ok {
			t.Errorf("%s produced %T, which is not a Converter", e.Name, obj)
		}
	}

	e, err := reg.Lookup(namePrefix + "TimeConverter")
	if err != nil {
		t.Fatalf("Lookup() returned error: %v", err)
	}
	if e.Population != typereg.PopulateSchema || e.Schema == nil {
		t.Errorf("TimeConverter should be schema-populated with a schema, got %s", e.Population)
	}
}
