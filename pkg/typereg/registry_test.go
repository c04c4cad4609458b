// SPDX-License-Identifier: MPL-2.0

package typereg

import (
	"errors"
	"reflect"
	"testing"
)

type circle struct{ Radius int }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := New()
	if err := Provide(r, "geo.Circle", func() *circle { return &circle{} }, WithCapabilities("geo.Shape")); err != nil {
		t.Fatalf("Provide() returned error: %v", err)
	}

	e, err := r.Lookup("geo.Circle")
	if err != nil {
		t.Fatalf("Lookup() returned error: %v", err)
	}
	if !e.Has("geo.Shape") {
		t.Error("expected entry to provide geo.Shape")
	}
	if !e.Has("geo.Circle") {
		t.Error("expected entry to provide its own name")
	}
	if e.Kind != KindConcrete {
		t.Errorf("Kind = %s, want concrete", e.Kind)
	}

	obj, err := e.New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if _, ok := obj.(*circle); !ok {
		t.Errorf("New() returned %T, want *circle", obj)
	}

	back, ok := r.LookupValue(obj)
	if !ok || back.Name != "geo.Circle" {
		t.Errorf("LookupValue() = %v, %v; want geo.Circle", back, ok)
	}
}

func TestRegistry_LookupNotFound(t *testing.T) {
	t.Parallel()

	_, err := New().Lookup("geo.Missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Name != "geo.Missing" {
		t.Errorf("expected *NotFoundError naming geo.Missing, got %v", err)
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	t.Parallel()

	r := New()
	if err := r.Declare("geo.Shape", KindInterface); err != nil {
		t.Fatalf("Declare() returned error: %v", err)
	}
	if err := r.Declare("geo.Shape", KindInterface); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second Declare() error = %v, want ErrDuplicate", err)
	}
}

func TestRegistry_InvalidNames(t *testing.T) {
	t.Parallel()

	tests := []TypeName{"", ".geo", "geo.", "geo..Circle", "geo.Circle$Inner", "1geo", "geo circle"}
	for _, name := range tests {
		t.Run(string(name), func(t *testing.T) {
			t.Parallel()
			err := New().Register(name, func() (any, error) { return 1, nil })
			if !errors.Is(err, ErrInvalidName) {
				t.Errorf("Register(%q) error = %v, want ErrInvalidName", name, err)
			}
		})
	}
}

func TestEntry_NewNonConcrete(t *testing.T) {
	t.Parallel()

	r := New()
	if err := r.Declare("geo.AbstractShape", KindAbstract, "geo.Shape"); err != nil {
		t.Fatalf("Declare() returned error: %v", err)
	}
	e, err := r.Lookup("geo.AbstractShape")
	if err != nil {
		t.Fatalf("Lookup() returned error: %v", err)
	}
	if e.Concrete() {
		t.Error("abstract entry reported as concrete")
	}
	if _, err := e.New(); !errors.Is(err, ErrNotInstantiable) {
		t.Errorf("New() error = %v, want ErrNotInstantiable", err)
	}
}

func TestEntry_NewRecoversPanic(t *testing.T) {
	t.Parallel()

	r := New()
	r.MustRegister("geo.Broken", func() (any, error) { panic("boom") })
	e, err := r.Lookup("geo.Broken")
	if err != nil {
		t.Fatalf("Lookup() returned error: %v", err)
	}

	obj, err := e.New()
	if obj != nil {
		t.Errorf("New() returned %v, want nil", obj)
	}
	if !errors.Is(err, ErrFactory) {
		t.Errorf("New() error = %v, want ErrFactory", err)
	}
}

func TestEntry_NewFactoryError(t *testing.T) {
	t.Parallel()

	cause := errors.New("no disk")
	r := New()
	r.MustRegister("geo.Failing", func() (any, error) { return nil, cause })
	e, _ := r.Lookup("geo.Failing")

	if _, err := e.New(); !errors.Is(err, cause) {
		t.Errorf("New() error = %v, want wrapped cause", err)
	}
}

func TestRegistry_Implementations(t *testing.T) {
	t.Parallel()

	r := New()
	r.MustRegister("geo.Shape", nil, Interface())
	r.MustRegister("geo.Circle", func() (any, error) { return &circle{}, nil }, WithCapabilities("geo.Shape"))
	r.MustRegister("geo.Square", func() (any, error) { return &circle{}, nil }, WithCapabilities("geo.Shape"))
	r.MustRegister("geo.Base", nil, Abstract(), WithCapabilities("geo.Shape"))

	impls := r.Implementations("geo.Shape")
	if len(impls) != 2 {
		t.Fatalf("Implementations() returned %d entries, want 2", len(impls))
	}
	if impls[0].Name != "geo.Circle" || impls[1].Name != "geo.Square" {
		t.Errorf("Implementations() = [%s %s], want sorted [geo.Circle geo.Square]", impls[0].Name, impls[1].Name)
	}
	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}
}

func TestTypeName_SimpleName(t *testing.T) {
	t.Parallel()

	tests := map[TypeName]string{
		"geo.shapes.Circle": "Circle",
		"Circle":            "Circle",
	}
	for in, want := range tests {
		if got := in.SimpleName(); got != want {
			t.Errorf("SimpleName(%q) = %q, want %q", in, got, want)
		}
	}
}

type shaper interface{ Area() float64 }

func TestDeclareInterface_LookupType(t *testing.T) {
	t.Parallel()

	r := New()
	if err := DeclareInterface[shaper](r, "geo.Shape"); err != nil {
		t.Fatalf("DeclareInterface() returned error: %v", err)
	}
	e, ok := r.LookupType(reflect.TypeFor[shaper]())
	if !ok || e.Name != "geo.Shape" || e.Kind != KindInterface {
		t.Errorf("LookupType() = %v, %v; want interface geo.Shape", e, ok)
	}
	if _, ok := r.LookupType(nil); ok {
		t.Error("LookupType(nil) should not match")
	}
}
