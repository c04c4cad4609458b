// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cfgbind/cfgbind/pkg/typereg"
)

func TestHydrate_AbsentNodeUsesDefault(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	x := f.parse(t, `<config/>`)

	def := &counted{}
	got, err := GetObject[any](x, "missing", def)
	if err != nil {
		t.Fatalf("GetObject() returned error: %v", err)
	}
	if got != def {
		t.Errorf("GetObject() = %v, want the default instance", got)
	}

	var undefined *XML
	obj, err := undefined.Hydrate("", def, true)
	if err != nil || obj != def {
		t.Errorf("Hydrate() on undefined XML = %v, %v; want default", obj, err)
	}
	if n := f.created.Load(); n != 0 {
		t.Errorf("constructor called %d times, want 0", n)
	}
}

func TestHydrate_MissingMarkerUsesDefault(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	def := &Square{Side: 9}
	got, err := ToObject[Shape](f.parse(t, `<shape side="3"/>`), def)
	if err != nil {
		t.Fatalf("ToObject() returned error: %v", err)
	}
	if got != Shape(def) || def.Side != 9 {
		t.Errorf("ToObject() = %v, want the unpopulated default", got)
	}
}

func TestHydrate_FullNameSkipsFinder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	x := f.parse(t, `<shape class="geo.Circle" radius="4"><color>red</color></shape>`)

	got, err := ToObjectImpl[Shape](x, shapeCap, nil)
	if err != nil {
		t.Fatalf("ToObjectImpl() returned error: %v", err)
	}
	want := &Circle{Radius: 4, Color: "red"}
	if diff := cmp.Diff(Shape(want), got); diff != "" {
		t.Errorf("ToObjectImpl() mismatch (-want +got):\n%s", diff)
	}
	if n := f.finder.Calls(); n != 0 {
		t.Errorf("finder called %d times for a fully qualified name, want 0", n)
	}
}

func TestHydrate_PartialName(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	got, err := ToObjectImpl[Shape](f.parse(t, `<shape class="Square" side="3"/>`), shapeCap, nil)
	if err != nil {
		t.Fatalf("ToObjectImpl() returned error: %v", err)
	}
	sq, ok := got.(*Square)
	if !ok || sq.Side != 3 {
		t.Errorf("ToObjectImpl() = %#v, want *Square{Side: 3}", got)
	}

	got, err = ToObjectImpl[Shape](f.parse(t, `<shape class="RedCircle" radius="2"/>`), shapeCap, nil)
	if err != nil {
		t.Fatalf("ToObjectImpl() returned error: %v", err)
	}
	if rc, ok := got.(*RedCircle); !ok || rc.Radius != 2 {
		t.Errorf("ToObjectImpl() = %#v, want *RedCircle{Radius: 2}", got)
	}
	if n := f.finder.Calls(); n != 2 {
		t.Errorf("finder called %d times, want 2", n)
	}
}

func TestHydrate_PartialNameWithoutCapabilityIsNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := ToObject[Shape](f.parse(t, `<shape class="Square"/>`), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ToObject() error = %v, want ErrNotFound", err)
	}
	if n := f.finder.Calls(); n != 0 {
		t.Errorf("finder called %d times without a capability, want 0", n)
	}
}

func TestHydrate_AmbiguousPartialName(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	x := f.parse(t, `<shape class="Circle"/>`)

	_, err := ToObjectImpl[Shape](x, shapeCap, nil)
	if !errors.Is(err, ErrAmbiguousMatch) {
		t.Fatalf("ToObjectImpl() error = %v, want ErrAmbiguousMatch", err)
	}
	msg := err.Error()
	for _, want := range []string{"3 candidate types implementing geo.Shape", `ending with "Circle"`, "exactly 1 expected"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should contain %q", msg, want)
		}
	}

	def := &Square{Side: 1}
	obj, err := x.Hydrate(shapeCap, def, false)
	if err != nil || obj != def {
		t.Errorf("Hydrate() in default mode = %v, %v; want the default", obj, err)
	}
	if !strings.Contains(f.logs.String(), "level=ERROR") {
		t.Errorf("default mode should log the failure at error level, logs:\n%s", f.logs)
	}
}

func TestHydrate_PartialNameWithoutMatchIsNil(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	def := &Square{}
	obj, err := f.parse(t, `<shape class="Hexagon"/>`).Hydrate(shapeCap, def, true)
	if err != nil {
		t.Fatalf("Hydrate() returned error: %v", err)
	}
	if obj != nil {
		t.Errorf("Hydrate() = %v, want nil", obj)
	}
}

func TestHydrate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		xml        string
		capability typereg.Capability
		want       error
	}{
		{"unknown full name", `<s class="geo.Missing"/>`, "", ErrNotFound},
		{"capability not provided", `<s class="geo.Widget"/>`, shapeCap, ErrTypeMismatch},
		{"abstract type", `<s class="geo.AbstractShape"/>`, shapeCap, ErrInstantiation},
		{"bad field value", `<s class="geo.RedCircle" radius="wide"/>`, shapeCap, ErrPopulation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			x := f.parse(t, tt.xml)

			_, err := x.Hydrate(tt.capability, nil, true)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Hydrate() error = %v, want %v", err, tt.want)
			}
			var xe *Error
			if !errors.As(err, &xe) || xe.Path != "/s" {
				t.Errorf("expected *Error with path /s, got %#v", err)
			}

			def := &Square{}
			obj, err := x.Hydrate(tt.capability, def, false)
			if err != nil || obj != def {
				t.Errorf("Hydrate() in default mode = %v, %v; want default", obj, err)
			}
		})
	}
}

func TestHydrate_TypeAssertion(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := ToObject[*Square](f.parse(t, `<s class="geo.Circle" radius="1"/>`), nil)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("ToObject[*Square]() on a circle error = %v, want ErrTypeMismatch", err)
	}
}

func TestHydrate_SchemaValidation(t *testing.T) {
	t.Parallel()

	bad := `<s class="geo.Circle" radius="4"><color>green</color></s>`

	t.Run("lenient", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		got, err := ToObject[Shape](f.parse(t, bad), nil)
		if err != nil {
			t.Fatalf("ToObject() returned error: %v", err)
		}
		if c, ok := got.(*Circle); !ok || c.Color != "green" {
			t.Errorf("ToObject() = %#v, want populated circle", got)
		}
		if !strings.Contains(f.logs.String(), "does not match schema") {
			t.Errorf("expected a schema warning, logs:\n%s", f.logs)
		}
	})

	t.Run("strict", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, WithStrictSchema(true))
		_, err := ToObject[Shape](f.parse(t, bad), nil)
		if !errors.Is(err, ErrSchema) {
			t.Fatalf("ToObject() error = %v, want ErrSchema", err)
		}
		if !strings.Contains(err.Error(), "color") {
			t.Errorf("error %q should name the offending field", err)
		}
	})

	t.Run("validate", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		violations, err := f.parse(t, bad).Validate("geo.Circle")
		if err != nil || len(violations) == 0 {
			t.Errorf("Validate() = %v, %v; want violations", violations, err)
		}
		violations, err = f.parse(t, `<s radius="4"/>`).Validate("geo.Square")
		if err != nil || violations != nil {
			t.Errorf("Validate() without schema = %v, %v; want none", violations, err)
		}
	})
}

func TestGetObjectList_Asymmetry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	def := []Shape{&Square{Side: 5}}

	t.Run("no match returns default", func(t *testing.T) {
		t.Parallel()
		got, err := GetObjectListImpl(f.parse(t, `<c/>`), shapeCap, "shape", def)
		if err != nil {
			t.Fatalf("GetObjectListImpl() returned error: %v", err)
		}
		if len(got) != 1 || got[0] != def[0] {
			t.Errorf("GetObjectListImpl() = %v, want default list", got)
		}
	})

	t.Run("matches resolving to nil return empty", func(t *testing.T) {
		t.Parallel()
		got, err := GetObjectListImpl(f.parse(t, `<c><shape class="Hexagon"/><shape class="Octagon"/></c>`), shapeCap, "shape", def)
		if err != nil {
			t.Fatalf("GetObjectListImpl() returned error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("GetObjectListImpl() = %#v, want empty non-nil list", got)
		}
	})

	t.Run("mixed", func(t *testing.T) {
		t.Parallel()
		got, err := GetObjectListImpl(f.parse(t, `<c><shape class="Square" side="2"/><shape class="Hexagon"/><shape class="geo.BlueCircle" radius="1"/></c>`), shapeCap, "shape", def)
		if err != nil {
			t.Fatalf("GetObjectListImpl() returned error: %v", err)
		}
		want := []Shape{&Square{Side: 2}, &BlueCircle{Radius: 1}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("GetObjectListImpl() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestGetObjectOr(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	x := f.parse(t, `<c><good class="geo.Square" side="4"/><bad class="geo.Missing"/></c>`)
	def := &Square{Side: 1}

	if got := GetObjectOr[Shape](x, "good", def); got.Area() != 16 {
		t.Errorf("GetObjectOr(good) area = %v, want 16", got.Area())
	}
	if got := GetObjectOr[Shape](x, "bad", def); got != Shape(def) {
		t.Errorf("GetObjectOr(bad) = %v, want default", got)
	}
	if got := GetObjectImplOr[Shape](x, shapeCap, "missing", def); got != Shape(def) {
		t.Errorf("GetObjectImplOr(missing) = %v, want default", got)
	}
}

func TestGetObjectMap(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	x := f.parse(t, `<c>
	  <entry name="small"><shape class="Square" side="1"/></entry>
	  <entry name="big"><shape class="geo.Circle" radius="9"/></entry>
	  <entry name="none"><shape class="Hexagon"/></entry>
	</c>`)

	got, err := GetObjectMap[Shape](x, shapeCap, "entry", "@name", "shape", nil)
	if err != nil {
		t.Fatalf("GetObjectMap() returned error: %v", err)
	}
	want := map[string]Shape{"small": &Square{Side: 1}, "big": &Circle{Radius: 9}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetObjectMap() mismatch (-want +got):\n%s", diff)
	}

	def := map[string]Shape{"d": &Square{}}
	if got, _ := GetObjectMap[Shape](x, shapeCap, "missing", "@name", "shape", def); len(got) != 1 {
		t.Errorf("GetObjectMap(missing) = %v, want default", got)
	}
}

func TestHydrate_NestedObjects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	x := f.parse(t, `<canvas class="geo.Canvas">
	  <title>Sketch</title>
	  <background class="Square" side="10"/>
	  <shape class="geo.Circle" radius="1"/>
	  <shape class="RedCircle" radius="2"/>
	  <tags>a, b</tags>
	  <refresh>1500ms</refresh>
	</canvas>`)

	got, err := ToObject[*Canvas](x, nil)
	if err != nil {
		t.Fatalf("ToObject() returned error: %v", err)
	}
	want := &Canvas{
		Title:      "Sketch",
		Background: &Square{Side: 10},
		Shapes:     []Shape{&Circle{Radius: 1}, &RedCircle{Radius: 2}},
		Tags:       []string{"a", "b"},
		Refresh:    1500 * time.Millisecond,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToObject() mismatch (-want +got):\n%s", diff)
	}
}

func TestPopulate_KeepsAbsentFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := &Canvas{Title: "kept", Opacity: 0.5}
	if err := f.parse(t, `<canvas><refresh>2s</refresh></canvas>`).Populate(c); err != nil {
		t.Fatalf("Populate() returned error: %v", err)
	}
	if c.Title != "kept" || c.Opacity != 0.5 || c.Refresh != 2*time.Second {
		t.Errorf("Populate() = %+v, want absent fields untouched", c)
	}

	sq := &Square{Side: 8}
	if err := f.parse(t, `<s side="3"/>`).Populate(sq); err != nil || sq.Side != 3 {
		t.Errorf("Populate(*Square) = %+v, %v; want Side 3", sq, err)
	}

	before := *c
	err := f.parse(t, `<canvas><title>new</title><refresh>soon</refresh></canvas>`).Populate(c)
	if !errors.Is(err, ErrPopulation) {
		t.Fatalf("Populate() error = %v, want ErrPopulation", err)
	}
	if diff := cmp.Diff(before, *c); diff != "" {
		t.Errorf("failed Populate() modified the target:\n%s", diff)
	}
}

func TestAssertWriteRead(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	objects := []any{
		&Circle{Radius: 3, Color: "blue"},
		&Square{Side: 6},
		&Canvas{
			Title:      "round trip",
			Background: &BlueCircle{Radius: 7},
			Shapes:     []Shape{&Square{Side: 2}, &Circle{Radius: 5}},
			Tags:       []string{"x", "y"},
			Refresh:    90 * time.Second,
			Opacity:    0.25,
		},
	}
	for _, obj := range objects {
		if err := f.engine.AssertWriteRead(obj, "object"); err != nil {
			t.Errorf("AssertWriteRead(%T) failed: %v", obj, err)
		}
	}
}

func TestFromObject(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	x, err := f.engine.FromObject("shape", &Circle{Radius: 3})
	if err != nil {
		t.Fatalf("FromObject() returned error: %v", err)
	}
	if got := x.String(); got != `<shape class="geo.Circle" radius="3"/>` {
		t.Errorf("FromObject() = %q", got)
	}

	scalar, err := f.engine.FromObject("port", 8080)
	if err != nil || scalar.String() != "<port>8080</port>" {
		t.Errorf("FromObject(8080) = %q, %v", scalar.String(), err)
	}
}
