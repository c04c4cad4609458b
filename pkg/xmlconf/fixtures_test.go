// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cfgbind/cfgbind/pkg/typefind"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

const shapeCap typereg.Capability = "geo.Shape"

var circleSchema = []byte(`
#Circle: {
	radius: =~"^[0-9]+$"
	color?: "red" | "blue"
}
`)

type (
	Shape interface{ Area() float64 }

	Circle struct {
		Radius int    `cfg:"radius,attr"`
		Color  string `cfg:"color,omitempty"`
	}

	RedCircle  struct{ Radius int `cfg:"radius,attr"` }
	BlueCircle struct{ Radius int `cfg:"radius,attr"` }

	// Square loads and saves itself.
	Square struct{ Side int }

	Canvas struct {
		Title      string        `cfg:"title"`
		Background Shape         `cfg:"background"`
		Shapes     []Shape       `cfg:"shape"`
		Tags       []string      `cfg:"tags"`
		Refresh    time.Duration `cfg:"refresh"`
		Opacity    float64       `cfg:"opacity,omitempty"`
	}

	// Widget is registered but is not a shape.
	Widget struct{}

	counted struct{}

	spyFinder struct {
		mu    sync.Mutex
		calls int
		inner TypeFinder
	}
)

func (c *Circle) Area() float64     { return math.Pi * float64(c.Radius*c.Radius) }
func (c *RedCircle) Area() float64  { return math.Pi * float64(c.Radius*c.Radius) }
func (c *BlueCircle) Area() float64 { return math.Pi * float64(c.Radius*c.Radius) }
func (s *Square) Area() float64     { return float64(s.Side * s.Side) }

func (s *Square) LoadFromXML(x *XML) error {
	s.Side = x.GetInt("@side", s.Side)
	return nil
}

func (s *Square) SaveToXML(x *XML) error {
	return x.SetAttribute("side", s.Side)
}

func (s *spyFinder) FindSubTypes(ctx context.Context, c typereg.Capability, accept typefind.Predicate) []string {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.inner.FindSubTypes(ctx, c, accept)
}

func (s *spyFinder) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	engine   *Engine
	registry *typereg.Registry
	finder   *spyFinder
	created  *atomic.Int32
	logs     *syncBuffer
}

// syncBuffer is a bytes.Buffer safe for the concurrent writes of a logger.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newFixture(t *testing.T, opts ...EngineOption) *fixture {
	t.Helper()

	reg := typereg.New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("registration failed: %v", err)
		}
	}
	created := &atomic.Int32{}

	must(typereg.DeclareInterface[Shape](reg, "geo.Shape"))
	must(typereg.Provide(reg, "geo.Circle", func() *Circle { return &Circle{} },
		typereg.WithCapabilities(shapeCap), typereg.SchemaPopulating(), typereg.WithSchema(circleSchema, "#Circle")))
	must(typereg.Provide(reg, "geo.RedCircle", func() *RedCircle { return &RedCircle{} },
		typereg.WithCapabilities(shapeCap), typereg.SchemaPopulating()))
	must(typereg.Provide(reg, "geo.BlueCircle", func() *BlueCircle { return &BlueCircle{} },
		typereg.WithCapabilities(shapeCap), typereg.SchemaPopulating()))
	must(typereg.Provide(reg, "geo.Square", func() *Square { return &Square{Side: 1} },
		typereg.WithCapabilities(shapeCap), typereg.SelfPopulating()))
	must(typereg.Provide(reg, "geo.Canvas", func() *Canvas { return &Canvas{Title: "untitled"} },
		typereg.SchemaPopulating()))
	must(typereg.Provide(reg, "geo.Widget", func() *Widget { return &Widget{} }))
	must(reg.Declare("geo.AbstractShape", typereg.KindAbstract, shapeCap))
	must(reg.Register("geo.Counted", func() (any, error) {
		created.Add(1)
		return &counted{}, nil
	}))

	logs := &syncBuffer{}
	finder := &spyFinder{inner: typefind.RegistryFinder{Registry: reg}}
	base := []EngineOption{
		WithFinder(finder),
		WithLogger(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	}
	return &fixture{
		engine:   NewEngine(reg, append(base, opts...)...),
		registry: reg,
		finder:   finder,
		created:  created,
		logs:     logs,
	}
}

func (f *fixture) parse(t *testing.T, s string) *XML {
	t.Helper()
	x, err := f.engine.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() returned error: %v", err)
	}
	return x
}

func mustParse(t *testing.T, s string) *XML {
	t.Helper()
	x, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString(%q) returned error: %v", s, err)
	}
	return x
}
