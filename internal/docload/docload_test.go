// SPDX-License-Identifier: MPL-2.0

package docload

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cfgbind/cfgbind/internal/issue"
	"github.com/cfgbind/cfgbind/internal/testutil"
	"github.com/cfgbind/cfgbind/pkg/xmlconf"
)

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"service.xml", FormatXML, false},
		{"dir/app.TOML", FormatTOML, false},
		{"cfg.cue", FormatCUE, false},
		{"/abs/doc.json", FormatJSON, false},
		{"doc.yaml", "", true},
		{"Makefile", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("FormatOf(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatOf(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"service.xml": `<service class="web.Server"><port>8080</port><tags>a, b</tags></service>`,
		"service.toml": `[service]
"@class" = "web.Server"
port = 8080
tags = ["a", "b"]
`,
		"service.json": `{"service": {"@class": "web.Server", "port": 8080, "tags": ["a", "b"], "proxy": null}}`,
		"service.cue": `service: {
	"@class": "web.Server"
	port:     8080
	tags: ["a", "b"]
}
`,
	})
	e := xmlconf.NewEngine(nil)

	for _, name := range []string{"service.xml", "service.toml", "service.json", "service.cue"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			x, err := Load(e, filepath.Join(dir, name), 0)
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			if x.Name() != "service" {
				t.Errorf("Name() = %q, want service", x.Name())
			}
			if got := x.GetString("@class"); got != "web.Server" {
				t.Errorf("GetString(@class) = %q", got)
			}
			if got := x.GetInt("port", 0); got != 8080 {
				t.Errorf("GetInt(port) = %d, want 8080", got)
			}
			if diff := cmp.Diff([]string{"a", "b"}, x.GetDelimitedStringList("tags")); diff != "" {
				t.Errorf("tags mismatch (-want +got):\n%s", diff)
			}
		})
	}

	x, err := Load(e, filepath.Join(dir, "service.json"), 0)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if _, p := x.Lookup("proxy"); p != xmlconf.Null {
		t.Errorf("JSON null should load as a null element, presence %d", p)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	big := filepath.Join(dir, "big.xml")
	testutil.MustWriteFile(t, big, `<a>0123456789</a>`)
	bad := filepath.Join(dir, "bad.toml")
	testutil.MustWriteFile(t, bad, "[unterminated")
	e := xmlconf.NewEngine(nil)

	if _, err := Load(e, big, 8); err == nil {
		t.Error("Load() should enforce the size limit")
	}
	if _, err := Load(e, bad, 0); !errors.Is(err, xmlconf.ErrMalformed) {
		t.Errorf("Load(bad.toml) error = %v, want ErrMalformed", err)
	}
	if _, err := Load(e, filepath.Join(dir, "doc.ini"), 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.ini) error = %v, want ErrUnsupportedFormat", err)
	}

	_, err := Load(e, filepath.Join(dir, "missing.xml"), 0)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Resource != filepath.Join(dir, "missing.xml") {
		t.Fatalf("Load(missing) error = %v, want an actionable error naming the file", err)
	}
	if ae.Issue != issue.DocumentNotFoundId {
		t.Errorf("Load(missing) issue = %d, want DocumentNotFoundId", ae.Issue)
	}
}

func TestFromValue_Roots(t *testing.T) {
	t.Parallel()

	e := xmlconf.NewEngine(nil)
	tests := []struct {
		name string
		doc  any
		want string
	}{
		{"single table", map[string]any{"db": map[string]any{"host": "h"}}, `<db><host>h</host></db>`},
		{"several keys", map[string]any{"title": "t", "db": map[string]any{"host": "h"}}, `<config><db><host>h</host></db><title>t</title></config>`},
		{"single scalar", map[string]any{"title": "t"}, `<config><title>t</title></config>`},
		{"list", []any{int64(1), "two"}, `<config><item>1</item><item>two</item></config>`},
		{"scalar", 3.5, `<config>3.5</config>`},
		{"nil", nil, `<config/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			x, err := FromValue(e, tt.doc)
			if err != nil {
				t.Fatalf("FromValue() returned error: %v", err)
			}
			if got := x.String(); got != tt.want {
				t.Errorf("FromValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	e := xmlconf.NewEngine(nil)
	src := `<service port="1"><name>api</name><tags>a</tags><tags>b</tags></service>`
	x, err := e.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() returned error: %v", err)
	}

	for _, format := range Formats() {
		if format == FormatCUE {
			continue
		}
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			data, err := Encode(x, format)
			if err != nil {
				t.Fatalf("Encode() returned error: %v", err)
			}
			back, err := Decode(e, data, format, "encoded")
			if err != nil {
				t.Fatalf("Decode() returned error: %v\n%s", err, data)
			}
			if got := back.String(); got != src {
				t.Errorf("round trip gave %q, want %q\n%s", got, src, data)
			}
		})
	}

	if _, err := Encode(x, FormatCUE); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode(cue) error = %v, want ErrUnsupportedFormat", err)
	}
	var undefined *xmlconf.XML
	if _, err := Encode(undefined, FormatXML); !errors.Is(err, xmlconf.ErrUndefined) {
		t.Errorf("Encode(undefined) error = %v, want ErrUndefined", err)
	}
}
