// SPDX-License-Identifier: MPL-2.0

package rootscan

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/cfgbind/cfgbind/internal/testutil"
)

func collectNames(root string, diags *[]Diagnostic) []string {
	var names []string
	for c := range Scan(root, Collect(diags)) {
		names = append(names, c.Name)
	}
	slices.Sort(names)
	return names
}

func TestCandidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel    string
		want   string
		wantOK bool
	}{
		{"com/example/Circle.unit", "com.example.Circle", true},
		{`com\example\Circle.unit`, "com.example.Circle", true},
		{"/Circle.unit", "Circle", true},
		{"./geo/Square.unit", "geo.Square", true},
		{"com/example/Circle$Inner.unit", "", false},
		{"module-info.unit", "", false},
		{"com/example/module-info.unit", "", false},
		{"com/example/Circle.txt", "", false},
		{"com/example/Circle.unit.bak", "", false},
		{".unit", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			got, ok := CandidateName(tt.rel)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CandidateName(%q) = (%q, %v), want (%q, %v)", tt.rel, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestScan_Directory(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"geo/Circle.unit":       testutil.UnitBody,
		"geo/Square.unit":       "",
		"geo/Circle$Edge.unit":  testutil.UnitBody,
		"module-info.unit":      testutil.UnitBody,
		"geo/notes.txt":         "ignored",
		"geo/deep/Polygon.unit": testutil.UnitBody,
	})

	var diags []Diagnostic
	got := collectNames(dir, &diags)
	want := []string{"geo.Circle", "geo.Square", "geo.deep.Polygon"}
	if !slices.Equal(got, want) {
		t.Errorf("Scan() names = %v, want %v", got, want)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func TestScan_Archive(t *testing.T) {
	t.Parallel()

	archive := testutil.WriteArchiveRoot(t, filepath.Join(t.TempDir(), "shapes.zip"), map[string]string{
		"geo/":                 "",
		"geo/Circle.unit":      testutil.UnitBody,
		"geo/Circle$Edge.unit": testutil.UnitBody,
		"module-info.unit":     testutil.UnitBody,
		"META/readme.md":       "ignored",
	})

	var diags []Diagnostic
	var bodies int
	var names []string
	for c := range Scan(archive, Collect(&diags)) {
		names = append(names, c.Name)
		d, err := ReadCandidate(c)
		if err != nil {
			t.Fatalf("ReadCandidate(%s) returned error: %v", c.Name, err)
		}
		if d.Format == FormatVersion {
			bodies++
		}
	}
	if !slices.Equal(names, []string{"geo.Circle"}) {
		t.Errorf("Scan() names = %v, want [geo.Circle]", names)
	}
	if bodies != 1 {
		t.Errorf("expected 1 readable descriptor, got %d", bodies)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func TestScan_InvalidRoots(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	plain := filepath.Join(tmp, "plain.txt")
	testutil.MustWriteFile(t, plain, "not a root")
	corrupt := filepath.Join(tmp, "corrupt.zip")
	testutil.MustWriteFile(t, corrupt, "not a zip")

	tests := []struct {
		name string
		root string
		code DiagnosticCode
	}{
		{"missing", filepath.Join(tmp, "missing"), CodeRootNotFound},
		{"empty", "", CodeRootNotFound},
		{"plain file", plain, CodeRootUnsupported},
		{"corrupt archive", corrupt, CodeRootUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var diags []Diagnostic
			names := collectNames(tt.root, &diags)
			if len(names) != 0 {
				t.Errorf("expected empty sequence, got %v", names)
			}
			if len(diags) != 1 || diags[0].Code != tt.code {
				t.Errorf("diagnostics = %v, want one %s", diags, tt.code)
			}
		})
	}
}

func TestScan_UnreadableSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission checks are not enforced")
	}
	t.Parallel()

	dir := testutil.WriteUnitRoot(t, t.TempDir(), "geo.Circle", "locked.Hidden")
	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("Chmod() returned error: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var diags []Diagnostic
	got := collectNames(dir, &diags)
	if !slices.Equal(got, []string{"geo.Circle"}) {
		t.Errorf("Scan() names = %v, want [geo.Circle]", got)
	}
	if len(diags) != 1 || diags[0].Code != CodeDirectorySkipped {
		t.Errorf("diagnostics = %v, want one %s", diags, CodeDirectorySkipped)
	}
}

func TestScan_IsRegeneratedPerCall(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteUnitRoot(t, t.TempDir(), "geo.Circle")
	seq := Scan(dir, nil)

	first := 0
	for range seq {
		first++
	}
	testutil.WriteUnitRoot(t, dir, "geo.Square")
	second := 0
	for range seq {
		second++
	}
	if first != 1 || second != 2 {
		t.Errorf("iterations saw %d then %d candidates, want 1 then 2", first, second)
	}
}

func TestScan_EarlyBreak(t *testing.T) {
	t.Parallel()

	archive := testutil.WriteArchiveRoot(t, filepath.Join(t.TempDir(), "many.zip"), map[string]string{
		"a/One.unit":   testutil.UnitBody,
		"a/Two.unit":   testutil.UnitBody,
		"a/Three.unit": testutil.UnitBody,
	})

	seen := 0
	for range Scan(archive, nil) {
		seen++
		break
	}
	if seen != 1 {
		t.Errorf("expected to stop after 1 candidate, saw %d", seen)
	}
	// the archive handle is released, so the file can be removed
	if err := os.Remove(archive); err != nil {
		t.Errorf("Remove() returned error: %v", err)
	}
}

func TestReadDescriptor(t *testing.T) {
	t.Parallel()

	d, err := ReadDescriptor(strings.NewReader("format = 1\ndescription = \"a circle\"\n"))
	if err != nil {
		t.Fatalf("ReadDescriptor() returned error: %v", err)
	}
	if d.Description != "a circle" {
		t.Errorf("Description = %q, want %q", d.Description, "a circle")
	}

	if _, err := ReadDescriptor(strings.NewReader("format = 2\n")); err == nil {
		t.Fatal("expected error for newer format")
	} else if _, ok := err.(*IncompatibleFormatError); !ok {
		t.Errorf("expected *IncompatibleFormatError, got %T", err)
	}

	if _, err := ReadDescriptor(strings.NewReader("format = [")); err == nil {
		t.Error("expected error for malformed descriptor")
	}
}

func TestExport_RoundTrip(t *testing.T) {
	t.Parallel()

	units := []Descriptor{
		{Name: "geo.Circle", Description: "round"},
		{Name: "geo.shapes.Square"},
	}

	for _, dest := range []string{"out", "out.zip"} {
		t.Run(dest, func(t *testing.T) {
			t.Parallel()
			root, err := Export(filepath.Join(t.TempDir(), dest), units)
			if err != nil {
				t.Fatalf("Export() returned error: %v", err)
			}
			var diags []Diagnostic
			got := collectNames(root, &diags)
			want := []string{"geo.Circle", "geo.shapes.Square"}
			if !slices.Equal(got, want) {
				t.Errorf("exported root names = %v, want %v", got, want)
			}
			if len(diags) != 0 {
				t.Errorf("expected no diagnostics, got %v", diags)
			}
		})
	}
}

func TestExport_RejectsNestedNames(t *testing.T) {
	t.Parallel()

	if _, err := Export(filepath.Join(t.TempDir(), "out"), []Descriptor{{Name: "geo.Circle$Edge"}}); err == nil {
		t.Error("expected error for nested type name")
	}
}
