// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// UnitBody is the body of a plain, current-format unit file.
const UnitBody = "format = 1\n"

// UnitFile returns the slash-separated unit path for a dotted type name.
func UnitFile(name string) string {
	return strings.ReplaceAll(name, ".", "/") + ".unit"
}

// WriteUnitRoot creates a directory root under dir holding one unit per name
// and returns dir.
func WriteUnitRoot(t testing.TB, dir string, names ...string) string {
	t.Helper()
	files := make(map[string]string, len(names))
	for _, n := range names {
		files[UnitFile(n)] = UnitBody
	}
	return WriteFiles(t, dir, files)
}

// WriteFiles writes slash-separated relative paths with their content under
// dir and returns dir.
func WriteFiles(t testing.TB, dir string, files map[string]string) string {
	t.Helper()
	for rel, content := range files {
		MustWriteFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	return dir
}

// WriteArchiveRoot creates a zip archive at path with the given entries
// (slash-separated name -> content) and returns path.
func WriteArchiveRoot(t testing.TB, path string, files map[string]string) string {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive %s: %v", path, err)
	}
	w := zip.NewWriter(f)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create archive entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(files[name])); err != nil {
			t.Fatalf("failed to write archive entry %s: %v", name, err)
		}
	}

	MustClose(t, w)
	MustClose(t, f)
	return path
}
