// SPDX-License-Identifier: MPL-2.0

package rootscan

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// UnitSuffix is the file suffix of unit files.
	UnitSuffix = ".unit"
	// NestedSeparator marks nested units, which are never candidates.
	NestedSeparator = "$"
	// ModuleDescriptor is the pseudo-unit describing a whole root.
	ModuleDescriptor = "module-info" + UnitSuffix
	// ArchiveSuffix is the file suffix of archive roots.
	ArchiveSuffix = ".zip"
)

const (
	// RootInvalid is a path that cannot be scanned.
	RootInvalid RootKind = iota
	// RootDirectory is a directory tree.
	RootDirectory
	// RootArchive is a zip archive.
	RootArchive
)

type (
	// RootKind classifies a loadable root.
	RootKind int

	// Candidate is a unit found while scanning a root.
	Candidate struct {
		// Name is the derived candidate type name (e.g. "com.example.Circle").
		Name string
		// Root is the root the candidate was found in.
		Root string
		// Entry is the slash-separated path of the unit inside the root.
		Entry string

		open func() (io.ReadCloser, error)
	}
)

// String returns the root kind name.
func (k RootKind) String() string {
	switch k {
	case RootDirectory:
		return "directory"
	case RootArchive:
		return "archive"
	default:
		return "invalid"
	}
}

// Open returns the unit body. For archive roots the reader is only valid
// while the scan that produced the candidate is still iterating.
func (c Candidate) Open() (io.ReadCloser, error) {
	if c.open == nil {
		return nil, fmt.Errorf("candidate %s has no body", c.Name)
	}
	return c.open()
}

// CandidateName derives a candidate type name from a unit path relative to
// its root. It returns false for paths that are not candidates: wrong suffix,
// nested units and the module descriptor.
func CandidateName(rel string) (string, bool) {
	rel = strings.ReplaceAll(rel, `\`, "/")
	rel = strings.TrimLeft(strings.TrimPrefix(rel, "./"), "/")
	if !strings.HasSuffix(rel, UnitSuffix) {
		return "", false
	}
	if strings.Contains(rel, NestedSeparator) || path.Base(rel) == ModuleDescriptor {
		return "", false
	}
	name := strings.TrimSuffix(rel, UnitSuffix)
	name = strings.ReplaceAll(name, "/", ".")
	if name == "" {
		return "", false
	}
	return name, true
}

// Classify reports the kind of root at p.
func Classify(p string) (RootKind, error) {
	info, err := os.Stat(p)
	if err != nil {
		return RootInvalid, err
	}
	switch {
	case info.IsDir():
		return RootDirectory, nil
	case info.Mode().IsRegular() && strings.EqualFold(filepath.Ext(p), ArchiveSuffix):
		return RootArchive, nil
	default:
		return RootInvalid, nil
	}
}

// Canonical returns the absolute, symlink-free form of root, used to detect
// duplicate roots.
func Canonical(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// Scan lazily enumerates the candidates of root. Each call produces a fresh
// sequence; nothing is cached between calls. Problems are delivered to report
// and never stop other roots from being scanned.
func Scan(root string, report Reporter) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if root == "" {
			report.report(SeverityWarning, CodeRootNotFound, root, "empty root path", nil)
			return
		}

		resolved, err := Canonical(root)
		if err != nil {
			code := CodeRootUnreadable
			if errors.Is(err, fs.ErrNotExist) {
				code = CodeRootNotFound
			}
			report.report(SeverityWarning, code, root, "root cannot be resolved", err)
			return
		}

		kind, err := Classify(resolved)
		if err != nil {
			report.report(SeverityWarning, CodeRootUnreadable, root, "root cannot be inspected", err)
			return
		}

		switch kind {
		case RootDirectory:
			scanDirectory(resolved, report, yield)
		case RootArchive:
			scanArchive(resolved, report, yield)
		default:
			report.report(SeverityWarning, CodeRootUnsupported, root,
				"root is neither a directory nor a "+ArchiveSuffix+" archive", nil)
		}
	}
}

func scanDirectory(root string, report Reporter, yield func(Candidate) bool) {
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == root {
				report.report(SeverityWarning, CodeRootUnreadable, root, "root directory cannot be read", walkErr)
				return filepath.SkipAll
			}
			report.report(SeverityWarning, CodeDirectorySkipped, p, "unreadable entry skipped", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		name, ok := CandidateName(filepath.ToSlash(rel))
		if !ok {
			return nil
		}

		c := Candidate{
			Name:  name,
			Root:  root,
			Entry: filepath.ToSlash(rel),
			open:  func() (io.ReadCloser, error) { return os.Open(p) },
		}
		if !yield(c) {
			return filepath.SkipAll
		}
		return nil
	})
}

func scanArchive(root string, report Reporter, yield func(Candidate) bool) {
	r, err := zip.OpenReader(root)
	if err != nil {
		report.report(SeverityWarning, CodeRootUnreadable, root, "archive cannot be opened", err)
		return
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			report.report(SeverityWarning, CodeRootUnreadable, root, "archive cannot be closed", closeErr)
		}
	}()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name, ok := CandidateName(f.Name)
		if !ok {
			continue
		}
		c := Candidate{
			Name:  name,
			Root:  root,
			Entry: f.Name,
			open:  f.Open,
		}
		if !yield(c) {
			return
		}
	}
}
