// SPDX-License-Identifier: MPL-2.0

package rootscan

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// UnitPath returns the slash-separated path of the unit file for a type name.
func UnitPath(name string) string {
	return strings.ReplaceAll(name, ".", "/") + UnitSuffix
}

// Export writes one unit file per descriptor and returns the absolute path of
// the produced root. A dest ending in ".zip" produces an archive root,
// anything else a directory root.
func Export(dest string, units []Descriptor) (rootPath string, err error) {
	if dest == "" {
		return "", errors.New("export destination cannot be empty")
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("failed to resolve export destination: %w", err)
	}

	for _, u := range units {
		if _, ok := CandidateName(UnitPath(u.Name)); !ok {
			return "", fmt.Errorf("type name %q cannot be exported as a unit", u.Name)
		}
	}

	if strings.EqualFold(filepath.Ext(absDest), ArchiveSuffix) {
		err = exportArchive(absDest, units)
	} else {
		err = exportDirectory(absDest, units)
	}
	if err != nil {
		return "", err
	}
	return absDest, nil
}

func exportDirectory(dir string, units []Descriptor) error {
	for _, u := range units {
		body, err := MarshalDescriptor(u)
		if err != nil {
			return fmt.Errorf("failed to encode unit %s: %w", u.Name, err)
		}
		p := filepath.Join(dir, filepath.FromSlash(UnitPath(u.Name)))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(p, body, 0o644); err != nil {
			return fmt.Errorf("failed to write unit %s: %w", u.Name, err)
		}
	}
	return nil
}

func exportArchive(archivePath string, units []Descriptor) (err error) {
	if err = os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	zipFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create ZIP file: %w", err)
	}
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()

	zipWriter := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	dirs := make(map[string]bool)
	for _, u := range units {
		body, encErr := MarshalDescriptor(u)
		if encErr != nil {
			return fmt.Errorf("failed to encode unit %s: %w", u.Name, encErr)
		}

		entry := UnitPath(u.Name)
		for dir := path.Dir(entry); dir != "." && !dirs[dir]; dir = path.Dir(dir) {
			dirs[dir] = true
			if _, createErr := zipWriter.Create(dir + "/"); createErr != nil {
				return fmt.Errorf("failed to create directory entry: %w", createErr)
			}
		}

		w, createErr := zipWriter.CreateHeader(&zip.FileHeader{Name: entry, Method: zip.Deflate})
		if createErr != nil {
			return fmt.Errorf("failed to create ZIP entry: %w", createErr)
		}
		if _, writeErr := w.Write(body); writeErr != nil {
			return fmt.Errorf("failed to write unit %s: %w", u.Name, writeErr)
		}
	}
	return nil
}
