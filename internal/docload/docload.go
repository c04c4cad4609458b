// SPDX-License-Identifier: MPL-2.0

// Package docload reads configuration documents in any supported syntax into
// xmlconf node trees and writes node trees back out.
//
// XML documents are parsed as they are. TOML, CUE and JSON documents are
// decoded to maps and mapped onto elements: keys starting with "@" become
// attributes, "#text" becomes text and lists become repeated elements.
package docload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/pelletier/go-toml/v2"

	"github.com/cfgbind/cfgbind/internal/issue"
	"github.com/cfgbind/cfgbind/pkg/cueutil"
	"github.com/cfgbind/cfgbind/pkg/xmlconf"
)

const (
	FormatXML  Format = "xml"
	FormatTOML Format = "toml"
	FormatCUE  Format = "cue"
	FormatJSON Format = "json"

	// DefaultRoot names the root element of documents whose top level is not
	// a single table.
	DefaultRoot = "config"
)

// ErrUnsupportedFormat is returned for unknown extensions and format names.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format identifies a document syntax.
type Format string

// Formats lists the supported formats in a stable order.
func Formats() []Format {
	return []Format{FormatXML, FormatTOML, FormatCUE, FormatJSON}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
}

// FormatOf derives the format from the file extension.
func FormatOf(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%s has no extension: %w", path, ErrUnsupportedFormat)
	}
	return ParseFormat(ext)
}

// Load reads the document at path. maxSize <= 0 uses
// xmlconf.DefaultMaxDocumentSize.
func Load(e *xmlconf.Engine, path string, maxSize int64) (*xmlconf.XML, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		id := issue.DocumentNotFoundId
		if errors.Is(err, fs.ErrPermission) {
			id = issue.PermissionDeniedId
		}
		return nil, issue.NewErrorContext().
			WithOperation("load document").
			WithResource(path).
			WithSuggestion("Check that the file exists and is readable").
			WithIssue(id).
			Wrap(err).
			BuildError()
	}
	if maxSize <= 0 {
		maxSize = xmlconf.DefaultMaxDocumentSize
	}
	if err := cueutil.CheckFileSize(data, maxSize, path); err != nil {
		return nil, err
	}
	return Decode(e, data, format, path)
}

// Decode parses data in the given format. name is used in error messages.
func Decode(e *xmlconf.Engine, data []byte, format Format, name string) (*xmlconf.XML, error) {
	if format == FormatXML {
		x, err := e.ParseString(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return x, nil
	}

	var (
		doc any
		err error
	)
	switch format {
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		doc = m
	case FormatCUE:
		doc, err = cueutil.DecodeMap(nil, data, "", cueutil.WithFilename(name), cueutil.WithMaxFileSize(int64(len(data))+1))
	case FormatJSON:
		doc, err = oj.Parse(data)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, &xmlconf.Error{
			Kind:    xmlconf.KindMalformed,
			Message: fmt.Sprintf("invalid %s document %s", format, name),
			Cause:   err,
		}
	}
	return FromValue(e, doc)
}

// FromValue maps a decoded document onto a node tree. A map holding a single
// table becomes that element; anything else is wrapped in DefaultRoot.
func FromValue(e *xmlconf.Engine, doc any) (*xmlconf.XML, error) {
	switch v := doc.(type) {
	case map[string]any:
		if len(v) == 1 {
			for name, inner := range v {
				if m, ok := inner.(map[string]any); ok {
					return e.FromMap(name, m)
				}
			}
		}
		return e.FromMap(DefaultRoot, v)
	case nil:
		return e.New(DefaultRoot)
	case []any:
		return e.FromMap(DefaultRoot, map[string]any{"item": v})
	default:
		return e.FromMap(DefaultRoot, map[string]any{xmlconf.TextKey: v})
	}
}

// Encode writes x in the given format. TOML and JSON output keep the root
// element name as the single top-level key so Decode reads it back as the
// same tree.
func Encode(x *xmlconf.XML, format Format) ([]byte, error) {
	if !x.Defined() {
		return nil, xmlconf.ErrUndefined
	}
	doc := map[string]any{x.Name(): x.ToMap()}
	switch format {
	case FormatXML:
		return []byte(x.Indent(2) + "\n"), nil
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatJSON:
		return []byte(oj.JSON(doc, &ojg.Options{Indent: 2, Sort: true}) + "\n"), nil
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}
