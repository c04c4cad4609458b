// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html/charset"
)

var elementName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*(:[A-Za-z_][A-Za-z0-9_.\-]*)?$`)

// XML wraps one element of a document. A nil *XML, or one without a node,
// is undefined: every getter returns its default and Defined reports false.
type XML struct {
	node   *xmlquery.Node
	engine *Engine
	ctx    context.Context
}

// ParseString parses s with the default engine.
func ParseString(s string) (*XML, error) { return defaultEngine.ParseString(s) }

// Parse reads and parses r with the default engine.
func Parse(r io.Reader) (*XML, error) { return defaultEngine.Parse(r) }

// ParseFile parses the file at path with the default engine.
func ParseFile(path string) (*XML, error) { return defaultEngine.ParseFile(path) }

// New creates a document made of a single <name/> element with the default
// engine.
func New(name string) (*XML, error) { return defaultEngine.New(name) }

// ParseString parses s. A blank string yields an undefined XML; text
// without any '<' is taken as the root element name.
func (e *Engine) ParseString(s string) (*XML, error) {
	if strings.TrimSpace(s) == "" {
		return e.wrap(nil), nil
	}
	if !strings.Contains(s, "<") {
		s = "<" + strings.TrimSpace(s) + "/>"
	}
	if size := int64(len(s)); size > e.maxSize {
		return nil, &Error{
			Kind:    KindMalformed,
			Message: fmt.Sprintf("document size %d bytes exceeds maximum %d bytes", size, e.maxSize),
		}
	}

	doc, err := xmlquery.Parse(strings.NewReader(s))
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "could not parse XML", Cause: err}
	}
	if err := markEmptyElements(doc, s); err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "could not parse XML", Cause: err}
	}
	root := documentElement(doc)
	if root == nil {
		return nil, &Error{Kind: KindMalformed, Message: "document has no root element"}
	}
	return e.wrap(root), nil
}

// Parse reads r fully and parses it.
func (e *Engine) Parse(r io.Reader) (*XML, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxSize+1))
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "could not read XML", Cause: err}
	}
	return e.ParseString(string(data))
}

// ParseFile parses the file at path.
func (e *Engine) ParseFile(path string) (*XML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open XML file: %w", err)
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical.

	x, err := e.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return x, nil
}

// New creates a document made of a single <name/> element.
func (e *Engine) New(name string) (*XML, error) {
	if !elementName.MatchString(name) {
		return nil, &Error{Kind: KindMalformed, Message: fmt.Sprintf("invalid element name %q", name)}
	}
	doc := &xmlquery.Node{Type: xmlquery.DocumentNode}
	root := newElement(name)
	xmlquery.AddChild(doc, root)
	return e.wrap(root), nil
}

// FromNode wraps an existing element node.
func (e *Engine) FromNode(n *xmlquery.Node) *XML {
	if n != nil && n.Type == xmlquery.DocumentNode {
		n = documentElement(n)
	}
	return e.wrap(n)
}

func (e *Engine) wrap(n *xmlquery.Node) *XML {
	return &XML{node: n, engine: e}
}

// derive wraps another node of the same document, keeping engine and context.
func (x *XML) derive(n *xmlquery.Node) *XML {
	return &XML{node: n, engine: x.eng(), ctx: x.ctx}
}

func (x *XML) eng() *Engine {
	if x == nil || x.engine == nil {
		return defaultEngine
	}
	return x.engine
}

// Engine returns the engine the document was created with.
func (x *XML) Engine() *Engine { return x.eng() }

// WithContext returns a copy of x whose hydration calls use ctx.
// The copy shares the underlying node.
func (x *XML) WithContext(ctx context.Context) *XML {
	if x == nil {
		return nil
	}
	c := *x
	c.ctx = ctx
	return &c
}

// Context returns the context used for hydration.
func (x *XML) Context() context.Context {
	if x == nil || x.ctx == nil {
		return context.Background()
	}
	return x.ctx
}

// Defined reports whether x wraps a node.
func (x *XML) Defined() bool {
	return x != nil && x.node != nil
}

// Node returns the wrapped node, or nil.
func (x *XML) Node() *xmlquery.Node {
	if x == nil {
		return nil
	}
	return x.node
}

// Name returns the element name, or "" when undefined.
func (x *XML) Name() string {
	if !x.Defined() {
		return ""
	}
	return qualifiedName(x.node)
}

// Path returns the location of the element in its document.
func (x *XML) Path() string {
	if !x.Defined() {
		return ""
	}
	return nodePath(x.node)
}

// markEmptyElements gives every element written <tag></tag> an empty text
// child, so it reads as "" while a self-closing <tag/> stays childless and
// reads as null. The decoder reports the end of a self-closing tag at the
// same input offset as its start.
func markEmptyElements(doc *xmlquery.Node, s string) error {
	d := xml.NewDecoder(strings.NewReader(s))
	d.CharsetReader = charset.NewReaderLabel

	var (
		empty []bool // per element, in document order
		open  = -1   // element whose start tag is the previous token
		start int64
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			empty = append(empty, false)
			open, start = len(empty)-1, d.InputOffset()
		case xml.EndElement:
			if open >= 0 && d.InputOffset() > start {
				empty[open] = true
			}
			open = -1
		default:
			open = -1
		}
	}

	i := 0
	walkElements(doc, func(n *xmlquery.Node) {
		if i < len(empty) && empty[i] && n.FirstChild == nil {
			appendChild(n, &xmlquery.Node{Type: xmlquery.TextNode})
		}
		i++
	})
	return nil
}
