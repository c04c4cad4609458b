// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// String returns the element as compact XML, or "" when undefined.
func (x *XML) String() string {
	return x.Indent(0)
}

// Indent returns the element as XML indented by n spaces per level.
// With n <= 0 the output is compact.
func (x *XML) Indent(n int) string {
	var b strings.Builder
	_ = x.Write(&b, n) // strings.Builder never fails
	return b.String()
}

// Write serializes the element to w. Elements read as empty are written
// <tag></tag> and null ones <tag/>. Whitespace between child elements is
// not kept; with indent > 0 every element starts on its own line.
func (x *XML) Write(w io.Writer, indent int) error {
	if !x.Defined() {
		return nil
	}
	opts := []xmlquery.OutputOption{xmlquery.WithOutputSelf(), xmlquery.WithEmptyTagSupport()}
	if indent > 0 {
		opts = append(opts, xmlquery.WithIndentation(strings.Repeat(" ", indent)))
	}
	out := layoutCopy(x.node).OutputXMLWithOptions(opts...)
	// Indented output opens every element, the first one included, on a new line.
	_, err := io.WriteString(w, strings.TrimPrefix(out, "\n"))
	return err
}

// layoutCopy clones n without the whitespace-only text separating child
// elements.
func layoutCopy(n *xmlquery.Node) *xmlquery.Node {
	c := cloneNode(n)
	dropLayoutText(c)
	return c
}

func dropLayoutText(n *xmlquery.Node) {
	mixed := len(elementChildren(n)) > 0
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == xmlquery.ElementNode:
			dropLayoutText(c)
		case mixed && c.Type == xmlquery.TextNode && strings.TrimSpace(c.Data) == "":
			xmlquery.RemoveFromTree(c)
		}
		c = next
	}
}
