// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Presence tells apart the three states a queried value can be in.
type Presence int

const (
	// Absent means no node matched.
	Absent Presence = iota
	// Null means a self-closing element matched.
	Null
	// Present means a value was found, possibly "".
	Present
)

func newElement(name string) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		n.Prefix, n.Data = prefix, local
	}
	return n
}

func documentElement(doc *xmlquery.Node) *xmlquery.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

func qualifiedName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

func attrName(a xmlquery.Attr) string {
	if a.Name.Space != "" {
		return a.Name.Space + ":" + a.Name.Local
	}
	return a.Name.Local
}

func splitName(name string) xml.Name {
	if space, local, ok := strings.Cut(name, ":"); ok {
		return xml.Name{Space: space, Local: local}
	}
	return xml.Name{Local: name}
}

func attrIndex(n *xmlquery.Node, name string) int {
	for i, a := range n.Attr {
		if attrName(a) == name {
			return i
		}
	}
	return -1
}

func getAttr(n *xmlquery.Node, name string) (string, bool) {
	if i := attrIndex(n, name); i >= 0 {
		return n.Attr[i].Value, true
	}
	return "", false
}

func setAttr(n *xmlquery.Node, name, value string) {
	if i := attrIndex(n, name); i >= 0 {
		n.Attr[i].Value = value
		return
	}
	n.Attr = append(n.Attr, xmlquery.Attr{Name: splitName(name), Value: value})
}

func removeAttr(n *xmlquery.Node, name string) bool {
	i := attrIndex(n, name)
	if i < 0 {
		return false
	}
	n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
	return true
}

// walkElements calls fn for every element under n in document order.
func walkElements(n *xmlquery.Node, fn func(*xmlquery.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			fn(c)
			walkElements(c, fn)
		}
	}
}

func elementChildren(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func textContent(n *xmlquery.Node) string {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		return n.Data
	case xmlquery.CommentNode, xmlquery.DeclarationNode:
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

// directText concatenates the text nodes directly under n.
func directText(n *xmlquery.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// nodeValue reads a matched node. Attributes yield their value; elements
// yield their text content. An element without any text child, such as a
// self-closing one, reads as Null.
func nodeValue(n *xmlquery.Node) (string, Presence) {
	if n == nil {
		return "", Absent
	}
	switch n.Type {
	case xmlquery.AttributeNode:
		if n.FirstChild != nil {
			return n.FirstChild.Data, Present
		}
		return n.InnerText(), Present
	case xmlquery.TextNode, xmlquery.CharDataNode:
		return n.Data, Present
	}
	if s := textContent(n); s != "" {
		return s, Present
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			return "", Present
		}
	}
	return "", Null
}

func appendChild(parent, child *xmlquery.Node) {
	xmlquery.AddChild(parent, child)
}

func detach(n *xmlquery.Node) {
	if n.Parent == nil {
		return
	}
	xmlquery.RemoveFromTree(n)
	n.Parent, n.PrevSibling, n.NextSibling = nil, nil, nil
}

// replaceNode puts repl where old is in the tree.
func replaceNode(old, repl *xmlquery.Node) {
	parent := old.Parent
	repl.Parent = parent
	repl.PrevSibling = old.PrevSibling
	repl.NextSibling = old.NextSibling
	if old.PrevSibling != nil {
		old.PrevSibling.NextSibling = repl
	} else if parent != nil {
		parent.FirstChild = repl
	}
	if old.NextSibling != nil {
		old.NextSibling.PrevSibling = repl
	} else if parent != nil {
		parent.LastChild = repl
	}
	old.Parent, old.PrevSibling, old.NextSibling = nil, nil, nil
}

func removeChildren(n *xmlquery.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		c.Parent, c.PrevSibling, c.NextSibling = nil, nil, nil
		c = next
	}
	n.FirstChild, n.LastChild = nil, nil
}

// cloneNode deep-copies n without its parent and siblings.
func cloneNode(n *xmlquery.Node) *xmlquery.Node {
	c := &xmlquery.Node{
		Type:         n.Type,
		Data:         n.Data,
		Prefix:       n.Prefix,
		NamespaceURI: n.NamespaceURI,
	}
	if len(n.Attr) > 0 {
		c.Attr = append([]xmlquery.Attr(nil), n.Attr...)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		appendChild(c, cloneNode(child))
	}
	return c
}

// nodePath renders an absolute location such as /config/shape[2]/@radius.
func nodePath(n *xmlquery.Node) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent {
		switch cur.Type {
		case xmlquery.ElementNode:
			parts = append(parts, qualifiedName(cur)+siblingIndex(cur))
		case xmlquery.AttributeNode:
			parts = append(parts, "@"+qualifiedName(cur))
		}
	}
	if len(parts) == 0 {
		return "/"
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString("/")
		b.WriteString(parts[i])
	}
	return b.String()
}

func siblingIndex(n *xmlquery.Node) string {
	if n.Parent == nil {
		return ""
	}
	name := qualifiedName(n)
	index, count := 0, 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode || qualifiedName(c) != name {
			continue
		}
		count++
		if c == n {
			index = count
		}
	}
	if count < 2 {
		return ""
	}
	return fmt.Sprintf("[%d]", index)
}
