// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/cfgbind/cfgbind/pkg/convert"
)

// ErrUndefined is returned when mutating an undefined XML.
var ErrUndefined = errors.New("undefined XML")

func (x *XML) mutable() error {
	if !x.Defined() {
		return ErrUndefined
	}
	if x.node.Type != xmlquery.ElementNode {
		return fmt.Errorf("node %s is not an element", x.Path())
	}
	return nil
}

// AddElement appends a <name> child and returns it. A nil value adds a
// self-closing element, "" an empty one. Other values are written the way
// FromObject writes them.
func (x *XML) AddElement(name string, value any) (*XML, error) {
	if err := x.mutable(); err != nil {
		return nil, err
	}
	if !elementName.MatchString(name) {
		return nil, fmt.Errorf("invalid element name %q", name)
	}
	child := x.derive(newElement(name))
	appendChild(x.node, child.node)
	if value == nil {
		return child, nil
	}
	if err := child.writeValue(value); err != nil {
		detach(child.node)
		return nil, err
	}
	return child, nil
}

// AddElementList appends one <name> child per value.
func AddElementList[T any](x *XML, name string, values []T) ([]*XML, error) {
	out := make([]*XML, 0, len(values))
	for _, v := range values {
		child, err := x.AddElement(name, v)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// AddDelimitedElementList appends a single <name> child holding the values
// joined with delim. No values add an empty element.
func (x *XML) AddDelimitedElementList(name, delim string, values []string) (*XML, error) {
	return x.AddElement(name, Join(delim, values))
}

// RemoveElement removes the first child element matching expr and returns
// it, detached. Nil is returned when nothing matches.
func (x *XML) RemoveElement(expr string) *XML {
	if x.mutable() != nil {
		return nil
	}
	sub := x.GetXML(expr)
	if sub == nil || sub.node == x.node {
		return nil
	}
	detach(sub.node)
	return sub
}

// SetAttribute sets an attribute to the text form of value. A nil value
// removes it.
func (x *XML) SetAttribute(name string, value any) error {
	if err := x.mutable(); err != nil {
		return err
	}
	if isNil(value) {
		removeAttr(x.node, name)
		return nil
	}
	s, err := convert.ToString(value)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", name, err)
	}
	setAttr(x.node, name, s)
	return nil
}

// SetAttributes sets several attributes.
func (x *XML) SetAttributes(attrs map[string]any) error {
	for _, name := range sortedKeys(attrs) {
		if err := x.SetAttribute(name, attrs[name]); err != nil {
			return err
		}
	}
	return nil
}

// SetDelimitedAttributeList sets an attribute to the values joined with
// delim. No values leave the element untouched.
func (x *XML) SetDelimitedAttributeList(name, delim string, values []string) error {
	if len(values) == 0 {
		return x.mutable()
	}
	return x.SetAttribute(name, Join(delim, values))
}

// RemoveAttribute removes an attribute. It reports whether one was removed.
func (x *XML) RemoveAttribute(name string) bool {
	if x.mutable() != nil {
		return false
	}
	return removeAttr(x.node, name)
}

// SetTextContent replaces the element's content with text. A nil value
// leaves a self-closing element and "" an empty one.
func (x *XML) SetTextContent(value any) error {
	if err := x.mutable(); err != nil {
		return err
	}
	if isNil(value) {
		removeChildren(x.node)
		return nil
	}
	s, err := convert.ToString(value)
	if err != nil {
		return err
	}
	removeChildren(x.node)
	appendChild(x.node, &xmlquery.Node{Type: xmlquery.TextNode, Data: s})
	return nil
}

// AddXML parses s and appends its root element as a child.
func (x *XML) AddXML(s string) (*XML, error) {
	other, err := x.eng().ParseString(s)
	if err != nil {
		return nil, err
	}
	return x.AddXMLNode(other)
}

// AddXMLNode appends a copy of other as a child.
func (x *XML) AddXMLNode(other *XML) (*XML, error) {
	if err := x.mutable(); err != nil {
		return nil, err
	}
	if !other.Defined() {
		return nil, ErrUndefined
	}
	n := cloneNode(other.node)
	appendChild(x.node, n)
	return x.derive(n), nil
}

// Unwrap replaces the element with its only child element. Without child
// elements nothing happens; more than one is an error.
func (x *XML) Unwrap() error {
	if err := x.mutable(); err != nil {
		return err
	}
	children := elementChildren(x.node)
	switch len(children) {
	case 0:
		return nil
	case 1:
		x.replaceWith(children[0])
		return nil
	default:
		return fmt.Errorf("cannot unwrap %s: it has %d child elements", x.Name(), len(children))
	}
}

// Rename changes the element name.
func (x *XML) Rename(name string) error {
	if err := x.mutable(); err != nil {
		return err
	}
	if !elementName.MatchString(name) {
		return fmt.Errorf("invalid element name %q", name)
	}
	renamed := newElement(name)
	x.node.Data, x.node.Prefix = renamed.Data, renamed.Prefix
	return nil
}

// Wrap moves the element's content into a new child and renames the element
// to parentName, so x keeps pointing at the outer element.
func (x *XML) Wrap(parentName string) error {
	if err := x.mutable(); err != nil {
		return err
	}
	inner := cloneNode(x.node)
	x.Clear()
	if err := x.Rename(parentName); err != nil {
		return err
	}
	appendChild(x.node, inner)
	return nil
}

// Clear removes all children and attributes.
func (x *XML) Clear() {
	if x.mutable() != nil {
		return
	}
	removeChildren(x.node)
	x.node.Attr = nil
}

// Replace makes the element a copy of other: name, attributes and content.
func (x *XML) Replace(other *XML) error {
	if err := x.mutable(); err != nil {
		return err
	}
	if !other.Defined() {
		return ErrUndefined
	}
	x.replaceWith(other.node)
	return nil
}

func (x *XML) replaceWith(src *xmlquery.Node) {
	c := cloneNode(src)
	removeChildren(x.node)
	x.node.Data, x.node.Prefix, x.node.NamespaceURI = c.Data, c.Prefix, c.NamespaceURI
	x.node.Attr = c.Attr
	for child := c.FirstChild; child != nil; {
		next := child.NextSibling
		child.Parent, child.PrevSibling, child.NextSibling = nil, nil, nil
		appendChild(x.node, child)
		child = next
	}
}

// Join formats values as a delimited list, trimming each and dropping
// blank ones.
func Join(delim string, values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, delim)
}
