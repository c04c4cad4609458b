// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/cfgbind/cfgbind/pkg/convert"
)

const (
	// AttrPrefix marks attribute keys in map form.
	AttrPrefix = "@"
	// TextKey holds the text of elements that also have attributes or children.
	TextKey = "#text"
)

type mapOptions struct {
	attrPrefix string
	// skip lists attribute names left out of the map.
	skip []string
	// keepNull keeps self-closing leaves as nil entries.
	keepNull bool
	// typed records element maps whose node declares a type.
	typed  map[uintptr]*xmlquery.Node
	marker string
}

// ToMap converts the element's content into nested maps. Attributes are
// keyed with AttrPrefix, repeated children become slices and elements with
// nothing but text become strings. Null leaves are omitted.
func (x *XML) ToMap() map[string]any {
	if !x.Defined() {
		return nil
	}
	m, _ := elementValue(x.node, &mapOptions{attrPrefix: AttrPrefix}).(map[string]any)
	if m == nil {
		m = map[string]any{}
		if s, p := nodeValue(x.node); p == Present {
			m[TextKey] = s
		}
	}
	return m
}

// elementValue returns a string, nil or a map for n.
func elementValue(n *xmlquery.Node, opts *mapOptions) any {
	attrs := slices.DeleteFunc(slices.Clone(n.Attr), func(a xmlquery.Attr) bool {
		return slices.Contains(opts.skip, attrName(a))
	})
	children := elementChildren(n)
	_, declared := getAttr(n, opts.marker)
	declared = declared && opts.marker != "" && opts.typed != nil

	if len(attrs) == 0 && len(children) == 0 && !declared {
		s, p := nodeValue(n)
		if p == Null {
			return nil
		}
		return s
	}

	m := make(map[string]any, len(attrs)+len(children))
	for _, a := range attrs {
		m[opts.attrPrefix+attrName(a)] = a.Value
	}
	for _, c := range children {
		v := elementValue(c, opts)
		if v == nil && !opts.keepNull {
			continue
		}
		key := qualifiedName(c)
		switch prev := m[key].(type) {
		case nil:
			if _, exists := m[key]; exists {
				m[key] = []any{nil, v}
			} else {
				m[key] = v
			}
		case []any:
			m[key] = append(prev, v)
		default:
			m[key] = []any{prev, v}
		}
	}
	if len(children) == 0 {
		if s, p := nodeValue(n); p == Present && s != "" {
			m[TextKey] = s
		}
	} else if text := strings.TrimSpace(directText(n)); text != "" {
		m[TextKey] = text
	}
	if declared {
		opts.typed[reflect.ValueOf(m).Pointer()] = n
	}
	return m
}

// FromMap builds a <name> document from a map in the form ToMap produces.
func (e *Engine) FromMap(name string, m map[string]any) (*XML, error) {
	x, err := e.New(name)
	if err != nil {
		return nil, err
	}
	if err := x.fillMap(m); err != nil {
		return nil, err
	}
	return x, nil
}

// FromMap builds a document with the default engine.
func FromMap(name string, m map[string]any) (*XML, error) {
	return defaultEngine.FromMap(name, m)
}

func (x *XML) fillMap(m map[string]any) error {
	for _, key := range sortedKeys(m) {
		v := m[key]
		switch {
		case key == TextKey:
			if err := x.SetTextContent(v); err != nil {
				return err
			}
		case strings.HasPrefix(key, AttrPrefix):
			if err := x.SetAttribute(strings.TrimPrefix(key, AttrPrefix), v); err != nil {
				return err
			}
		default:
			if err := x.addMapValue(key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *XML) addMapValue(name string, v any) error {
	if v == nil {
		_, err := x.AddElement(name, nil)
		return err
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		for i := range rv.Len() {
			if err := x.addMapValue(name, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		sub, err := toStringMap(rv)
		if err != nil {
			return fmt.Errorf("element %s: %w", name, err)
		}
		child, err := x.AddElement(name, nil)
		if err != nil {
			return err
		}
		return child.fillMap(sub)
	}

	s, err := convert.ToString(v)
	if err != nil {
		return fmt.Errorf("element %s: %w", name, err)
	}
	_, err = x.AddElement(name, s)
	return err
}

func toStringMap(rv reflect.Value) (map[string]any, error) {
	if m, ok := rv.Interface().(map[string]any); ok {
		return m, nil
	}
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("map keys must be strings, got %s", rv.Type().Key())
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
