// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cfgbind/cfgbind/pkg/convert"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

// TagName is the struct tag read by schema population and encoding.
const TagName = "cfg"

// Configurable types read and write their own XML.
type Configurable interface {
	LoadFromXML(x *XML) error
	SaveToXML(x *XML) error
}

// FromObject creates a <name> document describing obj. Registered types get
// the marker attribute set to their name; self-populating types write
// themselves and others are encoded from their exported fields.
func (e *Engine) FromObject(name string, obj any) (*XML, error) {
	x, err := e.New(name)
	if err != nil {
		return nil, err
	}
	if isNil(obj) {
		return x, nil
	}
	if err := x.writeValue(obj); err != nil {
		return nil, err
	}
	return x, nil
}

// FromObject creates a document with the default engine.
func FromObject(name string, obj any) (*XML, error) {
	return defaultEngine.FromObject(name, obj)
}

// writeValue fills the element from v.
func (x *XML) writeValue(v any) error {
	if isNil(v) {
		return nil
	}
	reg := x.eng().registry
	if entry, ok := reg.LookupValue(v); ok && entry.Concrete() {
		if err := x.SetAttribute(x.eng().marker, string(entry.Name)); err != nil {
			return err
		}
		return x.saveEntry(entry, v)
	}
	if c, ok := v.(Configurable); ok {
		return c.SaveToXML(x)
	}
	rv := reflect.ValueOf(v)
	if convert.IsConvertible(rv.Type()) {
		return x.SetTextContent(v)
	}
	return x.encodeFields(rv)
}

func (x *XML) saveEntry(entry *typereg.Entry, v any) error {
	switch entry.Population {
	case typereg.PopulateSelf:
		c, ok := v.(Configurable)
		if !ok {
			return fmt.Errorf("%s is self-populating but %T does not implement Configurable", entry.Name, v)
		}
		return c.SaveToXML(x)
	case typereg.PopulateSchema:
		return x.encodeFields(reflect.ValueOf(v))
	default:
		return nil
	}
}

// encodeFields writes the exported fields of a struct (or map) as children.
func (x *XML) encodeFields(rv reflect.Value) error {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		m, err := toStringMap(rv)
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(m) {
			if err := x.encodeChild(key, reflect.ValueOf(m[key]), false); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
	default:
		return fmt.Errorf("cannot encode %s as XML", rv.Type())
	}

	t := rv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts := parseTag(f)
		if name == "-" {
			continue
		}
		fv := rv.Field(i)
		if opts.squash || (f.Anonymous && opts.name == "" && fv.Kind() == reflect.Struct) {
			if err := x.encodeFields(fv); err != nil {
				return err
			}
			continue
		}
		if opts.omitempty && fv.IsZero() {
			continue
		}
		if err := x.encodeChild(name, fv, opts.attr); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return nil
}

// encodeChild writes one field value: slices repeat the element, nil
// pointers and interfaces are skipped.
func (x *XML) encodeChild(name string, fv reflect.Value, attr bool) error {
	if !fv.IsValid() {
		return nil
	}
	if attr {
		if (fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface) && fv.IsNil() {
			return nil
		}
		return x.SetAttribute(name, fv.Interface())
	}
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if fv.IsNil() {
			return nil
		}
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		if fv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		for i := range fv.Len() {
			if err := x.encodeChild(name, fv.Index(i), false); err != nil {
				return err
			}
		}
		return nil
	}
	child, err := x.AddElement(name, nil)
	if err != nil {
		return err
	}
	return child.writeValue(fv.Interface())
}

type tagOptions struct {
	name      string
	omitempty bool
	squash    bool
	attr      bool
}

// parseTag reads `cfg:"name,omitempty,squash,attr"`, defaulting the name to
// the field name with a lower-case first letter.
func parseTag(f reflect.StructField) (string, tagOptions) {
	tag := f.Tag.Get(TagName)
	name, rest, _ := strings.Cut(tag, ",")
	opts := tagOptions{name: name}
	for _, o := range strings.Split(rest, ",") {
		switch o {
		case "omitempty":
			opts.omitempty = true
		case "squash":
			opts.squash = true
		case "attr":
			opts.attr = true
		}
	}
	if name == "" {
		name = strings.ToLower(f.Name[:1]) + f.Name[1:]
	}
	return name, opts
}
