// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/go-viper/mapstructure/v2"

	"github.com/cfgbind/cfgbind/pkg/convert"
	"github.com/cfgbind/cfgbind/pkg/cueutil"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

// Populate fills target from the element without looking at the marker
// attribute. Registered types use their registered strategy; otherwise
// Configurable values load themselves and pointers to structs are decoded
// from the element's attributes and children.
func (x *XML) Populate(target any) error {
	if !x.Defined() || isNil(target) {
		return nil
	}
	if entry, ok := x.eng().registry.LookupValue(target); ok {
		return x.populateEntry(entry, target)
	}

	var err error
	if c, ok := target.(Configurable); ok {
		err = c.LoadFromXML(x)
	} else {
		err = x.decodeInto(target)
	}
	if err != nil {
		return &Error{
			Kind:    KindPopulation,
			Path:    x.Path(),
			Message: fmt.Sprintf("node (tag: %s) could not be converted to %T", x.Name(), target),
			Cause:   err,
		}
	}
	return nil
}

func (x *XML) populateEntry(entry *typereg.Entry, obj any) error {
	if err := x.validateEntry(entry); err != nil {
		return err
	}

	var err error
	switch entry.Population {
	case typereg.PopulateSelf:
		c, ok := obj.(Configurable)
		if !ok {
			err = fmt.Errorf("%T does not implement Configurable", obj)
			break
		}
		err = c.LoadFromXML(x)
	case typereg.PopulateSchema:
		err = x.decodeInto(obj)
	}
	if err != nil {
		return &Error{
			Kind:     KindPopulation,
			Path:     x.Path(),
			TypeName: entry.Name,
			Message:  fmt.Sprintf("node (tag: %s) could not be converted to %s", x.Name(), entry.Name),
			Cause:    err,
		}
	}
	return nil
}

// decodeInto decodes the element into a copy of *target and stores the
// copy back only when decoding succeeds, so target is never left half
// populated and keeps its identity.
func (x *XML) decodeInto(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("schema population needs a non-nil pointer, got %T", target)
	}

	eng := x.eng()
	opts := &mapOptions{
		skip:   []string{eng.marker},
		marker: eng.marker,
		typed:  map[uintptr]*xmlquery.Node{},
	}
	data := elementValue(x.node, opts)
	if m, ok := data.(map[string]any); ok {
		delete(opts.typed, reflect.ValueOf(m).Pointer())
	}
	if data == nil {
		return nil
	}

	tmp := reflect.New(rv.Elem().Type())
	tmp.Elem().Set(rv.Elem())
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           tmp.Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			sliceHook,
			convertHook,
			x.typedChildHook(opts),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(data); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

// typedChildHook hydrates children that declare a type when they are
// decoded into an interface-typed field.
func (x *XML) typedChildHook(opts *mapOptions) mapstructure.DecodeHookFuncValue {
	return func(from, to reflect.Value) (any, error) {
		if to.Kind() != reflect.Interface || from.Kind() != reflect.Map {
			return from.Interface(), nil
		}
		n, ok := opts.typed[from.Pointer()]
		if !ok {
			return from.Interface(), nil
		}

		var capability typereg.Capability
		if entry, ok := x.eng().registry.LookupType(to.Type()); ok {
			capability = typereg.Capability(entry.Name)
		}
		obj, err := x.derive(n).hydrate(capability, nil)
		if err != nil {
			return nil, err
		}
		if obj != nil && !reflect.TypeOf(obj).AssignableTo(to.Type()) {
			return nil, &Error{
				Kind:    KindTypeMismatch,
				Path:    nodePath(n),
				Message: fmt.Sprintf("%T does not implement %s", obj, to.Type()),
			}
		}
		// Drop any previous value so the hydrated one replaces it whole.
		if to.CanSet() {
			to.Set(reflect.Zero(to.Type()))
		}
		return obj, nil
	}
}

// sliceHook adapts single values decoded into a slice: text is split on
// DefaultDelimiter and a lone child element becomes a one-item list.
func sliceHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Slice || to.Elem().Kind() == reflect.Uint8 {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		parts := SplitDelimited(data.(string), DefaultDelimiter)
		if parts == nil {
			parts = []string{}
		}
		return parts, nil
	case reflect.Map:
		return []any{data}, nil
	}
	return data, nil
}

// convertHook reads text into the non-string types pkg/convert supports.
func convertHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() == reflect.String || to.Kind() == reflect.Pointer {
		return data, nil
	}
	if !convert.IsConvertible(to) {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	if strings.TrimSpace(s) == "" {
		return reflect.Zero(to).Interface(), nil
	}
	return convert.Convert(s, to)
}

// Validate checks the element against the schema of the named type.
// Types without a schema always validate.
func (x *XML) Validate(name typereg.TypeName) ([]*cueutil.ValidationError, error) {
	entry, err := x.eng().registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	if entry.Schema == nil || !x.Defined() {
		return nil, nil
	}
	return x.checkSchema(entry.Schema)
}

func (x *XML) checkSchema(s *typereg.Schema) ([]*cueutil.ValidationError, error) {
	data := elementValue(x.node, &mapOptions{skip: []string{x.eng().marker}})
	if data == nil {
		data = map[string]any{}
	}
	return cueutil.ValidateValue(s.Source, s.Definition, data, cueutil.WithFilename(x.Path()))
}

// validateEntry applies the entry's schema. Violations fail population in
// strict mode and are logged otherwise.
func (x *XML) validateEntry(entry *typereg.Entry) error {
	if entry.Schema == nil {
		return nil
	}
	eng := x.eng()
	violations, err := x.checkSchema(entry.Schema)
	if err != nil {
		return &Error{Kind: KindSchema, Path: x.Path(), TypeName: entry.Name, Message: "schema cannot be applied", Cause: err}
	}
	if len(violations) == 0 {
		return nil
	}
	if !eng.strict {
		for _, v := range violations {
			eng.log().Warn("configuration does not match schema", "type", entry.Name, "error", v)
		}
		return nil
	}

	errs := make([]error, len(violations))
	for i, v := range violations {
		errs[i] = v
	}
	return &Error{
		Kind:     KindSchema,
		Path:     x.Path(),
		TypeName: entry.Name,
		Message:  fmt.Sprintf("%d schema violation(s)", len(violations)),
		Cause:    errors.Join(errs...),
	}
}
