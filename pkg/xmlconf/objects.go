// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"fmt"
	"reflect"

	"github.com/cfgbind/cfgbind/pkg/typereg"
)

// ToObject hydrates the element as a T. The marker must hold a fully
// qualified type name.
func ToObject[T any](x *XML, def T) (T, error) {
	return ToObjectImpl(x, "", def)
}

// ToObjectImpl hydrates the element as a T providing capability, accepting
// partial type names.
func ToObjectImpl[T any](x *XML, capability typereg.Capability, def T) (T, error) {
	obj, err := x.Hydrate(capability, def, true)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](x, obj)
}

// GetObject hydrates the first element matching expr. No match yields def.
func GetObject[T any](x *XML, expr string, def T) (T, error) {
	return GetObjectImpl(x, "", expr, def)
}

// GetObjectImpl is GetObject with partial type names resolved against
// capability.
func GetObjectImpl[T any](x *XML, capability typereg.Capability, expr string, def T) (T, error) {
	sub := x.GetXML(expr)
	if sub == nil {
		return def, nil
	}
	return ToObjectImpl(sub, capability, def)
}

// GetObjectOr is GetObject in default mode: failures are logged and def is
// returned.
func GetObjectOr[T any](x *XML, expr string, def T) T {
	return GetObjectImplOr(x, "", expr, def)
}

// GetObjectImplOr is GetObjectImpl in default mode.
func GetObjectImplOr[T any](x *XML, capability typereg.Capability, expr string, def T) T {
	sub := x.GetXML(expr)
	if sub == nil {
		return def
	}
	obj, _ := sub.Hydrate(capability, def, false) // never fails in default mode
	v, err := as[T](sub, obj)
	if err != nil {
		sub.logFailure(err)
		return def
	}
	return v
}

// GetObjectList hydrates every element matching expr.
//
// When nothing matches, def is returned. When elements match, the result
// holds the non-nil objects only and may be empty, even if def is not.
func GetObjectList[T any](x *XML, expr string, def []T) ([]T, error) {
	return GetObjectListImpl(x, "", expr, def)
}

// GetObjectListImpl is GetObjectList with partial type names resolved
// against capability.
func GetObjectListImpl[T any](x *XML, capability typereg.Capability, expr string, def []T) ([]T, error) {
	subs := x.GetXMLList(expr)
	if len(subs) == 0 {
		return def, nil
	}
	out := make([]T, 0, len(subs))
	for _, sub := range subs {
		obj, err := sub.Hydrate(capability, nil, true)
		if err != nil {
			return nil, err
		}
		if isNil(obj) {
			continue
		}
		v, err := as[T](sub, obj)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// GetObjectMap hydrates a map: for each element matching listExpr the key is
// read at keyExpr and the value hydrated from the first element matching
// valueExpr, both relative to it. Entries with a blank key or a nil value
// are skipped; an empty result yields def.
func GetObjectMap[V any](x *XML, capability typereg.Capability, listExpr, keyExpr, valueExpr string, def map[string]V) (map[string]V, error) {
	out := map[string]V{}
	for _, item := range x.GetXMLList(listExpr) {
		key := item.GetString(keyExpr)
		if key == "" {
			continue
		}
		v, err := GetObjectImpl(item, capability, valueExpr, *new(V))
		if err != nil {
			return nil, err
		}
		if isNil(v) {
			continue
		}
		out[key] = v
	}
	if len(out) == 0 {
		return def, nil
	}
	return out, nil
}

// as converts a hydration result to T. Nil converts to the zero value.
func as[T any](x *XML, obj any) (T, error) {
	var zero T
	if obj == nil {
		return zero, nil
	}
	v, ok := obj.(T)
	if !ok {
		return zero, &Error{
			Kind:    KindTypeMismatch,
			Path:    x.Path(),
			Message: fmt.Sprintf("%T is not a %s", obj, reflect.TypeFor[T]()),
		}
	}
	return v, nil
}
