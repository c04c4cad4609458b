// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/cfgbind/cfgbind/pkg/convert"
)

// DefaultDelimiter splits delimited lists: commas with any surrounding
// whitespace, repeated commas counting as one.
var DefaultDelimiter = regexp.MustCompile(`(\s*,\s*)+`)

func compile(expr string) (*xpath.Expr, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidExpression, expr, err)
	}
	return e, nil
}

// Query returns the nodes matching expr, evaluated relative to x.
func (x *XML) Query(expr string) ([]*xmlquery.Node, error) {
	if !x.Defined() {
		return nil, nil
	}
	e, err := compile(expr)
	if err != nil {
		return nil, err
	}
	return xmlquery.QuerySelectorAll(x.node, e), nil
}

// nodes is Query for getters without an error return: an invalid
// expression is logged and matches nothing.
func (x *XML) nodes(expr string) []*xmlquery.Node {
	nodes, err := x.Query(expr)
	if err != nil {
		x.eng().log().Error("ignoring invalid XPath expression", "path", x.Path(), "error", err)
		return nil
	}
	return nodes
}

func (x *XML) first(expr string) *xmlquery.Node {
	if nodes := x.nodes(expr); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// Contains reports whether at least one node matches expr.
func (x *XML) Contains(expr string) bool {
	return x.first(expr) != nil
}

// Lookup returns the string value of the first node matching expr and the
// state it was found in.
func (x *XML) Lookup(expr string) (string, Presence) {
	return nodeValue(x.first(expr))
}

// GetString returns the value at expr, or "" when absent or null.
func (x *XML) GetString(expr string) string {
	s, _ := x.Lookup(expr)
	return s
}

// GetStringOr returns the value at expr, or def when no node matches.
// A self-closing element still reads as "".
func (x *XML) GetStringOr(expr, def string) string {
	s, p := x.Lookup(expr)
	if p == Absent {
		return def
	}
	return s
}

// Get converts the value at expr to T. An absent node yields def and a null
// one the zero value. Blank text converts to the zero value for every type
// but strings.
func Get[T any](x *XML, expr string, def T) (T, error) {
	var zero T
	n := x.first(expr)
	s, p := nodeValue(n)
	switch p {
	case Absent:
		return def, nil
	case Null:
		return zero, nil
	}

	t := reflect.TypeFor[T]()
	if strings.TrimSpace(s) == "" && t.Kind() != reflect.String {
		return zero, nil
	}
	v, err := convert.To[T](s)
	if err != nil {
		return zero, &Error{
			Kind:    KindPopulation,
			Path:    nodePath(n),
			Message: fmt.Sprintf("cannot read %q as %s", s, t),
			Cause:   err,
		}
	}
	return v, nil
}

// getLogged is Get for the typed shortcuts: conversion failures are logged
// and def is returned.
func getLogged[T any](x *XML, expr string, def T) T {
	v, err := Get(x, expr, def)
	if err != nil {
		x.eng().log().Error("invalid configuration value", "expr", expr, "error", err)
		return def
	}
	return v
}

// GetInt reads an int at expr.
func (x *XML) GetInt(expr string, def int) int { return getLogged(x, expr, def) }

// GetInt64 reads an int64 at expr.
func (x *XML) GetInt64(expr string, def int64) int64 { return getLogged(x, expr, def) }

// GetFloat reads a float64 at expr.
func (x *XML) GetFloat(expr string, def float64) float64 { return getLogged(x, expr, def) }

// GetBool reads a bool at expr.
func (x *XML) GetBool(expr string, def bool) bool { return getLogged(x, expr, def) }

// GetDuration reads a duration at expr, such as "1500ms" or "2m".
func (x *XML) GetDuration(expr string, def time.Duration) time.Duration {
	return getLogged(x, expr, def)
}

// GetStringList returns the non-null values of all nodes matching expr.
// Nil is returned when nothing matches.
func (x *XML) GetStringList(expr string) []string {
	return x.GetStringListOr(expr, nil)
}

// GetStringListOr is GetStringList returning def when nothing matches.
// When nodes match but all are null the result is empty, not def.
func (x *XML) GetStringListOr(expr string, def []string) []string {
	nodes := x.nodes(expr)
	if len(nodes) == 0 {
		return def
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s, p := nodeValue(n); p == Present {
			out = append(out, s)
		}
	}
	return out
}

// GetList converts every non-null value matching expr to T.
func GetList[T any](x *XML, expr string, def []T) ([]T, error) {
	nodes := x.nodes(expr)
	if len(nodes) == 0 {
		return def, nil
	}
	return convertAll[T](nodes)
}

func convertAll[T any](nodes []*xmlquery.Node) ([]T, error) {
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		s, p := nodeValue(n)
		if p != Present {
			continue
		}
		v, err := convert.To[T](s)
		if err != nil {
			return nil, &Error{Kind: KindPopulation, Path: nodePath(n), Message: "cannot read list value", Cause: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// GetDelimitedStringList splits the values matching expr on commas.
// Nil is returned when nothing matches.
func (x *XML) GetDelimitedStringList(expr string) []string {
	return x.GetDelimitedStringListOr(expr, nil)
}

// GetDelimitedStringListOr splits the values matching expr on
// DefaultDelimiter. Values are trimmed and blank entries dropped; def is
// returned only when nothing matches.
func (x *XML) GetDelimitedStringListOr(expr string, def []string) []string {
	return x.GetDelimitedStringListSep(expr, DefaultDelimiter, def)
}

// GetDelimitedStringListSep is GetDelimitedStringListOr with a custom
// delimiter pattern.
func (x *XML) GetDelimitedStringListSep(expr string, delim *regexp.Regexp, def []string) []string {
	if !x.Contains(expr) {
		return def
	}
	out := []string{}
	for _, s := range x.GetStringList(expr) {
		out = append(out, SplitDelimited(s, delim)...)
	}
	return out
}

// GetDelimitedList splits the values matching expr and converts each
// piece to T.
func GetDelimitedList[T any](x *XML, expr string, def []T) ([]T, error) {
	if !x.Contains(expr) {
		return def, nil
	}
	pieces := x.GetDelimitedStringList(expr)
	out := make([]T, 0, len(pieces))
	for _, s := range pieces {
		v, err := convert.To[T](s)
		if err != nil {
			return nil, &Error{Kind: KindPopulation, Path: x.Path(), Message: fmt.Sprintf("cannot read %q in list %s", s, expr), Cause: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// SplitDelimited splits s on delim (DefaultDelimiter when nil), trimming
// pieces and dropping blank ones.
func SplitDelimited(s string, delim *regexp.Regexp) []string {
	if delim == nil {
		delim = DefaultDelimiter
	}
	var out []string
	for _, piece := range delim.Split(strings.TrimSpace(s), -1) {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// GetStringMap builds a map from the nodes matching listExpr, reading the
// key and value of each relative to it. Entries with a blank key are
// skipped and def is returned for an empty result.
func (x *XML) GetStringMap(listExpr, keyExpr, valueExpr string, def map[string]string) map[string]string {
	out := map[string]string{}
	for _, item := range x.GetXMLList(listExpr) {
		key := item.GetString(keyExpr)
		if strings.TrimSpace(key) == "" {
			continue
		}
		out[key] = item.GetString(valueExpr)
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// GetXML returns the first element matching expr, or nil.
func (x *XML) GetXML(expr string) *XML {
	for _, n := range x.nodes(expr) {
		if n.Type == xmlquery.ElementNode {
			return x.derive(n)
		}
	}
	return nil
}

// GetXMLList returns every element matching expr. It never returns nil.
func (x *XML) GetXMLList(expr string) []*XML {
	out := []*XML{}
	for _, n := range x.nodes(expr) {
		if n.Type == xmlquery.ElementNode {
			out = append(out, x.derive(n))
		}
	}
	return out
}

// IfXML calls fn with the first element matching expr, if any.
func (x *XML) IfXML(expr string, fn func(*XML) error) error {
	sub := x.GetXML(expr)
	if sub == nil || fn == nil {
		return nil
	}
	return fn(sub)
}

// ParseXML applies parse to the first element matching expr, or returns def.
func ParseXML[T any](x *XML, expr string, parse func(*XML) (T, error), def T) (T, error) {
	if parse == nil {
		return def, errors.New("nil parser")
	}
	sub := x.GetXML(expr)
	if sub == nil {
		return def, nil
	}
	return parse(sub)
}

// ParseXMLList applies parse to every element matching expr. Nil results
// are skipped; def is returned when nothing remains.
func ParseXMLList[T any](x *XML, expr string, parse func(*XML) (T, error), def []T) ([]T, error) {
	if parse == nil {
		return nil, errors.New("nil parser")
	}
	var out []T
	for _, sub := range x.GetXMLList(expr) {
		v, err := parse(sub)
		if err != nil {
			return nil, err
		}
		if !isNil(v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def, nil
	}
	return out, nil
}

// ParseXMLMap applies parse to every element matching expr and collects
// the returned pairs. Parsers signal "skip" with ok=false.
func ParseXMLMap[K comparable, V any](x *XML, expr string, parse func(*XML) (K, V, bool, error), def map[K]V) (map[K]V, error) {
	if parse == nil {
		return nil, errors.New("nil parser")
	}
	out := map[K]V{}
	for _, sub := range x.GetXMLList(expr) {
		k, v, ok, err := parse(sub)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return def, nil
	}
	return out, nil
}

// IsEnabled reports whether the element carries enabled="true".
func (x *XML) IsEnabled() bool { return x.GetBool("@enabled", false) }

// IsDisabled reports whether the element carries disabled="true".
func (x *XML) IsDisabled() bool { return x.GetBool("@disabled", false) }

// CheckDeprecated reports use of a deprecated attribute or element. With
// fail set the report is returned as an error; otherwise it is logged.
func (x *XML) CheckDeprecated(expr, replacement string, fail bool) error {
	if !x.Contains(expr) {
		return nil
	}
	kind := "element"
	if strings.HasPrefix(expr, "@") || strings.Contains(expr, "/@") {
		kind = "attribute"
	}
	msg := fmt.Sprintf("%q %s has been deprecated", expr, kind)
	if replacement != "" {
		msg += " in favor of: " + replacement
	}
	msg += ". Update your XML configuration accordingly."
	if fail {
		return errors.New(msg)
	}
	x.eng().log().Warn(msg, "path", x.Path())
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
