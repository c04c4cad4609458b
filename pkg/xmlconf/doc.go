// SPDX-License-Identifier: MPL-2.0

// Package xmlconf is a query facade over XML configuration documents that
// also hydrates typed objects from them.
//
// An *XML wraps one element node. Values are read with XPath expressions
// (GetString, Get, GetStringList, GetDelimitedStringList, GetStringMap...)
// and documents are edited in place (AddElement, SetAttribute, Wrap...).
//
// Hydration reads the type name declared in a node's marker attribute
// ("class" by default), resolves it against a typereg.Registry, creates a
// fresh instance and populates it from the node. A marker that is not a
// registered name may be a partial one: when a capability is known, the
// engine's TypeFinder is asked for the concrete types providing it whose
// names end with the marker, and exactly one must match.
//
// Three node states are kept apart throughout the package:
//
//	absent         no node matches the expression; defaults apply
//	self-closing   <tag/>, reads as a null value
//	empty          <tag></tag>, reads as the empty string
package xmlconf
