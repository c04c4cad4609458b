// SPDX-License-Identifier: MPL-2.0

// Package typereg is the explicit type registry that backs type resolution.
//
// Every type that may be named inside a configuration document is registered
// here with its fully-qualified name, its kind (concrete, abstract or
// interface), the set of capabilities it provides, the population strategy
// used to fill it from a document, and a factory that produces fresh
// instances. Lookups are by exact name; capability checks are plain set
// membership, so a type "implements" a capability only if it was registered
// with it.
package typereg
