// SPDX-License-Identifier: MPL-2.0

// Package rootscan enumerates candidate type names inside loadable roots.
//
// A loadable root is either a directory tree or a .zip archive containing
// unit files. Every file whose name ends with ".unit" is a candidate; its
// path relative to the root, with separators turned into dots and the
// suffix removed, is the candidate type name:
//
//	com/example/Circle.unit  ->  com.example.Circle
//
// Nested units (names containing "$") and the module descriptor
// (module-info.unit) are never candidates.
//
// Scanning never fails: unreadable or unsupported roots produce an empty
// sequence and a Diagnostic delivered to the caller's Reporter.
package rootscan
