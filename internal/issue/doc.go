// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Errors may link to an entry of the Markdown issue
// catalog, which the CLI renders with glamour.
package issue
