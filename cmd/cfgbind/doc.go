// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cfgbind command-line interface.
//
// Commands are built by NewRootCommand around an App, which carries the
// configuration provider, the registrar of built-in types and the output
// streams. Each command loads configuration into a session that owns the
// logger, the type registry and the finder used for partial type names.
// Failures are returned as ServiceError values naming the issue catalog
// entry that explains them.
package cmd
