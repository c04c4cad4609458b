// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/cfgbind/config.cue (or the XDG, macOS and
// Windows equivalents), falling back to ./config.cue. It selects the roots searched
// for types, the marker attribute, schema strictness, the document size limit and
// logging. Values may be overridden with CFGBIND_* environment variables.
//
// The file is validated against an embedded CUE schema (config_schema.cue).
package config
