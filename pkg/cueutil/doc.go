// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE utilities.
//
// It covers the three places CUE is used: decoding CUE files into plain maps
// (configuration and .cue documents), validating decoded document nodes
// against the schema attached to a registered type, and formatting CUE
// errors with JSON-path prefixes:
//
//	m, err := cueutil.DecodeMap(schemaBytes, data, "#Config",
//	    cueutil.WithFilename("config.cue"),
//	    cueutil.WithConcrete(false),
//	)
//
//	violations, err := cueutil.ValidateValue(schemaBytes, "#Circle", nodeMap)
//
// Document nodes carry text, so schemas used for validation constrain
// strings (for example radius: =~"^[0-9]+$").
package cueutil
