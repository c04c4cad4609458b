// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Compile compiles data and, when schema is non-nil, unifies it with the
// definition at schemaPath and validates the result.
//
// Parameters:
//   - schema: CUE schema bytes (may be nil)
//   - data: user-provided CUE bytes
//   - schemaPath: path of the root definition (e.g. "#Config")
func Compile(schema, data []byte, schemaPath string, opts ...Option) (cue.Value, error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()

	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), options.filename)
	}

	unified := userValue
	if schema != nil {
		root, err := lookupDefinition(ctx.CompileBytes(schema), schemaPath)
		if err != nil {
			return cue.Value{}, err
		}
		unified = root.Unify(userValue)
	}

	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return cue.Value{}, FormatError(err, options.filename)
	}
	return unified, nil
}

// DecodeMap compiles data (optionally against a schema) and decodes it into
// a plain Go map.
func DecodeMap(schema, data []byte, schemaPath string, opts ...Option) (map[string]any, error) {
	value, err := Compile(schema, data, schemaPath, opts...)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := value.Decode(&out); err != nil {
		return nil, FormatError(err, applyOptions(opts).filename)
	}
	return out, nil
}

// ValidateValue checks a Go value (typically a map decoded from a document
// node) against the definition at schemaPath.
//
// Schema violations are returned as a list; the error return is reserved
// for schemas that cannot be compiled or lack the definition.
func ValidateValue(schema []byte, schemaPath string, value any, opts ...Option) ([]*ValidationError, error) {
	options := applyOptions(opts)
	ctx := cuecontext.New()

	root, err := lookupDefinition(ctx.CompileBytes(schema), schemaPath)
	if err != nil {
		return nil, err
	}

	encoded := ctx.Encode(value)
	if encoded.Err() != nil {
		return nil, fmt.Errorf("encode value for validation: %w", encoded.Err())
	}

	if err := root.Unify(encoded).Validate(cue.Concrete(options.concrete)); err != nil {
		return Errors(err, options.filename), nil
	}
	return nil, nil
}

func lookupDefinition(schemaValue cue.Value, schemaPath string) (cue.Value, error) {
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	root := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if root.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, root.Err())
	}
	if !root.Exists() {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found", schemaPath)
	}
	return root, nil
}
