// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	goerrors "errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is wrapped by CheckFileSize failures.
var ErrFileTooLarge = goerrors.New("file too large")

// ValidationError represents a CUE validation error with context.
type ValidationError struct {
	// FilePath is the file (or node path) being validated.
	FilePath string

	// CUEPath is the JSON path to the invalid value (e.g., "shapes[0].radius").
	CUEPath string

	// Message is the validation error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns nil (ValidationError is a leaf error).
func (e *ValidationError) Unwrap() error {
	return nil
}

// Errors splits a CUE error into one ValidationError per underlying error.
// Non-CUE errors produce a single entry without a path.
func Errors(err error, filePath string) []*ValidationError {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return []*ValidationError{{FilePath: filePath, Message: err.Error()}}
	}

	out := make([]*ValidationError, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes includes the path in the message itself
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimPrefix(msg, pathStr)
			msg = strings.TrimPrefix(msg, ":")
			msg = strings.TrimSpace(msg)
		}
		out = append(out, &ValidationError{FilePath: filePath, CUEPath: pathStr, Message: msg})
	}
	return out
}

// FormatError formats a CUE error with JSON path prefixes for clear error messages.
//
// Error format: <file-path>: <json-path>: <message>
//
// Examples:
//   - config.cue: log.level: 3 errors in empty disjunction
//   - shapes.cue: shapes[0].radius: invalid value "x"
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	if len(errors.Errors(err)) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	var lines []string
	for _, v := range Errors(err, filePath) {
		if v.CUEPath != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", v.CUEPath, v.Message))
		} else {
			lines = append(lines, v.Message)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath converts a CUE error path to JSON-path notation for user-facing messages.
// CUE provides error paths as flat string slices (e.g., ["shapes", "0", "radius"]) where
// numeric elements represent array indices; the result is "shapes[0].radius".
func formatPath(path []string) string {
	if len(path) == 0 {
		return ""
	}

	var result strings.Builder
	for i, part := range path {
		isIndex := part != ""
		for _, c := range part {
			if c < '0' || c > '9' {
				isIndex = false
				break
			}
		}

		if isIndex && i > 0 {
			result.WriteString("[")
			result.WriteString(part)
			result.WriteString("]")
		} else {
			if i > 0 {
				result.WriteString(".")
			}
			result.WriteString(part)
		}
	}

	return result.String()
}

// CheckFileSize verifies that data does not exceed the specified maximum size.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes: %w",
			filename, len(data), maxSize, ErrFileTooLarge)
	}
	return nil
}
