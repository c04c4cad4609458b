// SPDX-License-Identifier: MPL-2.0

package rootscan

import "fmt"

const (
	// SeverityWarning indicates a recoverable scan warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal scan error.
	SeverityError Severity = "error"
)

const (
	// CodeRootNotFound reports a root path that does not exist.
	CodeRootNotFound DiagnosticCode = "root_not_found"
	// CodeRootUnreadable reports a root that exists but cannot be opened.
	CodeRootUnreadable DiagnosticCode = "root_unreadable"
	// CodeRootUnsupported reports a root that is neither a directory nor an archive.
	CodeRootUnsupported DiagnosticCode = "root_unsupported"
	// CodeDirectorySkipped reports an unreadable sub-directory.
	CodeDirectorySkipped DiagnosticCode = "directory_skipped"
	// CodeUnitIncompatible reports a unit whose descriptor format is not supported.
	CodeUnitIncompatible DiagnosticCode = "unit_incompatible"
	// CodeUnitUnreadable reports a unit whose descriptor cannot be read.
	CodeUnitUnreadable DiagnosticCode = "unit_unreadable"
	// CodeScanCanceled reports a scan stopped by context cancellation.
	CodeScanCanceled DiagnosticCode = "scan_canceled"
	// CodeInvalidRequest reports a request that cannot match anything.
	CodeInvalidRequest DiagnosticCode = "invalid_request"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// Diagnostic is a structured, non-fatal scan problem returned to callers
	// instead of being written to stderr.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier.
		Code DiagnosticCode
		// Message is the human-readable description.
		Message string
		// Path is the root or entry the diagnostic refers to (optional).
		Path string
		// Cause is the underlying error (optional).
		Cause error
	}

	// Reporter receives diagnostics. A nil Reporter discards them.
	Reporter func(Diagnostic)
)

// String returns the diagnostic as a single line.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	if d.Path != "" {
		s += " (" + d.Path + ")"
	}
	if d.Cause != nil {
		s += ": " + d.Cause.Error()
	}
	return s
}

func (r Reporter) report(sev Severity, code DiagnosticCode, path, msg string, cause error) {
	if r == nil {
		return
	}
	r(Diagnostic{Severity: sev, Code: code, Message: msg, Path: path, Cause: cause})
}

// Collect returns a Reporter that appends to dst.
func Collect(dst *[]Diagnostic) Reporter {
	return func(d Diagnostic) { *dst = append(*dst, d) }
}
