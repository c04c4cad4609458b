// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/cfgbind/cfgbind/internal/issue"
	"github.com/cfgbind/cfgbind/pkg/cueutil"
	"github.com/cfgbind/cfgbind/pkg/typereg"
	"github.com/cfgbind/cfgbind/pkg/xmlconf"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// wrapServiceError classifies err and attaches the suggestions of an
// actionable error as the styled message. nil stays nil.
func wrapServiceError(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return err
	}

	styled := ""
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.HasSuggestions() {
		styled = ae.Format(false) + "\n"
	}
	return newServiceError(err, issueFor(err), styled)
}

// issueFor maps an error to the catalog entry explaining it, or 0.
func issueFor(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}

	switch xmlconf.KindOf(err) {
	case xmlconf.KindNotFound:
		return issue.TypeNotFoundId
	case xmlconf.KindAmbiguousMatch:
		return issue.AmbiguousTypeId
	case xmlconf.KindTypeMismatch:
		return issue.TypeMismatchId
	case xmlconf.KindInstantiation:
		return issue.InstantiationFailedId
	case xmlconf.KindPopulation:
		return issue.PopulationFailedId
	case xmlconf.KindSchema:
		return issue.SchemaViolationId
	case xmlconf.KindMalformed:
		return issue.DocumentParseErrorId
	}

	switch {
	case errors.Is(err, typereg.ErrNotFound):
		return issue.TypeNotFoundId
	case errors.Is(err, cueutil.ErrFileTooLarge):
		return issue.DocumentParseErrorId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, fs.ErrNotExist):
		return issue.DocumentNotFoundId
	}
	return 0
}

// renderServiceError prints any styled message first, then the optional
// issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
