// SPDX-License-Identifier: MPL-2.0

// Package typefind finds the concrete types that provide a capability.
//
// A Finder scans its loadable roots for candidate names, filters them with an
// optional name predicate, then loads each survivor: the unit descriptor is
// decoded and the name is looked up in the type registry. Only concrete
// types registered with the requested capability are returned.
//
// Finding never fails. Unreadable roots, incompatible units and unknown
// names are skipped, logged and reported as diagnostics on the Result.
package typefind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/cfgbind/cfgbind/pkg/rootscan"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

type (
	// Predicate decides from the candidate name alone whether a candidate is
	// worth loading.
	Predicate func(name string) bool

	// Finder resolves capabilities to concrete type names.
	Finder struct {
		registry *typereg.Registry
		roots    []string
		logger   *slog.Logger
	}

	// Option configures a Finder.
	Option func(*Finder)

	// FindOption configures a single Find call.
	FindOption func(*request)

	// Result holds the names found and the diagnostics produced on the way.
	Result struct {
		// Names is sorted and free of duplicates.
		Names []string
		// Diagnostics lists every non-fatal problem met while scanning.
		Diagnostics []rootscan.Diagnostic
	}

	request struct {
		roots  []string
		accept Predicate
	}
)

// WithLogger sets the logger used for skipped candidates and unusable roots.
func WithLogger(l *slog.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// InRoots replaces the finder's roots for one call.
func InRoots(roots ...string) FindOption {
	return func(r *request) { r.roots = roots }
}

// Accept sets the name predicate for one call.
func Accept(p Predicate) FindOption {
	return func(r *request) { r.accept = p }
}

// HasSuffix accepts names ending with suffix. The comparison is a raw string
// suffix test, so "Circle" also accepts "com.example.RedCircle".
func HasSuffix(suffix string) Predicate {
	return func(name string) bool { return strings.HasSuffix(name, suffix) }
}

// New creates a Finder over the given roots. Roots are scanned in order;
// duplicates are detected per call.
func New(reg *typereg.Registry, roots []string, opts ...Option) *Finder {
	f := &Finder{
		registry: reg,
		roots:    slices.Clone(roots),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Roots returns a copy of the configured roots.
func (f *Finder) Roots() []string {
	return slices.Clone(f.roots)
}

// Find returns the names of the concrete types providing capability.
func (f *Finder) Find(ctx context.Context, capability typereg.Capability, opts ...FindOption) *Result {
	req := request{roots: f.roots}
	for _, opt := range opts {
		opt(&req)
	}

	res := &Result{}
	report := rootscan.Collect(&res.Diagnostics)

	if strings.TrimSpace(string(capability)) == "" {
		report(rootscan.Diagnostic{
			Severity: rootscan.SeverityWarning,
			Code:     rootscan.CodeInvalidRequest,
			Message:  "capability cannot be empty",
		})
		return res
	}
	if f.registry == nil {
		report(rootscan.Diagnostic{
			Severity: rootscan.SeverityError,
			Code:     rootscan.CodeInvalidRequest,
			Message:  "finder has no type registry",
		})
		return res
	}
	if len(req.roots) == 0 {
		f.logger.Warn("no loadable roots to search", "capability", capability)
		report(rootscan.Diagnostic{
			Severity: rootscan.SeverityWarning,
			Code:     rootscan.CodeInvalidRequest,
			Message:  "no loadable roots configured",
		})
		return res
	}

	found := make(map[string]struct{})
	seenRoots := make(map[string]struct{})

	for _, root := range req.roots {
		key := root
		if canonical, err := rootscan.Canonical(root); err == nil {
			key = canonical
		}
		if _, dup := seenRoots[key]; dup {
			continue
		}
		seenRoots[key] = struct{}{}

		for c := range rootscan.Scan(root, f.logged(report)) {
			if err := ctx.Err(); err != nil {
				report(rootscan.Diagnostic{
					Severity: rootscan.SeverityWarning,
					Code:     rootscan.CodeScanCanceled,
					Message:  "scan canceled",
					Path:     root,
					Cause:    err,
				})
				return res.finish(found)
			}
			if _, done := found[c.Name]; done {
				continue
			}
			if req.accept != nil && !req.accept(c.Name) {
				continue
			}
			if f.matches(c, capability, report) {
				found[c.Name] = struct{}{}
			}
		}
	}

	return res.finish(found)
}

// logged forwards scan diagnostics to report after logging them.
func (f *Finder) logged(report rootscan.Reporter) rootscan.Reporter {
	return func(d rootscan.Diagnostic) {
		f.logger.Warn("root scan problem", "code", d.Code, "path", d.Path, "detail", d.Message, "error", d.Cause)
		report(d)
	}
}

// FindSubTypes returns the names of the concrete types providing capability
// and accepted by accept.
func (f *Finder) FindSubTypes(ctx context.Context, capability typereg.Capability, accept Predicate) []string {
	return f.Find(ctx, capability, Accept(accept)).Names
}

// matches is the load step: decode the unit, resolve it in the registry and
// test kind and capability.
func (f *Finder) matches(c rootscan.Candidate, capability typereg.Capability, report rootscan.Reporter) bool {
	if _, err := rootscan.ReadCandidate(c); err != nil {
		if errors.Is(err, rootscan.ErrIncompatibleFormat) {
			f.logger.Error("unit has an unsupported format", "type", c.Name, "root", c.Root, "error", err)
			report(rootscan.Diagnostic{
				Severity: rootscan.SeverityError,
				Code:     rootscan.CodeUnitIncompatible,
				Message:  fmt.Sprintf("unit %s skipped", c.Name),
				Path:     c.Root,
				Cause:    err,
			})
			return false
		}
		f.logger.Error("unit cannot be read", "type", c.Name, "root", c.Root, "error", err)
		report(rootscan.Diagnostic{
			Severity: rootscan.SeverityError,
			Code:     rootscan.CodeUnitUnreadable,
			Message:  fmt.Sprintf("unit %s skipped", c.Name),
			Path:     c.Root,
			Cause:    err,
		})
		return false
	}

	e, err := f.registry.Lookup(typereg.TypeName(c.Name))
	if err != nil {
		f.logger.Debug("unit has no registered type", "type", c.Name, "root", c.Root)
		return false
	}
	return e.Kind == typereg.KindConcrete && e.Concrete() && e.Has(capability)
}

func (r *Result) finish(found map[string]struct{}) *Result {
	r.Names = make([]string, 0, len(found))
	for name := range found {
		r.Names = append(r.Names, name)
	}
	slices.Sort(r.Names)
	return r
}

// Len returns the number of names found.
func (r *Result) Len() int { return len(r.Names) }

// Contains reports whether name was found.
func (r *Result) Contains(name string) bool {
	_, ok := slices.BinarySearch(r.Names, name)
	return ok
}
