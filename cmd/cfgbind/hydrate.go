// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfgbind/cfgbind/internal/docload"
	"github.com/cfgbind/cfgbind/internal/issue"
	"github.com/cfgbind/cfgbind/internal/watch"
	"github.com/cfgbind/cfgbind/pkg/typereg"
	"github.com/cfgbind/cfgbind/pkg/xmlconf"
)

type hydrateOptions struct {
	path       string
	capability string
	format     string
	lenient    bool
	watch      bool
}

func newHydrateCommand(app *App, opts *rootOptions) *cobra.Command {
	hopts := &hydrateOptions{}

	cmd := &cobra.Command{
		Use:   "hydrate <document>",
		Short: "Build the object declared by a document node",
		Long: `Build the object declared by a document node and print it back.

The node at --path (the document root by default) names its type in the
marker attribute ("class" unless configured otherwise). With --capability
the name may be a unique suffix of a type providing that capability.
The populated object is written to stdout in the requested format.

Documents may be XML, TOML, CUE or JSON, chosen by file extension.

With --watch the document and every existing root are watched and the
node is hydrated again after each change until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wrapServiceError(runHydrate(cmd, app, opts, hopts, args[0]))
		},
	}
	cmd.Flags().StringVar(&hopts.path, "path", "", "XPath of the node to hydrate (default: document root)")
	cmd.Flags().StringVar(&hopts.capability, "capability", "", "capability the type must provide; enables partial names")
	cmd.Flags().StringVar(&hopts.format, "format", string(docload.FormatXML), "output format: xml, toml or json")
	cmd.Flags().BoolVar(&hopts.lenient, "lenient", false, "log schema violations instead of failing")
	cmd.Flags().BoolVarP(&hopts.watch, "watch", "w", false, "hydrate again whenever the document or a root changes")
	return cmd
}

func runHydrate(cmd *cobra.Command, app *App, opts *rootOptions, hopts *hydrateOptions, path string) error {
	format, err := docload.ParseFormat(hopts.format)
	if err != nil {
		return err
	}
	if format == docload.FormatCUE {
		return fmt.Errorf("cue output: %w", docload.ErrUnsupportedFormat)
	}

	ctx := cmd.Context()
	s, err := app.newSession(ctx, opts)
	if err != nil {
		return err
	}
	if !hopts.watch {
		return hydrateOnce(ctx, app, s, hopts, path, format)
	}
	return watchHydrate(ctx, app, s, hopts, path, format)
}

// hydrateOnce builds the selected node and writes it to stdout.
func hydrateOnce(ctx context.Context, app *App, s *session, hopts *hydrateOptions, path string, format docload.Format) error {
	eng := s.engine(hopts.lenient)

	node, err := selectNode(ctx, eng, path, hopts.path, s.cfg.MaxDocumentSize)
	if err != nil {
		return err
	}

	obj, err := node.Hydrate(typereg.Capability(hopts.capability), nil, true)
	if err != nil {
		return err
	}
	if obj == nil {
		return unresolvedNodeError(eng, node)
	}
	s.logger.Debug("object hydrated", "path", node.Path(), "type", fmt.Sprintf("%T", obj))

	out, err := eng.FromObject(node.Name(), obj)
	if err != nil {
		return err
	}
	data, err := docload.Encode(out, format)
	if err != nil {
		return err
	}
	_, err = app.stdout.Write(data)
	return err
}

// watchHydrate hydrates once, then again after every change to the document
// or a root, until ctx is cancelled. Hydration failures are reported and
// the watch continues.
func watchHydrate(ctx context.Context, app *App, s *session, hopts *hydrateOptions, path string, format docload.Format) error {
	report := func(err error) {
		if err == nil {
			return
		}
		fmt.Fprintln(app.stderr, ErrorStyle.Render("hydrate failed: "+err.Error()))
		if svcErr, ok := wrapServiceError(err).(*ServiceError); ok {
			renderServiceError(app.stderr, svcErr)
		}
	}

	paths := []string{path}
	for _, root := range s.roots {
		if _, err := os.Stat(root); err == nil {
			paths = append(paths, root)
		}
	}

	w, err := watch.New(watch.Config{
		Paths:  paths,
		Logger: s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Info("change detected", "paths", changed)
			report(hydrateOnce(ctx, app, s, hopts, path, format))
			return nil
		},
	})
	if err != nil {
		return err
	}

	report(hydrateOnce(ctx, app, s, hopts, path, format))
	fmt.Fprintln(app.stderr, SubtitleStyle.Render(fmt.Sprintf("watching %d path(s); press Ctrl+C to stop", len(paths))))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// selectNode loads the document and returns the element at expr, or the
// root element when expr is empty.
func selectNode(ctx context.Context, eng *xmlconf.Engine, path, expr string, maxSize int64) (*xmlconf.XML, error) {
	doc, err := docload.Load(eng, path, maxSize)
	if err != nil {
		return nil, err
	}
	doc = doc.WithContext(ctx)
	if strings.TrimSpace(expr) == "" {
		return doc, nil
	}
	if _, err := doc.Query(expr); err != nil {
		return nil, err
	}
	node := doc.GetXML(expr)
	if node == nil {
		return nil, issue.NewErrorContext().
			WithOperation("select node").
			WithResource(path).
			WithSuggestions(
				"Check the --path expression; it is evaluated from the document root",
				"Use an absolute path such as /"+doc.Name()+"/child",
			).
			Wrap(fmt.Errorf("no element matches %q", expr)).
			BuildError()
	}
	return node, nil
}

// unresolvedNodeError explains why hydration produced no object: the node
// either declares no type or names a partial type nothing matches.
func unresolvedNodeError(eng *xmlconf.Engine, node *xmlconf.XML) error {
	marker := node.GetString("@" + eng.MarkerAttribute())
	if strings.TrimSpace(marker) == "" {
		return issue.NewErrorContext().
			WithOperation("hydrate node").
			WithResource(node.Path()).
			WithSuggestion(fmt.Sprintf("Add a %s attribute naming the type to build", eng.MarkerAttribute())).
			WithIssue(issue.TypeNotFoundId).
			Wrap(fmt.Errorf("node %s declares no type", node.Path())).
			BuildError()
	}
	return &xmlconf.Error{
		Kind:     xmlconf.KindNotFound,
		Path:     node.Path(),
		TypeName: typereg.TypeName(marker),
		Message:  "no concrete type matches the partial name",
	}
}
