// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfgbind/cfgbind/internal/issue"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

func newValidateCommand(app *App, opts *rootOptions) *cobra.Command {
	var path, typeName string

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Check a document node against its type's schema",
		Long: `Check a document node against the schema of a registered type.

The type is taken from --type or from the node's marker attribute and
must be a full type name. Types without a schema always validate.
Violations are listed and the command exits with status 2.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wrapServiceError(runValidate(cmd, app, opts, args[0], path, typeName))
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "XPath of the node to check (default: document root)")
	cmd.Flags().StringVar(&typeName, "type", "", "type whose schema applies (default: the node's marker attribute)")
	return cmd
}

func runValidate(cmd *cobra.Command, app *App, opts *rootOptions, doc, expr, typeName string) error {
	s, err := app.newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	eng := s.engine(false)

	node, err := selectNode(cmd.Context(), eng, doc, expr, s.cfg.MaxDocumentSize)
	if err != nil {
		return err
	}
	if typeName == "" {
		typeName = strings.TrimSpace(node.GetString("@" + eng.MarkerAttribute()))
	}
	if typeName == "" {
		return issue.NewErrorContext().
			WithOperation("validate node").
			WithResource(node.Path()).
			WithSuggestion("Pass --type with a full type name").
			WithSuggestion(fmt.Sprintf("Or add a %s attribute to the node", eng.MarkerAttribute())).
			WithIssue(issue.TypeNotFoundId).
			Wrap(fmt.Errorf("node %s declares no type", node.Path())).
			BuildError()
	}

	name := typereg.TypeName(typeName)
	entry, err := s.registry.Lookup(name)
	if err != nil {
		return err
	}
	violations, err := node.Validate(name)
	if err != nil {
		return err
	}

	if entry.Schema == nil {
		fmt.Fprintf(app.stdout, "%s %s has no schema; %s accepted\n",
			SuccessStyle.Render("✓"), TypeStyle.Render(typeName), node.Path())
		return nil
	}
	if len(violations) == 0 {
		fmt.Fprintf(app.stdout, "%s %s matches %s\n",
			SuccessStyle.Render("✓"), node.Path(), TypeStyle.Render(entry.Schema.Definition))
		return nil
	}

	fmt.Fprintf(app.stdout, "%s %s does not match %s\n",
		ErrorStyle.Render("✗"), node.Path(), TypeStyle.Render(entry.Schema.Definition))
	for _, v := range violations {
		fmt.Fprintln(app.stdout, "  "+v.Error())
	}
	return &ExitError{Code: ExitInvalid}
}
