// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DocumentNotFoundId Id = iota + 1
	DocumentParseErrorId
	TypeNotFoundId
	AmbiguousTypeId
	TypeMismatchId
	InstantiationFailedId
	PopulationFailedId
	SchemaViolationId
	RootUnreadableId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	title    string      // one-line summary shown in listings
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Title() string {
	return i.title
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	documentNotFoundIssue = &Issue{
		id:    DocumentNotFoundId,
		title: "Document not found",
		mdMsg: `
# Document not found!

The configuration document could not be opened.

## Things you can try:
- Check the path for typos; relative paths resolve from the current directory
- Supported extensions are ` + "`.xml`, `.toml`, `.cue` and `.json`" + `
~~~
$ cfgbind hydrate ./service.xml
~~~`,
	}

	documentParseErrorIssue = &Issue{
		id:    DocumentParseErrorId,
		title: "Failed to parse document",
		mdMsg: `
# Failed to parse document!

The document is not well formed or is larger than the configured limit.

## Things you can try:
- Check the error message above for the line and column
- Raise the limit in your config file if the document is legitimately large:
~~~cue
max_document_size: 20971520
~~~`,
	}

	typeNotFoundIssue = &Issue{
		id:    TypeNotFoundId,
		title: "Type not found",
		mdMsg: `
# Type not found!

An element declares a type that is not registered.

## Things you can try:
- List the registered types:
~~~
$ cfgbind types
~~~

- Use the fully qualified name in the ` + "`class`" + ` attribute
- When a short name is intended, pass the capability it should implement:
~~~
$ cfgbind hydrate service.xml --capability cfgbind.convert.Converter
~~~`,
	}

	ambiguousTypeIssue = &Issue{
		id:    AmbiguousTypeId,
		title: "Ambiguous type name",
		mdMsg: `
# Ambiguous type name!

A partial type name matched more than one implementation.

## Things you can try:
- See which types provide the capability:
~~~
$ cfgbind find <capability> --suffix <name>
~~~

- Use a longer suffix or the fully qualified name`,
	}

	typeMismatchIssue = &Issue{
		id:    TypeMismatchId,
		title: "Type does not provide the capability",
		mdMsg: `
# Type mismatch!

The declared type exists but does not provide the capability the
configuration position requires.

## Things you can try:
- Check the capabilities of the type:
~~~
$ cfgbind types
~~~

- Pick an implementation of the expected capability`,
	}

	instantiationFailedIssue = &Issue{
		id:    InstantiationFailedId,
		title: "Type could not be instantiated",
		mdMsg: `
# Type could not be instantiated!

The declared type is abstract, an interface, or its constructor failed.

## Things you can try:
- Declare a concrete implementation instead
- Run with ` + "`--verbose`" + ` to see the constructor error`,
	}

	populationFailedIssue = &Issue{
		id:    PopulationFailedId,
		title: "Object could not be populated",
		mdMsg: `
# Object could not be populated!

A value in the element could not be converted to the field it targets.

## Things you can try:
- Check the node path in the error message
- Durations use Go syntax such as ` + "`1m30s`" + `; booleans are ` + "`true`/`false`",
	}

	schemaViolationIssue = &Issue{
		id:    SchemaViolationId,
		title: "Schema violation",
		mdMsg: `
# Schema violation!

The element does not satisfy the CUE schema registered for its type.

## Things you can try:
- Validate the document without hydrating it:
~~~
$ cfgbind validate service.xml --type <type>
~~~

- Turn strict checking off to only log violations:
~~~cue
strict_schema: false
~~~`,
	}

	rootUnreadableIssue = &Issue{
		id:    RootUnreadableId,
		title: "Root could not be read",
		mdMsg: `
# Root could not be read!

A configured root is neither a readable directory nor a ` + "`.zip`" + ` archive.
Unreadable roots contribute no types.

## Things you can try:
- Inspect what each root provides:
~~~
$ cfgbind scan ./plugins ./vendor.zip
~~~

- Fix the ` + "`roots`" + ` list in your config file`,
	}

	configLoadFailedIssue = &Issue{
		id:    ConfigLoadFailedId,
		title: "Failed to load configuration",
		mdMsg: `
# Failed to load configuration!

The configuration file exists but could not be loaded.

## Things you can try:
- Check the file syntax against the generated defaults:
~~~
$ cfgbind config init --print
~~~

- Show the effective configuration:
~~~
$ cfgbind config show
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id:    PermissionDeniedId,
		title: "Permission denied",
		mdMsg: `
# Permission denied!

A document, root or export destination is not accessible.

## Things you can try:
- Check file permissions:
~~~
$ ls -la <path>
~~~

- Export to a directory you own`,
	}

	issues = map[Id]*Issue{
		documentNotFoundIssue.Id():    documentNotFoundIssue,
		documentParseErrorIssue.Id():  documentParseErrorIssue,
		typeNotFoundIssue.Id():        typeNotFoundIssue,
		ambiguousTypeIssue.Id():       ambiguousTypeIssue,
		typeMismatchIssue.Id():        typeMismatchIssue,
		instantiationFailedIssue.Id(): instantiationFailedIssue,
		populationFailedIssue.Id():    populationFailedIssue,
		schemaViolationIssue.Id():     schemaViolationIssue,
		rootUnreadableIssue.Id():      rootUnreadableIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
	}
)

// Values returns all issues ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
