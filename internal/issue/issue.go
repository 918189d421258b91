// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	NoneId Id = iota
	FileNotFoundId
	ConfigLoadFailedId
	UnsupportedDialectId
	SourceSyntaxErrorId
	NoSourceFilesId
	TypeMismatchId
	InvalidValueLiteralId
	RecursionLimitId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // reference documentation for the failure
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
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
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	dialectLinks = []HttpLink{
		"https://peps.python.org/pep-0257/",
		"https://epydoc.sourceforge.net/manual-epytext.html",
		"https://docutils.sourceforge.io/rst.html",
		"https://google.github.io/styleguide/pyguide.html",
	}

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found

doclog could not open a file named on the command line.

## Things you can try:
- Check the path for typos
- Paths are relative to the current directory, not to the config file`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file is not valid CUE or does not match the schema.

## Search locations (in order of precedence):
1. The file given with ` + "`--config`" + `
2. ` + "`config.cue`" + ` in the user config directory
3. ` + "`doclog.cue`" + ` in the current directory

## Things you can try:
- Print the effective configuration:
~~~
$ doclog config show
~~~
- Check DOCLOG_* environment variables, which override the file

## Example configuration:
~~~cue
dialect: "google"
mode:    "passive"
include: ["src/**/*.py"]
exclude: ["src/vendor/**"]
~~~`,
	}

	unsupportedDialectIssue = &Issue{
		id: UnsupportedDialectId,
		mdMsg: `
# Unsupported comment dialect

doclog understands four docstring dialects:

| dialect | sections look like |
|---|---|
| pep257 | ` + "`Arguments:` / `i -- the first number`" + ` |
| epytext | ` + "`@param i: ...` / `@type i: int`" + ` |
| rest | ` + "`:param i: ...` / `:type i: int`" + ` |
| google | ` + "`Args:` / `i (int): ...`" + ` |

## Things you can try:
- List the dialects with examples:
~~~
$ doclog dialects
~~~
- Set the dialect with ` + "`--dialect`" + ` or the ` + "`dialect`" + ` config key`,
		docLinks: dialectLinks,
	}

	sourceSyntaxErrorIssue = &Issue{
		id: SourceSyntaxErrorId,
		mdMsg: `
# Python syntax error

A source file could not be parsed completely. Functions before the error
were still checked; the rest of the file was skipped.

## Things you can try:
- Run the file through the interpreter to see the full error:
~~~
$ python -m py_compile path/to/file.py
~~~
- Exclude generated or vendored files with the ` + "`exclude`" + ` config key`,
	}

	noSourceFilesIssue = &Issue{
		id: NoSourceFilesId,
		mdMsg: `
# No source files matched

None of the include patterns matched a file under the checked directory.

## Things you can try:
- Patterns use doublestar syntax and are relative to the checked directory,
  e.g. ` + "`**/*.py`" + ` or ` + "`src/**/*.py`" + `
- Check that the exclude patterns do not remove everything`,
		extLinks: []HttpLink{"https://github.com/bmatcuk/doublestar#patterns"},
	}

	typeMismatchIssue = &Issue{
		id: TypeMismatchId,
		mdMsg: `
# Value was not of the documented type

A value did not match the type declared in the routine's comment (or its
signature annotation when the comment declares none).

## Things you can try:
- Fix the caller, or fix the comment if the documentation is stale
- Containers are checked element by element: ` + "`list[int]`" + ` rejects
  a list holding a ` + "`str`" + `
- ` + "`Any`" + ` and ` + "`object`" + ` accept every value`,
		docLinks: dialectLinks,
	}

	invalidValueLiteralIssue = &Issue{
		id: InvalidValueLiteralId,
		mdMsg: `
# Invalid value literal

Values are written as YAML (JSON works too).

## Examples:
~~~
1            int
2.5          float
"text"       str
[1, 2]       list
!tuple [1, "a"]
!set [1, 2]
{"a": 1}     dict
null         None
!Point {}    object of class Point
~~~`,
	}

	recursionLimitIssue = &Issue{
		id: RecursionLimitId,
		mdMsg: `
# Nesting limit reached

A type expression or value was nested deeper than the configured
` + "`max_depth`" + `. The check was aborted for that parameter only.

## Things you can try:
- Raise the limit:
~~~
$ doclog check --max-depth 256
~~~
- Self-referencing values cannot be checked to the end; the limit stops them`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():        fileNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		unsupportedDialectIssue.Id():  unsupportedDialectIssue,
		sourceSyntaxErrorIssue.Id():   sourceSyntaxErrorIssue,
		noSourceFilesIssue.Id():       noSourceFilesIssue,
		typeMismatchIssue.Id():        typeMismatchIssue,
		invalidValueLiteralIssue.Id(): invalidValueLiteralIssue,
		recursionLimitIssue.Id():      recursionLimitIssue,
	}
)

// Values returns every catalog entry ordered by Id.
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
