// SPDX-License-Identifier: MPL-2.0

package docstring

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Dialect identifies a comment grammar.
type Dialect string

const (
	DialectPEP257  Dialect = "pep257"
	DialectEpytext Dialect = "epytext"
	DialectReST    Dialect = "rest"
	DialectGoogle  Dialect = "google"
)

// ErrUnsupportedDialect is the sentinel error wrapped by DialectError.
var ErrUnsupportedDialect = errors.New("unsupported dialect")

type (
	// DialectError is returned when a dialect identifier is not one of the
	// supported grammars.
	DialectError struct {
		Requested string
		// Suggestion is the closest supported dialect, if any looks similar.
		Suggestion Dialect
	}

	// Grammar holds the three rules that distinguish one dialect from
	// another. The state machine in Parse never special-cases a dialect.
	Grammar interface {
		// Dialect returns the identifier this grammar implements.
		Dialect() Dialect
		// Header reports whether a line starts a section. Directive-style
		// grammars also return the item carried on the same line.
		Header(line Line) (HeaderMatch, bool)
		// Item reports whether a line inside a section body opens a new item.
		Item(cur Cursor, line Line) (ItemMatch, bool)
		// Continues reports whether a line extends the currently open item.
		Continues(cur Cursor, line Line) bool
	}

	// Marker is a header line or directive tag that opens a section.
	Marker struct {
		Text string
		Kind Kind
	}

	// HeaderMatch is the outcome of a successful header rule.
	HeaderMatch struct {
		Kind Kind
		// Inline is set when the header line also carries the first item.
		Inline bool
		Item   ItemMatch
	}

	// ItemMatch is the name and text extracted by an item rule.
	ItemMatch struct {
		Name  string
		Value string
	}

	// Cursor is the parser state handed to the item and continuation rules.
	Cursor struct {
		Kind         Kind
		HeaderIndent int
		// Open is set while an item accepts continuation lines.
		Open       bool
		ItemIndent int
		// AfterBlank is set when a blank line preceded the current line.
		AfterBlank bool
		// Items counts the items closed since the section header.
		Items int
	}
)

// Error implements the error interface for DialectError.
func (e *DialectError) Error() string {
	msg := fmt.Sprintf("dialect %q is not supported, expected one of %s", e.Requested, dialectList())
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Unwrap returns ErrUnsupportedDialect for errors.Is() compatibility.
func (e *DialectError) Unwrap() error { return ErrUnsupportedDialect }

// Dialects returns the supported dialect identifiers.
func Dialects() []Dialect {
	return []Dialect{DialectPEP257, DialectEpytext, DialectReST, DialectGoogle}
}

// ParseDialect resolves an identifier case-insensitively.
func ParseDialect(id string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(id)))
	if _, ok := grammars[d]; ok {
		return d, nil
	}
	return "", &DialectError{Requested: id, Suggestion: suggestDialect(id)}
}

// GrammarFor returns the grammar for a dialect identifier.
func GrammarFor(id string) (Grammar, error) {
	d, err := ParseDialect(id)
	if err != nil {
		return nil, err
	}
	return grammars[d], nil
}

var grammars = map[Dialect]Grammar{
	DialectPEP257:  pep257Grammar{},
	DialectEpytext: newDirectiveGrammar(DialectEpytext, '@', epytextTags),
	DialectReST:    newDirectiveGrammar(DialectReST, ':', restTags),
	DialectGoogle:  googleGrammar{},
}

func suggestDialect(id string) Dialect {
	pattern := strings.ToLower(strings.TrimSpace(id))
	if pattern == "" {
		return ""
	}
	names := make([]string, 0, len(grammars))
	for _, d := range Dialects() {
		names = append(names, string(d))
	}
	matches := fuzzy.Find(pattern, names)
	if len(matches) == 0 {
		return ""
	}
	return Dialect(matches[0].Str)
}

func dialectList() string {
	parts := make([]string, 0, len(grammars))
	for _, d := range Dialects() {
		parts = append(parts, "`"+string(d)+"`")
	}
	return strings.Join(parts, ", ")
}

// Markers lists the section markers a dialect recognizes, in canonical kind
// order. Directive dialects report the tag with its leading marker, e.g.
// "@param" or ":param".
func Markers(d Dialect) []Marker {
	var (
		table  map[string]Kind
		prefix string
	)
	switch d {
	case DialectPEP257:
		table = pep257Headers
	case DialectGoogle:
		table = googleHeaders
	case DialectEpytext:
		table, prefix = epytextTags, "@"
	case DialectReST:
		table, prefix = restTags, ":"
	default:
		return nil
	}

	out := make([]Marker, 0, len(table))
	for text, kind := range table {
		out = append(out, Marker{Text: prefix + text, Kind: kind})
	}
	slices.SortFunc(out, func(a, b Marker) int {
		if c := cmp.Compare(slices.Index(kindOrder, a.Kind), slices.Index(kindOrder, b.Kind)); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
	return out
}
