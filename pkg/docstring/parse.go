// SPDX-License-Identifier: MPL-2.0

package docstring

import (
	"strings"
)

// State is a state of the section scanner.
type State int

const (
	// StateSeekingHeader skips prose until a section header is found.
	StateSeekingHeader State = iota
	// StateInSectionBody is inside a section with no open item.
	StateInSectionBody
	// StateInItemContinuation is inside a section with an open item.
	StateInItemContinuation
)

type (
	// Line is one line of a cleaned comment.
	Line struct {
		// Number is 1-based.
		Number  int
		Text    string
		Trimmed string
		// Indent is the number of leading whitespace characters; a tab
		// counts as four.
		Indent int
	}

	// Option configures Parse.
	Option func(*parseOptions)

	parseOptions struct {
		origin *Origin
	}

	scanner struct {
		grammar Grammar
		opts    parseOptions
		state   State
		cur     Cursor
		section *Section
		item    *Item
		result  Result
	}
)

// WithOrigin attaches the routine the comment belongs to. Every section of the
// result points at a copy of origin.
func WithOrigin(origin Origin) Option {
	return func(o *parseOptions) {
		o.origin = &origin
	}
}

// Blank reports whether the line holds only whitespace.
func (l Line) Blank() bool { return l.Trimmed == "" }

// Parse scans a comment and returns its sections according to the grammar of
// dialect. It fails only with a *DialectError when the dialect is not
// supported; prose that matches no rule is ignored.
func Parse(text string, dialect string, opts ...Option) (Result, error) {
	g, err := GrammarFor(dialect)
	if err != nil {
		return nil, err
	}
	return ParseWith(text, g, opts...), nil
}

// ParseWith runs the section scanner with an explicit grammar.
func ParseWith(text string, g Grammar, opts ...Option) Result {
	s := &scanner{grammar: g, result: Result{}}
	for _, opt := range opts {
		opt(&s.opts)
	}
	for _, line := range SplitLines(CleanDoc(text)) {
		s.feed(line)
	}
	s.closeSection()
	return s.result
}

// SplitLines splits text into numbered lines.
func SplitLines(text string) []Line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = Line{
			Number:  i + 1,
			Text:    r,
			Trimmed: strings.TrimSpace(r),
			Indent:  indentWidth(r),
		}
	}
	return lines
}

// CleanDoc normalizes comment indentation: leading whitespace of the first
// line is dropped, the common indentation of the remaining lines is removed,
// and trailing blank lines are stripped. Leading blank lines are kept so that
// line numbers still match the source.
func CleanDoc(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	margin := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		w := leadingSpace(l)
		if margin < 0 || w < margin {
			margin = w
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " \t")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " \t")
			}
		}
	}
	for len(lines) > 1 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

func indentWidth(s string) int {
	w := 0
	for _, c := range s {
		switch c {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

func (s *scanner) feed(line Line) {
	if line.Blank() {
		if s.state == StateInItemContinuation {
			s.closeItem()
			s.state = StateInSectionBody
		}
		s.cur.AfterBlank = true
		return
	}

	if h, ok := s.grammar.Header(line); ok {
		s.closeSection()
		s.openSection(h.Kind, line.Indent)
		if h.Inline {
			s.openItem(h.Item, line)
		}
		s.cur.AfterBlank = false
		return
	}

	switch s.state {
	case StateSeekingHeader:
	case StateInSectionBody, StateInItemContinuation:
		if m, ok := s.grammar.Item(s.cur, line); ok {
			s.closeItem()
			s.openItem(m, line)
		} else if s.state == StateInItemContinuation && s.grammar.Continues(s.cur, line) {
			s.item.Value = joinText(s.item.Value, line.Trimmed)
		} else {
			s.closeSection()
		}
	}
	s.cur.AfterBlank = false
}

func (s *scanner) openSection(kind Kind, indent int) {
	sec, ok := s.result[kind]
	if !ok {
		sec = &Section{Kind: kind, Items: []Item{}}
		if s.opts.origin != nil {
			o := *s.opts.origin
			sec.Origin = &o
		}
		s.result[kind] = sec
	}
	s.section = sec
	s.state = StateInSectionBody
	s.cur = Cursor{Kind: kind, HeaderIndent: indent}
}

func (s *scanner) openItem(m ItemMatch, line Line) {
	s.item = &Item{
		Name:  m.Name,
		Value: m.Value,
		Pos:   Position{Line: line.Number, Column: line.Indent + 1},
	}
	s.state = StateInItemContinuation
	s.cur.Open = true
	s.cur.ItemIndent = line.Indent
}

func (s *scanner) closeItem() {
	if s.item == nil {
		return
	}
	it := *s.item
	if !s.section.Kind.Named() {
		it.Name = ""
	}
	if s.section.Kind.Typed() {
		it = typeItem(it)
	}
	s.section.Items = append(s.section.Items, it)
	s.item = nil
	s.cur.Open = false
	s.cur.Items++
}

func (s *scanner) closeSection() {
	if s.section == nil {
		return
	}
	s.closeItem()
	s.section = nil
	s.state = StateSeekingHeader
	s.cur = Cursor{}
}

func joinText(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
