// SPDX-License-Identifier: MPL-2.0

package typeexpr

import (
	"strings"
	"unicode"
)

// MaxDepth bounds the nesting of a type expression. Deeper input parses to
// *Unknown.
const MaxDepth = 32

type (
	tokenKind int

	token struct {
		kind tokenKind
		text string
	}

	parser struct {
		toks  []token
		pos   int
		depth int
	}
)

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuoted
	tokLBrack
	tokRBrack
	tokComma
	tokPipe
	tokEllipsis
)

// Parse parses a declared type string. It never fails: empty input yields
// Unknown{Raw: ""} and malformed input yields Unknown{Raw: text}.
func Parse(text string) Node {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &Unknown{Raw: text}
	}
	n, ok := parseText(trimmed, 0)
	if !ok {
		return &Unknown{Raw: text}
	}
	if s, isScalar := n.(*Scalar); isScalar && s.Name == Ellipsis {
		return &Unknown{Raw: text}
	}
	return n
}

func parseText(s string, depth int) (Node, bool) {
	toks, ok := lex(s)
	if !ok {
		return nil, false
	}
	p := &parser{toks: toks, depth: depth}
	n, ok := p.parseUnion()
	if !ok || p.peek().kind != tokEOF {
		return nil, false
	}
	return n, true
}

func lex(s string) ([]token, bool) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '[':
			toks = append(toks, token{kind: tokLBrack})
			i++
		case c == ']':
			toks = append(toks, token{kind: tokRBrack})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma})
			i++
		case c == '|':
			toks = append(toks, token{kind: tokPipe})
			i++
		case strings.HasPrefix(s[i:], Ellipsis):
			toks = append(toks, token{kind: tokEllipsis, text: Ellipsis})
			i += len(Ellipsis)
		case c == '\'' || c == '"':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, false
			}
			toks = append(toks, token{kind: tokQuoted, text: s[i+1 : i+1+end]})
			i += end + 2
		default:
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			if j == i || s[i] == '.' || s[j-1] == '.' {
				return nil, false
			}
			toks = append(toks, token{kind: tokIdent, text: s[i:j]})
			i = j
		}
	}
	return append(toks, token{kind: tokEOF}), true
}

func isIdentByte(c byte) bool {
	r := rune(c)
	return c == '_' || c == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) || c >= 0x80
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// parseUnion handles "A | B | C".
func (p *parser) parseUnion() (Node, bool) {
	first, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	members := []Node{first}
	for p.peek().kind == tokPipe {
		p.next()
		m, ok := p.parsePrimary()
		if !ok {
			return nil, false
		}
		members = append(members, m)
	}
	if len(members) == 1 {
		return first, true
	}
	return &Container{Name: FamilyUnion, Elems: members}, true
}

func (p *parser) parsePrimary() (Node, bool) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxDepth {
		return nil, false
	}

	t := p.next()
	switch t.kind {
	case tokEllipsis:
		return &Scalar{Name: Ellipsis}, true
	case tokQuoted:
		return parseText(strings.TrimSpace(t.text), p.depth)
	case tokIdent:
	default:
		return nil, false
	}

	name := CanonicalName(t.text)
	if p.peek().kind != tokLBrack {
		return &Scalar{Name: name}, true
	}
	p.next()

	var elems []Node
	for p.peek().kind != tokRBrack {
		e, ok := p.parseUnion()
		if !ok {
			return nil, false
		}
		elems = append(elems, e)
		if p.peek().kind != tokComma {
			break
		}
		p.next()
	}
	if p.next().kind != tokRBrack || len(elems) == 0 {
		return nil, false
	}
	return &Container{Name: name, Elems: elems}, true
}
