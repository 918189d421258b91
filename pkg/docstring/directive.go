// SPDX-License-Identifier: MPL-2.0

package docstring

import "strings"

var (
	epytextTags = map[string]Kind{
		"param":      KindArguments,
		"arg":        KindArguments,
		"keyword":    KindKeywords,
		"kwarg":      KindKeywords,
		"kwparam":    KindKeywords,
		"type":       KindTypes,
		"raise":      KindRaises,
		"raises":     KindRaises,
		"except":     KindRaises,
		"exception":  KindRaises,
		"return":     KindReturns,
		"returns":    KindReturns,
		"rtype":      KindRTypes,
		"returntype": KindRTypes,
	}

	restTags = map[string]Kind{
		"param":     KindArguments,
		"parameter": KindArguments,
		"arg":       KindArguments,
		"argument":  KindArguments,
		"key":       KindKeywords,
		"keyword":   KindKeywords,
		"kwarg":     KindKeywords,
		"kwparam":   KindKeywords,
		"type":      KindTypes,
		"raises":    KindRaises,
		"raise":     KindRaises,
		"except":    KindRaises,
		"exception": KindRaises,
		"return":    KindReturns,
		"returns":   KindReturns,
		"rtype":     KindRTypes,
	}
)

// directiveGrammar implements field-list dialects where every item is its
// own directive line, for example epytext "@param i: text" and reST
// ":param i: text". The directive is both the section header and the item;
// lines indented deeper than the directive continue it.
type directiveGrammar struct {
	dialect Dialect
	marker  byte
	tags    map[string]Kind
}

func newDirectiveGrammar(d Dialect, marker byte, tags map[string]Kind) directiveGrammar {
	return directiveGrammar{dialect: d, marker: marker, tags: tags}
}

func (g directiveGrammar) Dialect() Dialect { return g.dialect }

func (g directiveGrammar) Header(line Line) (HeaderMatch, bool) {
	if len(line.Trimmed) < 2 || line.Trimmed[0] != g.marker {
		return HeaderMatch{}, false
	}
	head, body, ok := strings.Cut(line.Trimmed[1:], ":")
	if !ok {
		return HeaderMatch{}, false
	}
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return HeaderMatch{}, false
	}
	kind, ok := g.tags[strings.ToLower(fields[0])]
	if !ok {
		return HeaderMatch{}, false
	}

	m := HeaderMatch{Kind: kind, Inline: true, Item: ItemMatch{Value: strings.TrimSpace(body)}}
	if kind.Named() {
		// ":param int i:" names the last word.
		if len(fields) < 2 {
			return HeaderMatch{}, false
		}
		m.Item.Name = fields[len(fields)-1]
	}
	return m, true
}

func (directiveGrammar) Item(Cursor, Line) (ItemMatch, bool) {
	return ItemMatch{}, false
}

func (directiveGrammar) Continues(cur Cursor, line Line) bool {
	return cur.Open && line.Indent > cur.ItemIndent
}
