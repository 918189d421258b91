// SPDX-License-Identifier: MPL-2.0

package docstring

import "strings"

var googleHeaders = map[string]Kind{
	"Args:":              KindArguments,
	"Arguments:":         KindArguments,
	"Keyword Args:":      KindKeywords,
	"Keyword Arguments:": KindKeywords,
	"Types:":             KindTypes,
	"Raises:":            KindRaises,
	"Returns:":           KindReturns,
	"Return:":            KindReturns,
	"Return Type:":       KindRTypes,
}

// googleGrammar implements the Google style:
//
//	Args:
//	    i: the first number
//	        which may wrap.
//
// Items sit indented under the header. A line at or left of the header's
// indentation ends the section.
type googleGrammar struct{}

func (googleGrammar) Dialect() Dialect { return DialectGoogle }

func (googleGrammar) Header(line Line) (HeaderMatch, bool) {
	kind, ok := googleHeaders[line.Trimmed]
	return HeaderMatch{Kind: kind}, ok
}

func (googleGrammar) Item(cur Cursor, line Line) (ItemMatch, bool) {
	if line.Indent <= cur.HeaderIndent {
		return ItemMatch{}, false
	}
	if !cur.Kind.Named() {
		if cur.Open {
			return ItemMatch{}, false
		}
		return ItemMatch{Value: line.Trimmed}, true
	}
	if cur.Open && line.Indent > cur.ItemIndent {
		return ItemMatch{}, false
	}
	head, value, ok := strings.Cut(line.Trimmed, ":")
	if !ok {
		return ItemMatch{}, false
	}
	// "i (int): text" names the first word.
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return ItemMatch{}, false
	}
	return ItemMatch{Name: fields[0], Value: strings.TrimSpace(value)}, true
}

func (googleGrammar) Continues(cur Cursor, line Line) bool {
	if !cur.Open {
		return false
	}
	if cur.Kind.Named() {
		return line.Indent > cur.ItemIndent
	}
	return line.Indent > cur.HeaderIndent
}
