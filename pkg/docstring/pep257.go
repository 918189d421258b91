// SPDX-License-Identifier: MPL-2.0

package docstring

import "strings"

// pep257Separator delimits the name from the text of a named item.
const pep257Separator = " -- "

var pep257Headers = map[string]Kind{
	"Arguments:":         KindArguments,
	"Keyword Arguments:": KindKeywords,
	"Types:":             KindTypes,
	"Exceptions:":        KindRaises,
	"Raises:":            KindRaises,
	"Returns:":           KindReturns,
	"Return Type:":       KindRTypes,
}

// pep257Grammar implements the PEP 257 multi-line layout:
//
//	Arguments:
//	i -- the first number
//
//	Returns:
//	Result of the addition.
//
// Named items use "name -- text". An unnamed section (returns, rtypes) holds a
// single paragraph; prose after the next blank line ends the section.
type pep257Grammar struct{}

func (pep257Grammar) Dialect() Dialect { return DialectPEP257 }

func (pep257Grammar) Header(line Line) (HeaderMatch, bool) {
	kind, ok := pep257Headers[line.Trimmed]
	return HeaderMatch{Kind: kind}, ok
}

func (pep257Grammar) Item(cur Cursor, line Line) (ItemMatch, bool) {
	if !cur.Kind.Named() {
		if cur.Open || cur.Items > 0 {
			return ItemMatch{}, false
		}
		return ItemMatch{Value: line.Trimmed}, true
	}
	name, value, ok := strings.Cut(line.Trimmed, pep257Separator)
	if !ok {
		// "name --" with an empty description.
		name, ok = strings.CutSuffix(line.Trimmed, " --")
		value = ""
	}
	name = strings.TrimSpace(name)
	if !ok || !isItemName(name) {
		return ItemMatch{}, false
	}
	return ItemMatch{Name: name, Value: strings.TrimSpace(value)}, true
}

// Continues accepts any non-blank line: a blank line closes the item before
// this rule is consulted.
func (pep257Grammar) Continues(cur Cursor, _ Line) bool {
	return cur.Open
}

// isItemName reports whether s looks like a parameter or exception name:
// non-empty and free of whitespace.
func isItemName(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t")
}
