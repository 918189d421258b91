// SPDX-License-Identifier: MPL-2.0

package docstring

import (
	"slices"

	"github.com/doclog/doclog/pkg/typeexpr"
)

// Kind is the semantic kind of a section.
type Kind string

const (
	KindArguments Kind = "arguments"
	KindKeywords  Kind = "keywords"
	KindTypes     Kind = "types"
	KindRaises    Kind = "raises"
	KindReturns   Kind = "returns"
	KindRTypes    Kind = "rtypes"
)

// kindOrder is the canonical presentation order of section kinds.
var kindOrder = []Kind{KindArguments, KindKeywords, KindTypes, KindRaises, KindReturns, KindRTypes}

type (
	// Position locates the text an item came from. Line is 1-based and
	// relative to the start of the comment; Column is 1-based.
	Position struct {
		Line   int `json:"line" yaml:"line" toml:"line"`
		Column int `json:"column" yaml:"column" toml:"column"`
	}

	// Origin identifies the routine a comment belongs to. It is only used in
	// diagnostics.
	Origin struct {
		Routine string `json:"routine,omitempty" yaml:"routine,omitempty" toml:"routine,omitempty"`
		File    string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
		Line    int    `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
	}

	// Item is one entry of a section. Name is set for parameter-scoped items
	// (arguments, keywords, types, raises) and empty for return-scoped ones.
	// For types and rtypes items, Type holds the parsed Value and Subitems
	// list the container element types; Value itself is kept verbatim.
	Item struct {
		Name     string
		Value    string
		Subitems []Item
		Pos      Position
		Type     typeexpr.Node
	}

	// Section groups the items of one kind in source order.
	Section struct {
		Kind   Kind
		Items  []Item
		Origin *Origin
	}

	// Result maps each section kind present in a comment to its section.
	// Kinds that do not appear are absent keys.
	Result map[Kind]*Section
)

// Named reports whether items of this kind carry a parameter or exception name.
func (k Kind) Named() bool {
	return k != KindReturns && k != KindRTypes
}

// Typed reports whether items of this kind are type declarations.
func (k Kind) Typed() bool {
	return k == KindTypes || k == KindRTypes
}

// Kinds returns every known section kind in canonical order.
func Kinds() []Kind {
	return slices.Clone(kindOrder)
}

// Kinds returns the kinds present in the result in canonical order.
func (r Result) Kinds() []Kind {
	var kinds []Kind
	for _, k := range kindOrder {
		if _, ok := r[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Section returns the section of the given kind, or nil when absent.
func (r Result) Section(k Kind) *Section {
	return r[k]
}

// Lookup returns the first item with the given name.
func (s *Section) Lookup(name string) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	for _, it := range s.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Names returns the item names in source order, skipping unnamed items.
func (s *Section) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	return names
}

// typeItem derives the parsed type and the element subitems of a type item.
func typeItem(it Item) Item {
	it.Type = typeexpr.Parse(it.Value)
	if c, ok := it.Type.(*typeexpr.Container); ok {
		it.Subitems = make([]Item, len(c.Elems))
		for i, e := range c.Elems {
			it.Subitems[i] = Item{Value: e.String(), Pos: it.Pos, Type: e}
		}
	}
	return it
}
