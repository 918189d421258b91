// SPDX-License-Identifier: MPL-2.0

package typeexpr

import "strings"

// Canonical names of the built-in container families.
const (
	FamilyList     = "list"
	FamilyDict     = "dict"
	FamilyTuple    = "tuple"
	FamilySet      = "set"
	FamilyOptional = "optional"
	FamilyUnion    = "union"

	// NoneName is the canonical name of the null type.
	NoneName = "None"
	// AnyName is the canonical wildcard type.
	AnyName = "Any"
	// Ellipsis marks a variable-length tuple, as in tuple[int, ...].
	Ellipsis = "..."
)

// familyAliases maps lowercased spellings to their family. Lookups are
// case-insensitive so "List", "list" and "LIST" all compare equal.
var familyAliases = map[string]string{
	"list":            FamilyList,
	"sequence":        FamilyList,
	"mutablesequence": FamilyList,
	"iterable":        FamilyList,
	"dict":            FamilyDict,
	"mapping":         FamilyDict,
	"mutablemapping":  FamilyDict,
	"tuple":           FamilyTuple,
	"set":             FamilySet,
	"frozenset":       FamilySet,
	"abstractset":     FamilySet,
	"mutableset":      FamilySet,
	"optional":        FamilyOptional,
	"union":           FamilyUnion,
}

// qualifiers are module prefixes dropped from well-known names only.
var qualifiers = []string{"typing.", "builtins.", "collections.abc.", "typing_extensions."}

// CanonicalName normalizes a type name. Well-known container families are
// lowercased ("Dict" -> "dict"), "NoneType" becomes "None" and "typing.Any"
// becomes "Any". Every other name is returned unchanged apart from trimming.
func CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	if c, ok := wellKnown(name); ok {
		return c
	}
	for _, q := range qualifiers {
		if rest, found := strings.CutPrefix(name, q); found {
			if c, ok := wellKnown(rest); ok {
				return c
			}
		}
	}
	return name
}

func wellKnown(name string) (string, bool) {
	if fam, ok := familyAliases[strings.ToLower(name)]; ok {
		return fam, true
	}
	switch name {
	case "None", "NoneType":
		return NoneName, true
	case "Any":
		return AnyName, true
	}
	return "", false
}

// IsFamily reports whether name is one of the canonical container families.
func IsFamily(name string) bool {
	switch name {
	case FamilyList, FamilyDict, FamilyTuple, FamilySet, FamilyOptional, FamilyUnion:
		return true
	}
	return false
}

// IsWildcard reports whether a canonical scalar name accepts any value.
func IsWildcard(name string) bool {
	return name == AnyName || name == "object"
}
