// SPDX-License-Identifier: MPL-2.0

package typecheck

import "strings"

// Kind classifies a runtime value. The set is closed; anything that is not a
// built-in scalar or collection is an Object carrying its own type name.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBytes
	KindList
	KindTuple
	KindSet
	KindDict
	KindObject
)

// Uncomparable is the actual label reported for objects whose type cannot
// be named.
const Uncomparable = "<uncomparable>"

var kindNames = [...]string{
	KindNone:   "None",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindStr:    "str",
	KindBytes:  "bytes",
	KindList:   "list",
	KindTuple:  "tuple",
	KindSet:    "set",
	KindDict:   "dict",
	KindObject: "object",
}

type (
	// Value describes one actual value: its kind, and for collections its
	// elements. Elems holds list, tuple and set members in order; Entries
	// holds dict items in order.
	Value struct {
		Kind Kind
		// TypeName is the runtime type name of an Object.
		TypeName string
		Elems    []Value
		Entries  []Entry
	}

	// Entry is one key/value pair of a dict Value.
	Entry struct {
		Key Value
		Val Value
	}
)

// String returns the runtime type name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// ParseKind resolves a runtime type name to a built-in kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if Kind(k) != KindObject && strings.EqualFold(n, name) {
			return Kind(k), true
		}
	}
	return KindObject, false
}

// None returns the null value.
func None() Value { return Value{Kind: KindNone} }

// Scalar returns a value of a scalar kind.
func Scalar(k Kind) Value { return Value{Kind: k} }

// List returns a list value.
func List(elems ...Value) Value { return Value{Kind: KindList, Elems: elems} }

// Tuple returns a tuple value.
func Tuple(elems ...Value) Value { return Value{Kind: KindTuple, Elems: elems} }

// Set returns a set value.
func Set(elems ...Value) Value { return Value{Kind: KindSet, Elems: elems} }

// Dict returns a dict value.
func Dict(entries ...Entry) Value { return Value{Kind: KindDict, Entries: entries} }

// Object returns a value of a user-defined type.
func Object(typeName string) Value { return Value{Kind: KindObject, TypeName: typeName} }

// Name returns the runtime type name the matcher compares against.
func (v Value) Name() string {
	if v.Kind == KindObject {
		if v.TypeName == "" {
			return Uncomparable
		}
		return v.TypeName
	}
	return v.Kind.String()
}

// Comparable reports whether the value has a nameable type.
func (v Value) Comparable() bool {
	return v.Kind != KindObject || v.TypeName != ""
}
