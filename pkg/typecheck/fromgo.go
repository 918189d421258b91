// SPDX-License-Identifier: MPL-2.0

package typecheck

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

type (
	// GoTuple marks a Go slice that should be classified as a tuple.
	GoTuple []any

	// GoSet marks a Go slice that should be classified as a set.
	GoSet []any
)

var (
	valueType = reflect.TypeFor[Value]()
	tupleType = reflect.TypeFor[GoTuple]()
	setType   = reflect.TypeFor[GoSet]()
)

// FromGo classifies a native Go value with DefaultMaxDepth.
func FromGo(v any) (Value, error) {
	return Matcher{}.FromGo(v)
}

// FromGo classifies a native Go value. Slices and arrays become lists (or
// tuples and sets through GoTuple and GoSet), maps become dicts with entries
// ordered by key, nil interfaces and pointers become None, named structs become
// objects named after their type. A Value is returned unchanged. Structures
// deeper than the bound, such as cyclic pointers, fail with a
// *RecursionLimitError.
func (m Matcher) FromGo(v any) (Value, error) {
	if v == nil {
		return None(), nil
	}
	return m.fromReflect(reflect.ValueOf(v), 1)
}

func (m Matcher) fromReflect(rv reflect.Value, depth int) (Value, error) {
	if !rv.IsValid() {
		return None(), nil
	}
	if depth > m.limit() {
		return Value{}, &RecursionLimitError{Limit: m.limit(), Path: rv.Type().String()}
	}

	switch rv.Type() {
	case valueType:
		return rv.Interface().(Value), nil
	case tupleType:
		elems, err := m.elems(rv, depth)
		return Value{Kind: KindTuple, Elems: elems}, err
	case setType:
		elems, err := m.elems(rv, depth)
		return Value{Kind: KindSet, Elems: elems}, err
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Scalar(KindBool), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Scalar(KindInt), nil
	case reflect.Float32, reflect.Float64:
		return Scalar(KindFloat), nil
	case reflect.Complex64, reflect.Complex128:
		// complex is not a built-in Kind; it is matched by name.
		return Object("complex"), nil
	case reflect.String:
		return Scalar(KindStr), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return None(), nil
		}
		return m.fromReflect(rv.Elem(), depth+1)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Scalar(KindBytes), nil
		}
		elems, err := m.elems(rv, depth)
		return Value{Kind: KindList, Elems: elems}, err
	case reflect.Array:
		elems, err := m.elems(rv, depth)
		return Value{Kind: KindList, Elems: elems}, err
	case reflect.Map:
		return m.fromMap(rv, depth)
	case reflect.Struct:
		return Object(rv.Type().Name()), nil
	default:
		// Functions, channels and unsafe pointers have no comparable type.
		return Object(""), nil
	}
}

func (m Matcher) elems(rv reflect.Value, depth int) ([]Value, error) {
	out := make([]Value, rv.Len())
	for i := range out {
		e, err := m.fromReflect(rv.Index(i), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (m Matcher) fromMap(rv reflect.Value, depth int) (Value, error) {
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		key, err := m.fromReflect(k, depth+1)
		if err != nil {
			return Value{}, err
		}
		val, err := m.fromReflect(rv.MapIndex(k), depth+1)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: key, Val: val})
	}
	return Dict(entries...), nil
}
