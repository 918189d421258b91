// SPDX-License-Identifier: MPL-2.0

package typecheck

import (
	"errors"
	"reflect"
	"testing"

	"github.com/doclog/doclog/pkg/typeexpr"
)

type point struct{ X, Y int }

func TestFromGo(t *testing.T) {
	t.Parallel()

	var nilPtr *point
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, None()},
		{"nil pointer", nilPtr, None()},
		{"bool", true, vBool},
		{"int", 42, vInt},
		{"uint8", uint8(1), vInt},
		{"float", 1.5, vFloat},
		{"complex", complex(1, 2), Object("complex")},
		{"string", "x", vStr},
		{"bytes", []byte("x"), Scalar(KindBytes)},
		{"slice", []int{1, 2}, List(vInt, vInt)},
		{"empty slice", []string{}, List()},
		{"array", [2]string{"a", "b"}, List(vStr, vStr)},
		{"tuple", GoTuple{1, "a"}, Tuple(vInt, vStr)},
		{"set", GoSet{1}, Set(vInt)},
		{"map", map[string]int{"b": 2, "a": 1}, Dict(Entry{vStr, vInt}, Entry{vStr, vInt})},
		{"struct", point{}, Object("point")},
		{"pointer to struct", &point{}, Object("point")},
		{"anonymous struct", struct{}{}, Object("")},
		{"func", func() {}, Object("")},
		{"value passthrough", List(vInt), List(vInt)},
		{"mixed any slice", []any{1, nil, "s"}, List(vInt, None(), vStr)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FromGo(tt.in)
			if err != nil {
				t.Fatalf("FromGo() error: %v", err)
			}
			if !reflect.DeepEqual(normalize(got), normalize(tt.want)) {
				t.Errorf("FromGo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromGo_Cycle(t *testing.T) {
	t.Parallel()

	cyclic := []any{nil}
	cyclic[0] = cyclic

	_, err := Matcher{MaxDepth: 8}.FromGo(cyclic)
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("FromGo() error = %v, want ErrRecursionLimit", err)
	}
}

func TestFromGo_MatchRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := FromGo(map[string][]GoTuple{"pairs": {{1, 2}, {3, 4}}})
	if err != nil {
		t.Fatalf("FromGo() error: %v", err)
	}
	res, err := Match(typeexpr.Parse("Dict[str, List[Tuple[int, int]]]"), v)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !res.Passed {
		t.Errorf("converted value should match, failures: %+v", res.Failed())
	}
}

func TestFromGo_ComplexMatchesByName(t *testing.T) {
	t.Parallel()

	v, err := FromGo(complex64(1i))
	if err != nil {
		t.Fatalf("FromGo() error: %v", err)
	}
	res, err := Match(typeexpr.Parse("complex"), v)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !res.Passed {
		t.Errorf("complex value should match complex, got expected=%q actual=%q", res.Expected, res.Actual)
	}
	res, err = Match(typeexpr.Parse("float"), v)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if res.Passed || res.Actual != "complex" {
		t.Errorf("complex value must not match float, got actual=%q", res.Actual)
	}
}

// normalize maps nil and empty collections to the same representation.
func normalize(v Value) Value {
	if len(v.Elems) == 0 {
		v.Elems = nil
	}
	if len(v.Entries) == 0 {
		v.Entries = nil
	}
	for i := range v.Elems {
		v.Elems[i] = normalize(v.Elems[i])
	}
	return v
}
