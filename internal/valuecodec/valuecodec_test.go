// SPDX-License-Identifier: MPL-2.0

package valuecodec

import (
	"errors"
	"testing"

	"github.com/doclog/doclog/pkg/typecheck"
	"github.com/doclog/doclog/pkg/typeexpr"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		literal string
		decl    string
		want    string
	}{
		{"1", "int", "int"},
		{"1.5", "float", "float"},
		{"true", "bool", "bool"},
		{"null", "None", "None"},
		{"", "None", "None"},
		{`"1"`, "str", "str"},
		{"hello", "str", "str"},
		{"!bytes abc", "bytes", "bytes"},
		{"[1, 2]", "List[int]", "list"},
		{"!tuple [1, x]", "Tuple[int, str]", "tuple"},
		{"!set [1, 2]", "Set[int]", "set"},
		{"!set {a, b}", "Set[str]", "set"},
		{`{"a": [1.0]}`, "Dict[str, List[float]]", "dict"},
		{"!Model {id: 1}", "Model", "Model"},
		{"!Point null", "Point", "Point"},
		{"{a: &x [1], b: *x}", "Dict[str, List[int]]", "dict"},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			t.Parallel()
			v, err := Decode(tt.literal)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if v.Name() != tt.want {
				t.Errorf("Decode() type = %q, want %q", v.Name(), tt.want)
			}
			res, err := typecheck.Match(typeexpr.Parse(tt.decl), v)
			if err != nil {
				t.Fatalf("Match() error: %v", err)
			}
			if !res.Passed {
				t.Errorf("%s should match %s: %+v", tt.literal, tt.decl, res.Failed())
			}
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := Decode("[1, 2"); !errors.Is(err, ErrInvalidLiteral) {
		t.Errorf("error = %v, want ErrInvalidLiteral", err)
	}
}

func TestDecodeKeywords(t *testing.T) {
	t.Parallel()

	got, err := DecodeKeywords([]string{"i=1", "names=[a, b]"})
	if err != nil {
		t.Fatalf("DecodeKeywords() error: %v", err)
	}
	if got["i"].Kind != typecheck.KindInt || got["names"].Kind != typecheck.KindList {
		t.Errorf("DecodeKeywords() = %+v", got)
	}

	if _, err := DecodeKeywords([]string{"novalue"}); !errors.Is(err, ErrInvalidLiteral) {
		t.Errorf("error = %v, want ErrInvalidLiteral", err)
	}
}

func TestDecodeAll(t *testing.T) {
	t.Parallel()

	got, err := DecodeAll([]string{"1", "'x'"})
	if err != nil {
		t.Fatalf("DecodeAll() error: %v", err)
	}
	if len(got) != 2 || got[1].Kind != typecheck.KindStr {
		t.Errorf("DecodeAll() = %+v", got)
	}
	if _, err := DecodeAll([]string{"1", "{"}); err == nil {
		t.Error("a bad literal must fail")
	}
}
