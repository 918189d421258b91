// SPDX-License-Identifier: MPL-2.0

package pysource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/doclog/doclog/pkg/docstring"
	"github.com/doclog/doclog/pkg/typeexpr"
)

const sample = `import typing


def add(i: int, j: int = 0) -> int:
    """Adds two numbers.

    Arguments:
    i -- the first number
    j -- the second number

    Types:
    i -- int
    j -- int
    """
    return i + j


class Box:
    def get(self, key, *args: str, **kwargs: int) -> typing.Optional[str]:
        '''Fetch a value.'''
        return None

    @staticmethod
    def make():
        pass


def outer():
    def inner(x):
        r"""Inner."""
        return x
    return inner
`

func TestParse(t *testing.T) {
	t.Parallel()

	fns, err := Parse(context.Background(), []byte(sample))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var names []string
	for _, f := range fns {
		names = append(names, f.QualName)
	}
	if want := []string{"add", "Box.get", "Box.make", "outer", "outer.inner"}; !slices.Equal(names, want) {
		t.Fatalf("functions = %v, want %v", names, want)
	}

	add := fns[0]
	if add.Line != 4 || add.DocLine != 5 || add.Returns != "int" {
		t.Errorf("add = line %d, doc line %d, returns %q", add.Line, add.DocLine, add.Returns)
	}
	if len(add.Params) != 2 || add.Params[0].Annotation != "int" || add.Params[1].Default != "0" {
		t.Errorf("add params = %+v", add.Params)
	}
	sections, err := docstring.Parse(add.Doc, "pep257")
	if err != nil {
		t.Fatalf("docstring.Parse() error: %v", err)
	}
	if names := sections[docstring.KindTypes].Names(); !slices.Equal(names, []string{"i", "j"}) {
		t.Errorf("types names = %v; cleaned doc:\n%s", names, add.Doc)
	}

	get := fns[1]
	if get.Doc != "Fetch a value." {
		t.Errorf("get doc = %q", get.Doc)
	}
	wantParams := []Param{
		{Name: "key"},
		{Name: "args", Annotation: "str", Kind: ParamVarPositional},
		{Name: "kwargs", Annotation: "int", Kind: ParamVarKeyword},
	}
	if !slices.Equal(get.Params, wantParams) {
		t.Errorf("get params = %+v, want %+v", get.Params, wantParams)
	}

	if fns[2].Documented() || len(fns[2].Params) != 0 {
		t.Errorf("make = %+v, want undocumented with no params", fns[2])
	}
	if fns[4].Doc != "Inner." {
		t.Errorf("raw docstring = %q", fns[4].Doc)
	}
}

func TestFunction_Routine(t *testing.T) {
	t.Parallel()

	fns, err := Parse(context.Background(), []byte(sample))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	r := fns[1].Routine("box.py")

	if r.Name != "Box.get" || r.File != "box.py" {
		t.Errorf("routine = %+v", r)
	}
	if r.Params[0].Type != nil {
		t.Error("an unannotated parameter must have no type")
	}
	if got := r.Params[1].Type.String(); got != "tuple[str, ...]" {
		t.Errorf("*args type = %q", got)
	}
	if got := r.Params[2].Type.String(); got != "dict[str, int]" {
		t.Errorf("**kwargs type = %q", got)
	}
	if !typeexpr.Equal(r.Return, typeexpr.Parse("Optional[str]")) {
		t.Errorf("return type = %s", r.Return)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	src := "def ok():\n    \"\"\"Fine.\"\"\"\n\ndef broken(:\n    pass\n"
	fns, err := Parse(context.Background(), []byte(src))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("error = %v, want ErrSyntax", err)
	}
	if len(fns) == 0 || fns[0].Name != "ok" {
		t.Errorf("functions before the error must be recovered, got %+v", fns)
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.py")
	if err := os.WriteFile(path, []byte("def f(:\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ParseFile(context.Background(), path)
	var synErr *SyntaxError
	if !errors.As(err, &synErr) || synErr.File != path {
		t.Errorf("error = %v, want *SyntaxError naming %s", err, path)
	}

	if _, err := ParseFile(context.Background(), filepath.Join(dir, "missing.py")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, rel := range []string{"a.py", "pkg/b.py", "pkg/c.txt", "venv/lib/d.py"} {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := Discover(dir, []string{"**/*.py", "*.py"}, []string{"venv/**"})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if want := []string{"a.py", "pkg/b.py"}; !slices.Equal(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}

	if _, err := Discover(dir, []string{"[unclosed"}, nil); err == nil {
		t.Error("an invalid pattern must fail")
	}
}
