// SPDX-License-Identifier: MPL-2.0

package pysource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/doclog/doclog/pkg/docstring"
	"github.com/doclog/doclog/pkg/doclog"
	"github.com/doclog/doclog/pkg/reconcile"
	"github.com/doclog/doclog/pkg/typeexpr"
)

const (
	// ParamPositional is a regular parameter, with or without default.
	ParamPositional ParamKind = iota
	// ParamVarPositional is a *args parameter.
	ParamVarPositional
	// ParamVarKeyword is a **kwargs parameter.
	ParamVarKeyword
)

type (
	// ParamKind distinguishes regular and variadic parameters.
	ParamKind int

	// Param is one parameter of a function definition.
	Param struct {
		Name       string    `json:"name" yaml:"name" toml:"name"`
		Annotation string    `json:"annotation,omitempty" yaml:"annotation,omitempty" toml:"annotation,omitempty"`
		Default    string    `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
		Kind       ParamKind `json:"kind" yaml:"kind" toml:"kind"`
	}

	// Function is a function or method definition.
	Function struct {
		Name string `json:"name" yaml:"name" toml:"name"`
		// QualName includes enclosing classes and functions, dot separated.
		QualName string `json:"qualname" yaml:"qualname" toml:"qualname"`
		Line     int    `json:"line" yaml:"line" toml:"line"`
		// DocLine is the line of the opening quotes of the docstring.
		DocLine int `json:"doc_line,omitempty" yaml:"doc_line,omitempty" toml:"doc_line,omitempty"`
		// Doc is the docstring with indentation cleaned.
		Doc     string  `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
		Params  []Param `json:"params" yaml:"params" toml:"params"`
		Returns string  `json:"returns,omitempty" yaml:"returns,omitempty" toml:"returns,omitempty"`
	}

	walker struct {
		src []byte
		out []Function
	}
)

// ParseFile reads and parses a Python file.
func ParseFile(ctx context.Context, path string) ([]Function, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fns, err := Parse(ctx, src)
	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		synErr.File = path
	}
	return fns, err
}

// Parse extracts every function definition in src, in source order. When
// the source has syntax errors the recovered functions are returned together
// with a *SyntaxError locating the first one.
func Parse(ctx context.Context, src []byte) ([]Function, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse python source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{src: src}
	w.walk(root, nil, false)

	if root.HasError() {
		if bad := firstError(root); bad != nil {
			p := bad.StartPoint()
			return w.out, &SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
		}
	}
	return w.out, nil
}

// Documented reports whether the function has a docstring.
func (f Function) Documented() bool {
	return strings.TrimSpace(f.Doc) != ""
}

// Routine converts the definition into the description used by the checker.
// A *args annotation T becomes tuple[T, ...] and a **kwargs annotation T
// becomes dict[str, T].
func (f Function) Routine(file string) doclog.Routine {
	params := make([]reconcile.Param, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, reconcile.Param{Name: p.Name, Type: p.Type()})
	}
	var ret typeexpr.Node
	if f.Returns != "" {
		ret = typeexpr.Parse(f.Returns)
	}
	return doclog.Routine{
		Name:    f.QualName,
		File:    file,
		Line:    f.Line,
		DocLine: f.DocLine,
		Doc:     f.Doc,
		Params:  params,
		Return:  ret,
	}
}

// Type returns the parsed annotation, or nil when the parameter has none.
func (p Param) Type() typeexpr.Node {
	if p.Annotation == "" {
		return nil
	}
	elem := typeexpr.Parse(p.Annotation)
	if typeexpr.IsUnknown(elem) {
		return elem
	}
	switch p.Kind {
	case ParamVarPositional:
		return &typeexpr.Container{Name: typeexpr.FamilyTuple, Elems: []typeexpr.Node{elem, &typeexpr.Scalar{Name: typeexpr.Ellipsis}}}
	case ParamVarKeyword:
		return &typeexpr.Container{Name: typeexpr.FamilyDict, Elems: []typeexpr.Node{&typeexpr.Scalar{Name: "str"}, elem}}
	default:
		return elem
	}
}

func (w *walker) walk(n *sitter.Node, scope []string, inClass bool) {
	switch n.Type() {
	case "function_definition":
		f := w.function(n, scope, inClass)
		w.out = append(w.out, f)
		if body := n.ChildByFieldName("body"); body != nil {
			w.walk(body, append(scope[:len(scope):len(scope)], f.Name), false)
		}
		return
	case "class_definition":
		name := w.text(n.ChildByFieldName("name"))
		if body := n.ChildByFieldName("body"); body != nil {
			w.walk(body, append(scope[:len(scope):len(scope)], name), true)
		}
		return
	}
	for i := range int(n.NamedChildCount()) {
		w.walk(n.NamedChild(i), scope, inClass)
	}
}

func (w *walker) function(n *sitter.Node, scope []string, inClass bool) Function {
	name := w.text(n.ChildByFieldName("name"))
	f := Function{
		Name:     name,
		QualName: strings.Join(append(append([]string{}, scope...), name), "."),
		Line:     int(n.StartPoint().Row) + 1,
		Returns:  w.text(n.ChildByFieldName("return_type")),
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		f.Params = w.params(params)
	}
	if inClass && len(f.Params) > 0 && f.Params[0].Kind == ParamPositional &&
		(f.Params[0].Name == "self" || f.Params[0].Name == "cls") {
		f.Params = f.Params[1:]
	}
	if lit := docstringNode(n); lit != nil {
		f.DocLine = int(lit.StartPoint().Row) + 1
		f.Doc = docstring.CleanDoc(unquote(w.text(lit)))
	}
	return f
}

func (w *walker) params(n *sitter.Node) []Param {
	out := make([]Param, 0, n.NamedChildCount())
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		switch child.Type() {
		case "identifier":
			out = append(out, Param{Name: w.text(child)})
		case "typed_parameter":
			// The name is an unlabeled child: identifier or splat pattern.
			p := Param{Annotation: w.text(child.ChildByFieldName("type"))}
			if first := child.NamedChild(0); first != nil {
				p.Name, p.Kind = w.splat(first)
			}
			out = append(out, p)
		case "default_parameter", "typed_default_parameter":
			out = append(out, Param{
				Name:       w.text(child.ChildByFieldName("name")),
				Annotation: w.text(child.ChildByFieldName("type")),
				Default:    w.text(child.ChildByFieldName("value")),
			})
		case "list_splat_pattern", "dictionary_splat_pattern":
			p := Param{}
			p.Name, p.Kind = w.splat(child)
			out = append(out, p)
		}
	}
	return out
}

func (w *walker) splat(n *sitter.Node) (string, ParamKind) {
	switch n.Type() {
	case "list_splat_pattern":
		return w.identIn(n), ParamVarPositional
	case "dictionary_splat_pattern":
		return w.identIn(n), ParamVarKeyword
	default:
		return w.text(n), ParamPositional
	}
}

func (w *walker) identIn(n *sitter.Node) string {
	for i := range int(n.NamedChildCount()) {
		if c := n.NamedChild(i); c.Type() == "identifier" {
			return w.text(c)
		}
	}
	return ""
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

// docstringNode returns the string literal that opens the function body.
func docstringNode(fn *sitter.Node) *sitter.Node {
	body := fn.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return nil
	}
	stmt := body.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return nil
	}
	if lit := stmt.NamedChild(0); lit.Type() == "string" {
		return lit
	}
	return nil
}

// unquote strips the prefix and quotes of a Python string literal. Escape
// sequences are left as written.
func unquote(lit string) string {
	lit = strings.TrimLeft(lit, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(lit) >= 2*len(q) && strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) {
			return lit[len(q) : len(lit)-len(q)]
		}
	}
	return lit
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsMissing() || n.Type() == "ERROR" {
		return n
	}
	for i := range int(n.ChildCount()) {
		if c := n.Child(i); c.HasError() || c.IsMissing() {
			if bad := firstError(c); bad != nil {
				return bad
			}
		}
	}
	return nil
}
