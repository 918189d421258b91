// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"slices"

	"github.com/doclog/doclog/pkg/docstring"
	"github.com/doclog/doclog/pkg/typecheck"
	"github.com/doclog/doclog/pkg/typeexpr"
)

// Source tells which declaration an effective type came from.
type Source string

const (
	SourceComment   Source = "comment"
	SourceSignature Source = "signature"
	SourceNone      Source = "none"
)

type (
	// Param is one signature parameter with its declared-in-code type. A nil
	// or *typeexpr.Unknown Type means the parameter is not annotated.
	Param struct {
		Name string
		Type typeexpr.Node
	}

	// Input collects both declaration sources for one routine and the
	// arguments bound by one call.
	Input struct {
		// CommentTypes and CommentReturn are the "types" and "rtypes"
		// sections; either may be nil.
		CommentTypes  *docstring.Section
		CommentReturn *docstring.Section
		// CommentArguments and CommentKeywords optionally add documented
		// names that carry no type.
		CommentArguments *docstring.Section
		CommentKeywords  *docstring.Section
		SignatureParams  []Param
		SignatureReturn  typeexpr.Node
		// CallArguments are the parameter names that received a value. A
		// nil slice skips the unmatched-name computation.
		CallArguments []string
		// Matcher compares the two declarations; the zero value is fine.
		Matcher typecheck.Matcher
	}

	// Binding is the reconciled declaration of one parameter or of the
	// return value (Name is empty for the return).
	Binding struct {
		Name      string
		Effective typeexpr.Node
		Comment   typeexpr.Node
		Signature typeexpr.Node
		Source    Source
		// Comparison is set when both declarations are present. It tells
		// whether the comment type accepts every value of the signature type.
		Comparison *typecheck.Result
		// Discrepancy is set when both declarations are present and differ
		// after canonicalisation, whether or not one accepts the other.
		Discrepancy bool
		// Err is set when the comparison hit the matcher's depth bound.
		Err error
		// Pos locates the comment declaration, if any.
		Pos docstring.Position
	}

	// Unmatched lists names present in only one of the documented set and
	// the call's argument set, in first-seen order.
	Unmatched struct {
		DocumentedNotPassed []string
		PassedNotDocumented []string
	}

	// Plan is the outcome of Reconcile.
	Plan struct {
		Params    []Binding
		Return    Binding
		Unmatched Unmatched
	}
)

// Reconcile builds the per-parameter and return plan. Parameters follow
// signature order, then comment-only names in comment order.
func Reconcile(in Input) *Plan {
	plan := &Plan{}

	seen := make(map[string]bool, len(in.SignatureParams))
	for _, p := range in.SignatureParams {
		seen[p.Name] = true
		item, ok := in.CommentTypes.Lookup(p.Name)
		plan.Params = append(plan.Params, bind(in.Matcher, p.Name, commentType(item, ok), p.Type, item.Pos))
	}
	for _, item := range sectionItems(in.CommentTypes) {
		if item.Name == "" || seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		plan.Params = append(plan.Params, bind(in.Matcher, item.Name, commentType(item, true), nil, item.Pos))
	}

	var ret docstring.Item
	items := sectionItems(in.CommentReturn)
	if len(items) > 0 {
		ret = items[0]
	}
	plan.Return = bind(in.Matcher, "", commentType(ret, len(items) > 0), in.SignatureReturn, ret.Pos)

	if in.CallArguments != nil {
		plan.Unmatched = unmatched(in)
	}
	return plan
}

// Discrepancies returns the bindings, return included, whose two
// declarations disagree.
func (p *Plan) Discrepancies() []Binding {
	var out []Binding
	for _, b := range p.Params {
		if b.Discrepancy {
			out = append(out, b)
		}
	}
	if p.Return.Discrepancy {
		out = append(out, p.Return)
	}
	return out
}

// Param returns the binding of the named parameter.
func (p *Plan) Param(name string) (Binding, bool) {
	i := slices.IndexFunc(p.Params, func(b Binding) bool { return b.Name == name })
	if i < 0 {
		return Binding{}, false
	}
	return p.Params[i], true
}

func bind(m typecheck.Matcher, name string, comment, signature typeexpr.Node, pos docstring.Position) Binding {
	b := Binding{Name: name, Comment: comment, Signature: signature, Pos: pos}
	switch {
	case !typeexpr.IsUnknown(comment):
		b.Effective, b.Source = comment, SourceComment
	case !typeexpr.IsUnknown(signature):
		b.Effective, b.Source = signature, SourceSignature
	default:
		b.Effective, b.Source = &typeexpr.Unknown{}, SourceNone
	}

	if !typeexpr.IsUnknown(comment) && !typeexpr.IsUnknown(signature) {
		b.Discrepancy = !typeexpr.Equal(comment, signature)
		b.Comparison, b.Err = m.MatchAgainstDeclared(comment, signature)
	}
	return b
}

func commentType(item docstring.Item, ok bool) typeexpr.Node {
	if !ok {
		return nil
	}
	if item.Type != nil {
		return item.Type
	}
	return typeexpr.Parse(item.Value)
}

func sectionItems(s *docstring.Section) []docstring.Item {
	if s == nil {
		return nil
	}
	return s.Items
}

func unmatched(in Input) Unmatched {
	var documented []string
	for _, s := range []*docstring.Section{in.CommentArguments, in.CommentKeywords, in.CommentTypes} {
		for _, name := range s.Names() {
			if !slices.Contains(documented, name) {
				documented = append(documented, name)
			}
		}
	}

	var u Unmatched
	for _, name := range documented {
		if !slices.Contains(in.CallArguments, name) {
			u.DocumentedNotPassed = append(u.DocumentedNotPassed, name)
		}
	}
	for _, name := range in.CallArguments {
		if !slices.Contains(documented, name) && !slices.Contains(u.PassedNotDocumented, name) {
			u.PassedNotDocumented = append(u.PassedNotDocumented, name)
		}
	}
	return u
}
