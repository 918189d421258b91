// SPDX-License-Identifier: MPL-2.0

package typecheck

import (
	"github.com/doclog/doclog/pkg/typeexpr"
)

// DefaultMaxDepth bounds the recursion of the package-level helpers.
const DefaultMaxDepth = 64

type (
	// Matcher compares type trees against values and declared types.
	// The zero value uses DefaultMaxDepth.
	Matcher struct {
		MaxDepth int
	}

	// Result is the outcome of matching one node. Subresults are only
	// populated for list, set, tuple and dict containers whose actual value
	// had the expected shape.
	Result struct {
		Node       typeexpr.Node
		Passed     bool
		Expected   string
		Actual     string
		Subresults []*Result
	}
)

// Match checks v against node with DefaultMaxDepth.
func Match(node typeexpr.Node, v Value) (*Result, error) {
	return Matcher{}.Match(node, v)
}

// MatchAgainstDeclared checks a declared type against another declared type
// with DefaultMaxDepth.
func MatchAgainstDeclared(node, actual typeexpr.Node) (*Result, error) {
	return Matcher{}.MatchAgainstDeclared(node, actual)
}

// Failed returns the failing leaves of the tree in depth-first order. A
// failing container with no subresults counts as a leaf.
func (r *Result) Failed() []*Result {
	if r == nil || r.Passed {
		return nil
	}
	var out []*Result
	for _, s := range r.Subresults {
		out = append(out, s.Failed()...)
	}
	if len(out) == 0 {
		out = append(out, r)
	}
	return out
}

func (m Matcher) limit() int {
	if m.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return m.MaxDepth
}

// Match checks an actual value against a declared type. Unknown nodes pass
// and report the observed type on both sides. The returned result is never
// nil; the error is non-nil only when the bound was exceeded, in which case
// the result is marked failed.
func (m Matcher) Match(node typeexpr.Node, v Value) (*Result, error) {
	return m.match(node, v, 1)
}

func (m Matcher) match(node typeexpr.Node, v Value, depth int) (*Result, error) {
	actual := v.Name()
	if typeexpr.IsUnknown(node) {
		return &Result{Node: node, Passed: true, Expected: actual, Actual: actual}, nil
	}

	name := typeexpr.CanonicalName(typeexpr.Name(node))
	res := &Result{Node: node, Expected: name, Actual: actual}
	if depth > m.limit() {
		return res, &RecursionLimitError{Limit: m.limit(), Path: name}
	}
	if typeexpr.IsWildcard(name) {
		res.Passed = true
		return res, nil
	}
	if !v.Comparable() {
		return res, nil
	}

	c, ok := node.(*typeexpr.Container)
	if !ok {
		res.Passed = name == typeexpr.CanonicalName(actual)
		return res, nil
	}

	switch name {
	case typeexpr.FamilyOptional:
		if v.Kind == KindNone {
			res.Passed = true
			return res, nil
		}
		return m.anyMember(res, c.Elems, v, depth)
	case typeexpr.FamilyUnion:
		return m.anyMember(res, c.Elems, v, depth)
	case typeexpr.FamilyList:
		return m.sequence(res, c, v, KindList, depth)
	case typeexpr.FamilySet:
		return m.sequence(res, c, v, KindSet, depth)
	case typeexpr.FamilyTuple:
		return m.tuple(res, c, v, depth)
	case typeexpr.FamilyDict:
		return m.dict(res, c, v, depth)
	default:
		// User-defined generics are opaque: only the name is compared.
		res.Passed = name == actual
		return res, nil
	}
}

// anyMember passes when at least one member accepts v. Member results are
// not kept.
func (m Matcher) anyMember(res *Result, members []typeexpr.Node, v Value, depth int) (*Result, error) {
	for _, member := range members {
		sub, err := m.match(member, v, depth+1)
		if err != nil {
			return res, err
		}
		if sub.Passed {
			res.Passed = true
			return res, nil
		}
	}
	return res, nil
}

func (m Matcher) sequence(res *Result, c *typeexpr.Container, v Value, want Kind, depth int) (*Result, error) {
	if v.Kind != want || len(c.Elems) != 1 {
		return res, nil
	}
	return m.elements(res, v.Elems, func(int) typeexpr.Node { return c.Elems[0] }, depth)
}

func (m Matcher) tuple(res *Result, c *typeexpr.Container, v Value, depth int) (*Result, error) {
	if v.Kind != KindTuple {
		return res, nil
	}
	if elem, ok := variadic(c); ok {
		return m.elements(res, v.Elems, func(int) typeexpr.Node { return elem }, depth)
	}
	if len(v.Elems) != len(c.Elems) {
		return res, nil
	}
	return m.elements(res, v.Elems, func(i int) typeexpr.Node { return c.Elems[i] }, depth)
}

func (m Matcher) elements(res *Result, elems []Value, declared func(int) typeexpr.Node, depth int) (*Result, error) {
	res.Passed = true
	res.Subresults = make([]*Result, 0, len(elems))
	for i, e := range elems {
		sub, err := m.match(declared(i), e, depth+1)
		res.Subresults = append(res.Subresults, sub)
		res.Passed = res.Passed && sub.Passed
		if err != nil {
			res.Passed = false
			return res, err
		}
	}
	return res, nil
}

func (m Matcher) dict(res *Result, c *typeexpr.Container, v Value, depth int) (*Result, error) {
	if v.Kind != KindDict || len(c.Elems) != 2 {
		return res, nil
	}
	res.Passed = true
	res.Subresults = make([]*Result, 0, 2*len(v.Entries))
	for _, e := range v.Entries {
		for i, part := range [2]Value{e.Key, e.Val} {
			sub, err := m.match(c.Elems[i], part, depth+1)
			res.Subresults = append(res.Subresults, sub)
			res.Passed = res.Passed && sub.Passed
			if err != nil {
				res.Passed = false
				return res, err
			}
		}
	}
	return res, nil
}

// variadic reports whether c is tuple[T, ...] and returns T.
func variadic(c *typeexpr.Container) (typeexpr.Node, bool) {
	if len(c.Elems) != 2 {
		return nil, false
	}
	if s, ok := c.Elems[1].(*typeexpr.Scalar); ok && s.Name == typeexpr.Ellipsis {
		return c.Elems[0], true
	}
	return nil, false
}
