// SPDX-License-Identifier: MPL-2.0

package typecheck

import (
	"github.com/doclog/doclog/pkg/typeexpr"
)

// MatchAgainstDeclared checks whether every value of the actual declared type
// would be accepted by node. It is used when only a type is available, such
// as a signature annotation.
//
// Either side being Unknown or a wildcard passes. A union or optional on the
// node side accepts any of its members; a union on the actual side passes
// only if every member is accepted. A bare family name matches any
// parametrization of that family.
func (m Matcher) MatchAgainstDeclared(node, actual typeexpr.Node) (*Result, error) {
	return m.declared(node, actual, 1)
}

func (m Matcher) declared(node, actual typeexpr.Node, depth int) (*Result, error) {
	expected, observed := label(node), label(actual)
	switch {
	case typeexpr.IsUnknown(node):
		return &Result{Node: node, Passed: true, Expected: observed, Actual: observed}, nil
	case typeexpr.IsUnknown(actual):
		return &Result{Node: node, Passed: true, Expected: expected, Actual: expected}, nil
	}

	res := &Result{Node: node, Expected: expected, Actual: observed}
	if depth > m.limit() {
		return res, &RecursionLimitError{Limit: m.limit(), Path: expected}
	}
	if typeexpr.IsWildcard(expected) || typeexpr.IsWildcard(observed) || typeexpr.Equal(node, actual) {
		res.Passed = true
		return res, nil
	}

	// An actual union narrows to its members: each must be accepted.
	if members, ok := alternatives(actual); ok {
		for _, member := range members {
			sub, err := m.declared(node, member, depth+1)
			if err != nil {
				return res, err
			}
			if !sub.Passed {
				return res, nil
			}
		}
		res.Passed = true
		return res, nil
	}
	if members, ok := alternatives(node); ok {
		for _, member := range members {
			sub, err := m.declared(member, actual, depth+1)
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

	if expected != observed {
		return res, nil
	}
	nc, nok := node.(*typeexpr.Container)
	ac, aok := actual.(*typeexpr.Container)
	if !nok || !aok {
		// Same name and at least one side unparametrized.
		res.Passed = true
		return res, nil
	}

	if elem, ok := variadic(nc); ok && expected == typeexpr.FamilyTuple {
		return m.declaredElements(res, ac.Elems, func(int) typeexpr.Node { return elem }, depth)
	}
	if _, ok := variadic(ac); ok && expected == typeexpr.FamilyTuple {
		return res, nil
	}
	if len(nc.Elems) != len(ac.Elems) {
		return res, nil
	}
	return m.declaredElements(res, ac.Elems, func(i int) typeexpr.Node { return nc.Elems[i] }, depth)
}

func (m Matcher) declaredElements(res *Result, actual []typeexpr.Node, declared func(int) typeexpr.Node, depth int) (*Result, error) {
	res.Passed = true
	res.Subresults = make([]*Result, 0, len(actual))
	for i, a := range actual {
		if s, ok := a.(*typeexpr.Scalar); ok && s.Name == typeexpr.Ellipsis {
			continue
		}
		sub, err := m.declared(declared(i), a, depth+1)
		res.Subresults = append(res.Subresults, sub)
		res.Passed = res.Passed && sub.Passed
		if err != nil {
			res.Passed = false
			return res, err
		}
	}
	return res, nil
}

// alternatives returns the members of a union, or of an optional plus None.
func alternatives(n typeexpr.Node) ([]typeexpr.Node, bool) {
	c, ok := n.(*typeexpr.Container)
	if !ok {
		return nil, false
	}
	switch typeexpr.CanonicalName(c.Name) {
	case typeexpr.FamilyUnion:
		return c.Elems, true
	case typeexpr.FamilyOptional:
		return append(append([]typeexpr.Node{}, c.Elems...), &typeexpr.Scalar{Name: typeexpr.NoneName}), true
	}
	return nil, false
}

func label(n typeexpr.Node) string {
	if u, ok := n.(*typeexpr.Unknown); ok {
		return u.Raw
	}
	return typeexpr.CanonicalName(typeexpr.Name(n))
}
