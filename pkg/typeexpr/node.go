// SPDX-License-Identifier: MPL-2.0

package typeexpr

import "strings"

type (
	// Node is a parsed type expression. It is one of *Scalar, *Container or
	// *Unknown. Nodes are never mutated after Parse returns them.
	Node interface {
		// String renders the node as canonical type text. Re-parsing the
		// result yields an equal tree for any node without *Unknown parts.
		String() string
		node()
	}

	// Scalar is a plain, possibly dotted, type name such as "int" or
	// "pkg.Model".
	Scalar struct {
		Name string
	}

	// Container is a parametrized type such as "list[int]" or
	// "tuple[int, str]". Elems keeps the declared parameter order.
	Container struct {
		Name  string
		Elems []Node
	}

	// Unknown is the "no declaration" sentinel. Raw holds the original text,
	// which is empty when nothing was declared and non-empty when the text
	// could not be parsed.
	Unknown struct {
		Raw string
	}
)

func (*Scalar) node()    {}
func (*Container) node() {}
func (*Unknown) node()   {}

// String returns the scalar name.
func (s *Scalar) String() string { return s.Name }

// String renders the container as name[elem, elem].
func (c *Container) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('[')
	for i, e := range c.Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}

// String returns the raw text that failed to parse.
func (u *Unknown) String() string { return u.Raw }

// IsUnknown reports whether n is absent or the *Unknown sentinel.
func IsUnknown(n Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(*Unknown)
	return ok
}

// Name returns the canonical name of a node: the scalar or container name,
// or the empty string for *Unknown.
func Name(n Node) string {
	switch v := n.(type) {
	case *Scalar:
		return v.Name
	case *Container:
		return v.Name
	default:
		return ""
	}
}

// Equal reports whether two trees are structurally identical.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Scalar:
		y, ok := b.(*Scalar)
		return ok && x.Name == y.Name
	case *Container:
		y, ok := b.(*Container)
		if !ok || x.Name != y.Name || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *Unknown:
		y, ok := b.(*Unknown)
		return ok && x.Raw == y.Raw
	default:
		return a == nil && b == nil
	}
}

// Depth returns the nesting depth of a tree. Scalars and unknowns have depth 1.
func Depth(n Node) int {
	c, ok := n.(*Container)
	if !ok {
		return 1
	}
	deepest := 0
	for _, e := range c.Elems {
		deepest = max(deepest, Depth(e))
	}
	return deepest + 1
}
