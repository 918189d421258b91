// SPDX-License-Identifier: MPL-2.0

// Package valuecodec decodes YAML value literals into typecheck values.
//
// JSON is a subset of YAML, so JSON literals decode as well. Sequences are
// lists unless tagged !tuple or !set; any other local tag such as !Model
// names the type of an object.
package valuecodec

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doclog/doclog/pkg/typecheck"
)

const (
	tagTuple = "!tuple"
	tagSet   = "!set"
	tagBytes = "!bytes"
)

// ErrInvalidLiteral is returned when the text is not a single YAML document.
var ErrInvalidLiteral = errors.New("invalid value literal")

// Decode parses a literal such as `[1, "a"]`, `!tuple [1, 2]` or
// `{a: 1}`. An empty literal decodes to None.
func Decode(text string) (typecheck.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return typecheck.Value{}, fmt.Errorf("%w: %w", ErrInvalidLiteral, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return typecheck.None(), nil
	}
	return FromNode(doc.Content[0])
}

// DecodeAll decodes each literal in order.
func DecodeAll(texts []string) ([]typecheck.Value, error) {
	out := make([]typecheck.Value, len(texts))
	for i, t := range texts {
		v, err := Decode(t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// DecodeKeywords decodes name=literal pairs.
func DecodeKeywords(pairs []string) (map[string]typecheck.Value, error) {
	out := make(map[string]typecheck.Value, len(pairs))
	for _, p := range pairs {
		name, lit, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: keyword %q is not name=value", ErrInvalidLiteral, p)
		}
		v, err := Decode(lit)
		if err != nil {
			return nil, fmt.Errorf("keyword %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// FromNode converts a decoded YAML node.
func FromNode(n *yaml.Node) (typecheck.Value, error) {
	return fromNode(n, 1)
}

func fromNode(n *yaml.Node, depth int) (typecheck.Value, error) {
	if depth > typecheck.DefaultMaxDepth {
		return typecheck.Value{}, &typecheck.RecursionLimitError{Limit: typecheck.DefaultMaxDepth, Path: fmt.Sprintf("line %d", n.Line)}
	}

	tag := n.ShortTag()
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return typecheck.None(), nil
		}
		return fromNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		return fromNode(n.Alias, depth+1)
	case yaml.ScalarNode:
		return scalar(tag), nil
	case yaml.SequenceNode:
		elems, err := children(n.Content, depth)
		if err != nil {
			return typecheck.Value{}, err
		}
		switch tag {
		case tagTuple:
			return typecheck.Tuple(elems...), nil
		case tagSet:
			return typecheck.Set(elems...), nil
		case "!!seq":
			return typecheck.List(elems...), nil
		default:
			return objectOr(tag, typecheck.List(elems...)), nil
		}
	case yaml.MappingNode:
		if tag == tagSet {
			// !set {a, b} lists members as keys with null values.
			keys := make([]*yaml.Node, 0, len(n.Content)/2)
			for i := 0; i+1 < len(n.Content); i += 2 {
				keys = append(keys, n.Content[i])
			}
			elems, err := children(keys, depth)
			return typecheck.Set(elems...), err
		}
		entries := make([]typecheck.Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := fromNode(n.Content[i], depth+1)
			if err != nil {
				return typecheck.Value{}, err
			}
			v, err := fromNode(n.Content[i+1], depth+1)
			if err != nil {
				return typecheck.Value{}, err
			}
			entries = append(entries, typecheck.Entry{Key: k, Val: v})
		}
		if tag == "!!map" {
			return typecheck.Dict(entries...), nil
		}
		return objectOr(tag, typecheck.Dict(entries...)), nil
	default:
		return typecheck.Value{}, fmt.Errorf("%w: unsupported node at line %d", ErrInvalidLiteral, n.Line)
	}
}

func children(nodes []*yaml.Node, depth int) ([]typecheck.Value, error) {
	out := make([]typecheck.Value, 0, len(nodes))
	for _, c := range nodes {
		v, err := fromNode(c, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func scalar(tag string) typecheck.Value {
	switch tag {
	case "!!null":
		return typecheck.None()
	case "!!bool":
		return typecheck.Scalar(typecheck.KindBool)
	case "!!int":
		return typecheck.Scalar(typecheck.KindInt)
	case "!!float":
		return typecheck.Scalar(typecheck.KindFloat)
	case "!!binary", tagBytes:
		return typecheck.Scalar(typecheck.KindBytes)
	case "!!timestamp":
		return typecheck.Object("datetime")
	}
	if name, ok := localTag(tag); ok {
		return typecheck.Object(name)
	}
	return typecheck.Scalar(typecheck.KindStr)
}

// objectOr names an object after a local tag, or falls back to v.
func objectOr(tag string, v typecheck.Value) typecheck.Value {
	if name, ok := localTag(tag); ok {
		return typecheck.Object(name)
	}
	return v
}

func localTag(tag string) (string, bool) {
	if strings.HasPrefix(tag, "!!") || !strings.HasPrefix(tag, "!") || len(tag) < 2 {
		return "", false
	}
	return tag[1:], true
}
