// SPDX-License-Identifier: MPL-2.0

// Package typeexpr parses declared type strings such as "int",
// "Dict[str, List[int]]" or "int | None" into a small immutable tree.
//
// Parsing is best-effort: a type declaration in a comment is advisory
// documentation, so malformed input never produces an error. It degrades to an
// *Unknown node instead, which the matcher treats as "not declared".
//
// This package is a leaf dependency: it imports only the standard library.
package typeexpr
