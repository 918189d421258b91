// SPDX-License-Identifier: MPL-2.0

// Package pysource extracts documented functions from Python source files.
//
// Parsing uses the tree-sitter Python grammar, so files with syntax errors
// still yield every function the parser could recover.
package pysource
