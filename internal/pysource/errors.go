// SPDX-License-Identifier: MPL-2.0

package pysource

import (
	"errors"
	"fmt"
)

// ErrSyntax is the sentinel error wrapped by SyntaxError.
var ErrSyntax = errors.New("python syntax error")

// SyntaxError reports the first region tree-sitter could not parse.
type SyntaxError struct {
	File   string
	Line   int
	Column int
}

// Error implements the error interface for SyntaxError.
func (e *SyntaxError) Error() string {
	file := e.File
	if file == "" {
		file = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d: %v", file, e.Line, e.Column, ErrSyntax)
}

// Unwrap returns ErrSyntax for errors.Is() compatibility.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }
