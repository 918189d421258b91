// SPDX-License-Identifier: MPL-2.0

package typecheck

import (
	"errors"
	"fmt"
)

// ErrRecursionLimit is the sentinel error wrapped by RecursionLimitError.
var ErrRecursionLimit = errors.New("recursion limit exceeded")

// RecursionLimitError is returned when a value or type tree is nested deeper
// than the configured bound, including cyclic Go structures passed to FromGo.
type RecursionLimitError struct {
	Limit int
	// Path is the label of the node at which the bound was hit.
	Path string
}

// Error implements the error interface for RecursionLimitError.
func (e *RecursionLimitError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nesting exceeds the maximum depth of %d", e.Limit)
	}
	return fmt.Sprintf("nesting exceeds the maximum depth of %d at %s", e.Limit, e.Path)
}

// Unwrap returns ErrRecursionLimit for errors.Is() compatibility.
func (e *RecursionLimitError) Unwrap() error { return ErrRecursionLimit }
