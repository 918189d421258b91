// SPDX-License-Identifier: MPL-2.0

package doclog

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is the sentinel error wrapped by MismatchError.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidMode is returned for a mode other than passive or active.
	ErrInvalidMode = errors.New("invalid mode")
)

// MismatchError reports an argument or return value whose type disagrees
// with the comment.
type MismatchError struct {
	Routine string
	// Parameter is empty for the return value.
	Parameter string
	Expected  string
	Actual    string
	// Line is the source line of the declaration, or 0 when unknown.
	Line int
}

// Error implements the error interface for MismatchError.
func (e *MismatchError) Error() string {
	where := e.Routine
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", e.Routine, e.Line)
	}
	if e.Parameter == "" {
		return fmt.Sprintf("%s: return value was not of expected type: `%s` was actually `%s`", where, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: parameter `%s` was not of expected type: `%s` was actually `%s`", where, e.Parameter, e.Expected, e.Actual)
}

// Unwrap returns ErrTypeMismatch for errors.Is() compatibility.
func (e *MismatchError) Unwrap() error { return ErrTypeMismatch }
