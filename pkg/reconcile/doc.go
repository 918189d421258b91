// SPDX-License-Identifier: MPL-2.0

// Package reconcile merges the types declared in a comment with the types
// declared in a routine signature.
//
// The comment type always governs what values are checked against; the
// signature type is carried alongside for diagnostics and compared with
// typecheck.MatchAgainstDeclared to flag discrepancies.
package reconcile
