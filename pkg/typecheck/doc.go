// SPDX-License-Identifier: MPL-2.0

// Package typecheck matches parsed type expressions against runtime values and
// against other declared types.
//
// Values are described by the closed Kind classification; the caller supplies
// a Value for every actual it wants checked (see FromGo for native Go values).
// Matching never fails on a mismatch: the outcome is a Result tree with a
// pass flag and expected/actual labels per node. The only error is a
// *RecursionLimitError when a structure is nested deeper than the matcher's
// bound.
package typecheck
