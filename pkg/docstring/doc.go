// SPDX-License-Identifier: MPL-2.0

// Package docstring extracts tagged sections (arguments, keyword arguments,
// types, raises, returns and return types) from routine comments.
//
// Four comment dialects are supported: pep257, epytext, rest and google. All of
// them run through one line-scanning state machine; a dialect only supplies
// a Grammar with three rules (header, item and continuation). Items of the
// type-bearing sections carry the parsed typeexpr.Node of their text.
package docstring
