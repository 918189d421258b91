// SPDX-License-Identifier: MPL-2.0

// Package doclog checks the arguments and return values of a routine call
// against the types its comment declares.
//
// A Checker is configured once with a dialect and a Mode. Prepare parses a
// routine's comment; the returned Prepared value is then used for every call.
// In ModePassive mismatches are logged as warnings, in ModeActive they are
// returned as *MismatchError.
package doclog
