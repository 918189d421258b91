// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the doclog CLI.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog in issue.go holds Markdown explanations for
// the common failure kinds, rendered with glamour when the CLI runs verbose.
package issue
