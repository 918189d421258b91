// SPDX-License-Identifier: MPL-2.0

// Package report turns parse, match and reconciliation results into plain
// serializable documents and encodes them as JSON, YAML or TOML.
package report
