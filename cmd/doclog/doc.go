// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the doclog command tree.
//
// Every command loads the configuration once through the App's provider,
// applies flag overrides, and writes either styled text or an encoded
// report (JSON, YAML or TOML) to stdout. Call records and discrepancies are
// logged to stderr through charmbracelet/log at the configured level.
package cmd
