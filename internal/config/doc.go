// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/doclog/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/doclog/config.cue on macOS, %APPDATA%\doclog\config.cue
// on Windows), falling back to a doclog.cue file in the project directory. DOCLOG_*
// environment variables override file values.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before they
// reach Viper, so type errors are reported with the offending field path.
package config
