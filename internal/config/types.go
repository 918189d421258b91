// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doclog/doclog/pkg/doclog"
	"github.com/doclog/doclog/pkg/docstring"
	"github.com/doclog/doclog/pkg/typecheck"
)

const (
	// OutputText renders human-readable, styled output.
	OutputText OutputFormat = "text"
	// OutputJSON encodes reports as JSON.
	OutputJSON OutputFormat = "json"
	// OutputYAML encodes reports as YAML.
	OutputYAML OutputFormat = "yaml"
	// OutputTOML encodes reports as TOML.
	OutputTOML OutputFormat = "toml"

	// LogLevelDebug logs every call record.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs calls and unmatched parameters.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs mismatches and discrepancies only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs aborted checks only. Mismatches escalate to errors.
	LogLevelError LogLevel = "error"

	// DefaultDebounceMS is the default watch debounce in milliseconds.
	DefaultDebounceMS = 500
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidPattern is returned when an include or exclude pattern is blank.
	ErrInvalidPattern = errors.New("invalid file pattern")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects how command results are written.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// LogLevel is the minimum level of call records written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidPatternError is returned for a blank include or exclude pattern.
	InvalidPatternError struct {
		Field string
		Index int
	}

	// InvalidConfigError is returned when Config.IsValid finds invalid fields.
	// FieldErrors contains the per-field validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// WatchConfig configures `doclog watch`.
	WatchConfig struct {
		// DebounceMS is the quiet period after the last change before re-checking.
		DebounceMS int `json:"debounce_ms" yaml:"debounce_ms" toml:"debounce_ms" mapstructure:"debounce_ms"`
		// ClearScreen clears the terminal before each re-check.
		ClearScreen bool `json:"clear_screen" yaml:"clear_screen" toml:"clear_screen" mapstructure:"clear_screen"`
	}

	// Config holds the application configuration.
	Config struct {
		// Dialect is the comment dialect: pep257, epytext, rest or google.
		Dialect string `json:"dialect" yaml:"dialect" toml:"dialect" mapstructure:"dialect"`
		// Mode is passive (log mismatches) or active (fail on the first one).
		Mode doclog.Mode `json:"mode" yaml:"mode" toml:"mode" mapstructure:"mode"`
		// MaxDepth bounds type and value nesting during matching.
		MaxDepth int `json:"max_depth" yaml:"max_depth" toml:"max_depth" mapstructure:"max_depth"`
		// Output is the result format.
		Output OutputFormat `json:"output" yaml:"output" toml:"output" mapstructure:"output"`
		// LogLevel is the minimum level of call records.
		LogLevel LogLevel `json:"log_level" yaml:"log_level" toml:"log_level" mapstructure:"log_level"`
		// Include lists doublestar patterns of source files to check.
		Include []string `json:"include" yaml:"include" toml:"include" mapstructure:"include"`
		// Exclude lists doublestar patterns removed from Include matches.
		Exclude []string `json:"exclude" yaml:"exclude" toml:"exclude" mapstructure:"exclude"`
		// Watch configures watch mode.
		Watch WatchConfig `json:"watch" yaml:"watch" toml:"watch" mapstructure:"watch"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dialect:  string(docstring.DialectPEP257),
		Mode:     doclog.ModePassive,
		MaxDepth: typecheck.DefaultMaxDepth,
		Output:   OutputText,
		LogLevel: LogLevelWarn,
		Include:  []string{"**/*.py"},
		Exclude:  []string{},
		Watch: WatchConfig{
			DebounceMS: DefaultDebounceMS,
		},
	}
}

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputText, OutputJSON, OutputYAML, OutputTOML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface for InvalidPatternError.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("%s[%d]: pattern must be non-empty", e.Field, e.Index)
}

// Unwrap returns ErrInvalidPattern for errors.Is() compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }

// IsValid returns whether the Config has valid fields. The dialect and mode
// are checked with the parsers the checker uses, so their errors carry the
// same suggestions.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if _, err := docstring.ParseDialect(c.Dialect); err != nil {
		errs = append(errs, err)
	}
	if _, err := doclog.ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	errs = append(errs, validatePatterns("include", c.Include)...)
	errs = append(errs, validatePatterns("exclude", c.Exclude)...)
	if c.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMS))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func validatePatterns(field string, patterns []string) []error {
	var errs []error
	for i, p := range patterns {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, &InvalidPatternError{Field: field, Index: i})
		}
	}
	return errs
}
