// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/config"
	"github.com/doclog/doclog/internal/issue"
	"github.com/doclog/doclog/internal/pysource"
	"github.com/doclog/doclog/internal/report"
	"github.com/doclog/doclog/internal/valuecodec"
	"github.com/doclog/doclog/pkg/doclog"
	"github.com/doclog/doclog/pkg/docstring"
	"github.com/doclog/doclog/pkg/typecheck"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every command handler receives an App and loads its
	// configuration through App.Config.
	App struct {
		Config config.Provider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		flags  *rootFlagValues
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlagValues holds the persistent flags. A flag overrides the
	// configuration only when it was set on the command line.
	rootFlagValues struct {
		configPath string
		dialect    string
		mode       string
		output     string
		logLevel   string
		maxDepth   int
		verbose    bool
	}

	// session is the resolved configuration of one command invocation.
	session struct {
		cfg     *config.Config
		source  string
		verbose bool
		logger  *log.Logger
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// session loads the configuration, applies flag overrides and builds the
// call-record logger.
func (a *App) session(cmd *cobra.Command, flags *rootFlagValues) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, source, err := a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		var ae *issue.ActionableError
		if errors.As(err, &ae) && ae.Issue == issue.NoneId {
			ae.Issue = issue.ConfigLoadFailedId
			if errors.Is(err, config.ErrConfigNotFound) {
				ae.Issue = issue.FileNotFoundId
			}
		}
		return nil, err
	}

	flags.apply(cmd, cfg)
	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("apply command-line flags").
			WithSuggestion("Run 'doclog dialects' to list supported comment dialects").
			WithSuggestion("Run 'doclog --help' to see accepted flag values").
			WithIssue(issueFor(errs[0])).
			Wrap(errs[0]).
			BuildError()
	}

	level, err := log.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: "doclog", Level: level})

	return &session{cfg: cfg, source: source, verbose: flags.verbose, logger: logger}, nil
}

// apply copies explicitly set flags over the loaded configuration.
func (f *rootFlagValues) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("dialect") {
		cfg.Dialect = f.dialect
	}
	if changed("mode") {
		cfg.Mode = doclog.Mode(f.mode)
	}
	if changed("output") {
		cfg.Output = config.OutputFormat(f.output)
	}
	if changed("log-level") {
		cfg.LogLevel = config.LogLevel(f.logLevel)
	}
	if changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
}

// checker builds the call checker for the session.
func (s *session) checker() (*doclog.Checker, error) {
	return doclog.New(doclog.Config{
		Dialect:  s.cfg.Dialect,
		Mode:     s.cfg.Mode,
		Logger:   s.logger,
		MaxDepth: s.cfg.MaxDepth,
	})
}

// matcher returns a type matcher bounded by the configured depth.
func (s *session) matcher() typecheck.Matcher {
	return typecheck.Matcher{MaxDepth: s.cfg.MaxDepth}
}

// emit writes v in the configured format; text output is delegated to the
// given renderer.
func (a *App) emit(s *session, v any, text func(io.Writer)) error {
	if s.cfg.Output == config.OutputText {
		text(a.stdout)
		return nil
	}
	if err := report.Encode(a.stdout, string(s.cfg.Output), v); err != nil {
		return fmt.Errorf("write %s report: %w", s.cfg.Output, err)
	}
	return nil
}

// handleError is the fang error handler. Failed checks have already been
// reported, so a bare ExitError prints nothing; actionable errors print their
// suggestions, and in verbose mode the catalog entry for the failure.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}

	verbose := a.flags != nil && a.flags.verbose
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if !verbose {
		return
	}
	id := ae.Issue
	if id == issue.NoneId {
		id = issueFor(ae.Cause)
	}
	if entry := issue.Get(id); entry != nil {
		if rendered, renderErr := entry.Render("dark"); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// issueFor maps a failure to the catalog entry explaining it.
func issueFor(err error) issue.Id {
	var cfgErr *config.InvalidConfigError
	if errors.As(err, &cfgErr) {
		for _, fieldErr := range cfgErr.FieldErrors {
			if id := issueFor(fieldErr); id != issue.NoneId {
				return id
			}
		}
		return issue.ConfigLoadFailedId
	}

	switch {
	case err == nil:
		return issue.NoneId
	case errors.Is(err, docstring.ErrUnsupportedDialect):
		return issue.UnsupportedDialectId
	case errors.Is(err, pysource.ErrSyntax):
		return issue.SourceSyntaxErrorId
	case errors.Is(err, valuecodec.ErrInvalidLiteral):
		return issue.InvalidValueLiteralId
	case errors.Is(err, doclog.ErrTypeMismatch):
		return issue.TypeMismatchId
	case errors.Is(err, typecheck.ErrRecursionLimit):
		return issue.RecursionLimitId
	case errors.Is(err, config.ErrConfigNotFound), errors.Is(err, fs.ErrNotExist):
		return issue.FileNotFoundId
	default:
		return issue.NoneId
	}
}
