// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/issue"
	"github.com/doclog/doclog/internal/pysource"
	"github.com/doclog/doclog/internal/report"
)

// errNoSourceFiles is returned when discovery selects nothing to check.
var errNoSourceFiles = errors.New("no source files matched")

// newCheckCommand creates the `doclog check` command.
func newCheckCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "check [PATH]",
		Short: "Report where routine comments and signatures disagree",
		Long: `Check every documented routine in the Python sources under PATH (default
the working directory, or a single file).

For each parameter and for the return value, the type declared in the
comment is reconciled with the signature annotation. The comment type
governs; the command reports declarations the annotation does not fit,
comment types that cannot be parsed, and documented names that are not
parameters.

Files are selected by the include and exclude patterns of the
configuration. The command exits with status 1 when it finds anything to fix.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd, flags)
			if err != nil {
				return err
			}
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			base, files, err := discoverSources(root, s.cfg.Include, s.cfg.Exclude)
			if err != nil {
				return err
			}
			result, err := runCheck(cmd.Context(), s, base, files)
			if err != nil {
				return err
			}

			if err := app.emit(s, result, func(w io.Writer) { renderCheck(w, result, s.verbose) }); err != nil {
				return err
			}
			if !result.Passed() {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}

// discoverSources resolves the files to check. A file path is checked on its
// own regardless of the patterns.
func discoverSources(root string, include, exclude []string) (string, []string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", nil, issue.NewErrorContext().
			WithOperation("discover sources").
			WithResource(root).
			WithIssue(issue.FileNotFoundId).
			WithSuggestion("Verify the path is correct").
			Wrap(err).
			BuildError()
	}
	if !info.IsDir() {
		return filepath.Dir(root), []string{filepath.Base(root)}, nil
	}

	files, err := pysource.Discover(root, include, exclude)
	if err != nil {
		return "", nil, issue.NewErrorContext().
			WithOperation("discover sources").
			WithResource(root).
			WithSuggestion("Check the include and exclude patterns with 'doclog config show'").
			Wrap(err).
			BuildError()
	}
	if len(files) == 0 {
		return "", nil, issue.NewErrorContext().
			WithOperation("discover sources").
			WithResource(root).
			WithIssue(issue.NoSourceFilesId).
			WithSuggestion(fmt.Sprintf("No file matched include %s", strings.Join(include, ", "))).
			WithSuggestion("Pass the source directory explicitly: doclog check ./src").
			Wrap(errNoSourceFiles).
			BuildError()
	}
	return root, files, nil
}

// runCheck reconciles every documented routine of files, given relative to
// base. A file that cannot be read or parsed is recorded with its error;
// routines before a syntax error are still checked.
func runCheck(ctx context.Context, s *session, base string, files []string) (report.Check, error) {
	checker, err := s.checker()
	if err != nil {
		return report.Check{}, err
	}

	out := report.Check{Dialect: string(checker.Dialect()), Files: []report.File{}}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("check canceled: %w", err)
		}

		file := report.File{Path: rel}
		fns, err := pysource.ParseFile(ctx, filepath.Join(base, filepath.FromSlash(rel)))
		if err != nil {
			file.Error = err.Error()
			s.logger.Warn("cannot check file completely", "path", rel, "err", err)
		}
		for _, fn := range fns {
			if !fn.Documented() {
				continue
			}
			p := checker.Prepare(fn.Routine(rel))
			checked := report.FromPlan(fn.QualName, fn.Line, fn.DocLine, p.Plan())
			s.logger.Debug("routine checked", "path", rel, "routine", fn.QualName, "failed", checked.Failed())
			file.Functions = append(file.Functions, checked)
		}
		out.Add(file)
	}
	return out, nil
}
