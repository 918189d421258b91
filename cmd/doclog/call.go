// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/issue"
	"github.com/doclog/doclog/internal/pysource"
	"github.com/doclog/doclog/internal/report"
	"github.com/doclog/doclog/internal/valuecodec"
	"github.com/doclog/doclog/pkg/doclog"
)

// errRoutineNotFound is returned when FILE defines no routine named ROUTINE.
var errRoutineNotFound = errors.New("routine not found")

// newCallCommand creates the `doclog call` command.
func newCallCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		keywords []string
		returns  string
	)

	cmd := &cobra.Command{
		Use:   "call FILE ROUTINE [VALUE...]",
		Short: "Check a simulated call against a routine's declared types",
		Long: `Check argument values, and optionally a return value, against the types
declared by a routine defined in a Python source file.

ROUTINE is the qualified name, e.g. "Box.get" for a method. Positional
VALUEs bind to parameters in signature order; --kw name=VALUE adds keyword
arguments. Values are YAML literals as accepted by 'doclog match'.

In passive mode mismatches are logged and the command exits with status 1.
In active mode the first mismatch is also returned as the error.`,
		Example: `  doclog call math.py add 1 2 --returns 3
  doclog call store.py Box.get '"key"' --kw 'default=[1]'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd, flags)
			if err != nil {
				return err
			}

			fn, err := findRoutine(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			positional, err := valuecodec.DecodeAll(args[2:])
			if err != nil {
				return valueError(err)
			}
			keyword, err := valuecodec.DecodeKeywords(keywords)
			if err != nil {
				return valueError(err)
			}

			checker, err := s.checker()
			if err != nil {
				return err
			}
			prepared := checker.Prepare(fn.Routine(args[0]))

			argsReport, callErr := prepared.CheckCall(positional, keyword)
			var retReport *doclog.Report
			if cmd.Flags().Changed("returns") && callErr == nil {
				v, decodeErr := valuecodec.Decode(returns)
				if decodeErr != nil {
					return valueError(decodeErr)
				}
				retReport, callErr = prepared.CheckReturn(v)
			}

			out := report.FromCall(fn.QualName, argsReport, retReport)
			if err := app.emit(s, out, func(w io.Writer) { renderCall(w, out) }); err != nil {
				return err
			}

			if callErr != nil {
				return issue.NewErrorContext().
					WithOperation("check call").
					WithResource(fn.QualName).
					WithIssue(issueFor(callErr)).
					WithSuggestion("Fix the argument, or the type declared in the routine comment").
					WithSuggestion("Use --mode passive to report every mismatch instead of the first").
					Wrap(callErr).
					BuildError()
			}
			if !out.Passed {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&keywords, "kw", nil, "keyword argument as name=VALUE (repeatable)")
	cmd.Flags().StringVar(&returns, "returns", "", "return value to check against the declared return type")

	return cmd
}

// findRoutine parses path and returns the routine with the given qualified
// (or, failing that, plain) name.
func findRoutine(cmd *cobra.Command, path, name string) (pysource.Function, error) {
	fns, err := pysource.ParseFile(cmd.Context(), path)
	if err != nil && !errors.Is(err, pysource.ErrSyntax) {
		ctx := issue.NewErrorContext().
			WithOperation("read source").
			WithResource(path).
			Wrap(err)
		if errors.Is(err, fs.ErrNotExist) {
			ctx.WithIssue(issue.FileNotFoundId).WithSuggestion("Verify the file path is correct")
		}
		return pysource.Function{}, ctx.BuildError()
	}

	var names []string
	for _, fn := range fns {
		if fn.QualName == name {
			return fn, nil
		}
		names = append(names, fn.QualName)
	}
	for _, fn := range fns {
		if fn.Name == name {
			return fn, nil
		}
	}

	ctx := issue.NewErrorContext().
		WithOperation("find routine").
		WithResource(fmt.Sprintf("%s in %s", name, path))
	if err != nil {
		// The routine may sit after a syntax error.
		ctx.WithIssue(issue.SourceSyntaxErrorId).
			WithSuggestion("Fix the syntax error; routines after it cannot be found").
			Wrap(err)
		return pysource.Function{}, ctx.BuildError()
	}
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		ctx.WithSuggestion(fmt.Sprintf("Did you mean %q?", matches[0].Str))
	}
	ctx.WithSuggestion("Methods are named Class.method")
	return pysource.Function{}, ctx.Wrap(errRoutineNotFound).BuildError()
}

func valueError(err error) error {
	return issue.NewErrorContext().
		WithOperation("decode value").
		WithIssue(issue.InvalidValueLiteralId).
		WithSuggestion("Write values as YAML or JSON, e.g. '[1, 2]', '{a: 1}' or '!tuple [1, 2]'").
		WithSuggestion("Keyword arguments are written name=VALUE").
		Wrap(err).
		BuildError()
}
