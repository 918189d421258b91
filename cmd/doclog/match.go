// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/issue"
	"github.com/doclog/doclog/internal/report"
	"github.com/doclog/doclog/internal/valuecodec"
	"github.com/doclog/doclog/pkg/typecheck"
	"github.com/doclog/doclog/pkg/typeexpr"
)

// newMatchCommand creates the `doclog match` command.
func newMatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var declared bool

	cmd := &cobra.Command{
		Use:   "match TYPE VALUE",
		Short: "Check a value against a type expression",
		Long: `Check a value literal against a type expression.

VALUE is YAML (and so also JSON): [1, 2] is a list, {a: 1} a dict, and the
tags !tuple, !set and !bytes select those kinds. Any other local tag names
the class of an object, e.g. '!Path /tmp'.

With --declared, VALUE is a second type expression and the command checks
that every value of that type is accepted by TYPE.

The command exits with status 1 when the value does not match.`,
		Example: `  doclog match 'list[int]' '[1, 2, 3]'
  doclog match 'tuple(int, ...)' '!tuple [1, 2]'
  doclog match --declared 'Sequence[float]' 'list[float]'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd, flags)
			if err != nil {
				return err
			}

			node := typeexpr.Parse(args[0])
			m := s.matcher()
			var (
				res      *typecheck.Result
				matchErr error
			)
			if declared {
				res, matchErr = m.MatchAgainstDeclared(node, typeexpr.Parse(args[1]))
			} else {
				v, decodeErr := valuecodec.Decode(args[1])
				if decodeErr != nil {
					return issue.NewErrorContext().
						WithOperation("decode value").
						WithResource(args[1]).
						WithIssue(issue.InvalidValueLiteralId).
						WithSuggestion("Write the value as YAML or JSON, e.g. '[1, 2]' or '{a: 1}'").
						WithSuggestion("Quote the whole literal so the shell passes it as one argument").
						Wrap(decodeErr).
						BuildError()
				}
				res, matchErr = m.Match(node, v)
			}

			out := report.Match{
				Type:   node.String(),
				Value:  args[1],
				Passed: matchErr == nil && res != nil && res.Passed,
				Result: report.FromResult(res),
			}
			if matchErr != nil {
				out.Error = matchErr.Error()
			}
			if err := app.emit(s, out, func(w io.Writer) { renderMatch(w, out) }); err != nil {
				return err
			}
			if !out.Passed {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&declared, "declared", false, "treat VALUE as a declared type instead of a value literal")

	return cmd
}
