// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/issue"
	"github.com/doclog/doclog/internal/report"
	"github.com/doclog/doclog/pkg/docstring"
)

// newParseCommand creates the `doclog parse` command.
func newParseCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var routine string

	cmd := &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Show the sections of a routine comment",
		Long: `Parse a routine comment and print its sections.

The comment is read from FILE, or from stdin when FILE is omitted or "-".
Indentation is normalized first, so a comment copied from source parses the
same as its cleaned text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd, flags)
			if err != nil {
				return err
			}
			text, err := app.readInput(args)
			if err != nil {
				return err
			}

			dialect, err := docstring.ParseDialect(s.cfg.Dialect)
			if err != nil {
				return err
			}
			sections, err := docstring.Parse(text, string(dialect), docstring.WithOrigin(docstring.Origin{Routine: routine}))
			if err != nil {
				return err
			}

			out := report.FromSections(dialect, sections)
			return app.emit(s, out, func(w io.Writer) { renderParse(w, out) })
		},
	}

	cmd.Flags().StringVar(&routine, "routine", "", "routine name recorded in the result")

	return cmd
}

// readInput returns the contents of the file named by args[0], or stdin
// when there is no argument or it is "-".
func (a *App) readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("read comment").
			WithResource(args[0]).
			Wrap(err)
		if errors.Is(err, fs.ErrNotExist) {
			ctx.WithIssue(issue.FileNotFoundId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Pass '-' or no argument to read the comment from stdin")
		}
		return "", ctx.BuildError()
	}
	return string(data), nil
}
