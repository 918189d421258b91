// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/report"
	"github.com/doclog/doclog/pkg/typeexpr"
)

// newTypesCommand creates the `doclog types` command.
func newTypesCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "types EXPR",
		Short: "Show the tree of a type expression",
		Long: `Parse a type expression such as "dict[str, list[int]]" or "int or None"
and print its tree. Text that is not a well-formed expression is shown as
an unknown type; such declarations accept any value.`,
		Example: `  doclog types 'Optional[list[int]]'
  doclog types -o json 'tuple(int, str)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd, flags)
			if err != nil {
				return err
			}
			out := report.FromType(args[0], typeexpr.Parse(args[0]))
			return app.emit(s, out, func(w io.Writer) { renderType(w, out) })
		},
	}
}
