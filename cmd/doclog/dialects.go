// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/report"
	"github.com/doclog/doclog/pkg/docstring"
)

// markdownStyle is the glamour style of rendered references. "auto" falls
// back to plain text when stdout is not a terminal.
var markdownStyle = "auto"

// newDialectsCommand creates the `doclog dialects` command.
func newDialectsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the supported comment dialects and their section markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd, flags)
			if err != nil {
				return err
			}
			current, err := docstring.ParseDialect(s.cfg.Dialect)
			if err != nil {
				return err
			}

			out := report.FromDialects(current)
			var renderErr error
			err = app.emit(s, out, func(w io.Writer) {
				rendered, err := glamour.Render(dialectsMarkdown(out), markdownStyle)
				if err != nil {
					renderErr = fmt.Errorf("render dialect reference: %w", err)
					return
				}
				fmt.Fprint(w, rendered)
			})
			if err != nil {
				return err
			}
			return renderErr
		},
	}
}

func dialectsMarkdown(d report.Dialects) string {
	var sb strings.Builder
	sb.WriteString("# Comment dialects\n\n")
	sb.WriteString("Select one with `--dialect` or the `dialect` configuration key.\n")
	for _, dialect := range d.Dialects {
		sb.WriteString("\n## ")
		sb.WriteString(dialect.Name)
		if dialect.Current {
			sb.WriteString(" (current)")
		}
		sb.WriteString("\n\n")

		byKind := make(map[string][]string)
		var kinds []string
		for _, m := range dialect.Markers {
			if _, seen := byKind[m.Kind]; !seen {
				kinds = append(kinds, m.Kind)
			}
			byKind[m.Kind] = append(byKind[m.Kind], "`"+m.Text+"`")
		}
		for _, k := range kinds {
			fmt.Fprintf(&sb, "- **%s**: %s\n", k, strings.Join(byKind[k], ", "))
		}
	}
	return sb.String()
}
