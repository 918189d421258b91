// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/report"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the doclog command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}
	app.flags = flags

	rootCmd := &cobra.Command{
		Use:   "doclog",
		Short: "Check Python routines against the types their comments declare",
		Long: TitleStyle.Render("doclog") + SubtitleStyle.Render(" - type declarations from routine comments") + `

doclog reads the argument and return types declared in routine comments
(PEP 257, epytext, reStructuredText or Google style), reconciles them with
signature annotations, and checks values against the declared types.

` + SubtitleStyle.Render("Examples:") + `
  doclog check ./src              Report comment/signature disagreements
  doclog parse -d google doc.txt  Show the sections of a comment
  doclog match 'list[int]' '[1, 2]'
  doclog call add.py add 1 2 --returns 3
  doclog watch ./src              Re-check on every change`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/doclog/config.cue, then ./doclog.cue)")
	pf.StringVarP(&flags.dialect, "dialect", "d", "", "comment dialect: pep257, epytext, rest or google")
	pf.StringVar(&flags.mode, "mode", "", "passive (log mismatches) or active (fail on the first one)")
	pf.StringVarP(&flags.output, "output", "o", "", "output format: text, "+strings.Join(report.Formats(), ", "))
	pf.StringVar(&flags.logLevel, "log-level", "", "minimum level of call records: debug, info, warn or error")
	pf.IntVar(&flags.maxDepth, "max-depth", 0, "nesting bound for type and value matching")

	rootCmd.AddCommand(
		newParseCommand(app, flags),
		newTypesCommand(app, flags),
		newMatchCommand(app, flags),
		newCheckCommand(app, flags),
		newCallCommand(app, flags),
		newWatchCommand(app, flags),
		newDialectsCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the command tree. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through its option.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
