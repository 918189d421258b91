// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/config"
)

// newConfigCommand creates the `doclog config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage doclog configuration",
		Long: `Manage doclog configuration.

Configuration is read from the first file found of:
  - the --config flag
  - Linux: ~/.config/doclog/config.cue
    macOS: ~/Library/Application Support/doclog/config.cue
    Windows: %APPDATA%\doclog\config.cue
  - ./doclog.cue in the working directory

Every key can be overridden with a DOCLOG_ environment variable, e.g.
DOCLOG_DIALECT=google or DOCLOG_WATCH_DEBOUNCE_MS=200.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd, flags)
			if err != nil {
				return err
			}
			return app.emit(s, s.cfg, func(w io.Writer) { renderConfig(w, s) })
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Configuration file at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			fmt.Fprintf(app.stdout, "Project file: %s\n", config.LocalConfigFile)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

func renderConfig(w io.Writer, s *session) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	cfg := s.cfg

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if s.source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), s.source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("dialect"), valueStyle.Render(cfg.Dialect))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("mode"), valueStyle.Render(string(cfg.Mode)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("max_depth"), valueStyle.Render(fmt.Sprint(cfg.MaxDepth)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("output"), valueStyle.Render(cfg.Output.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("log_level"), valueStyle.Render(cfg.LogLevel.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("include"), patternList(cfg.Include))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("exclude"), patternList(cfg.Exclude))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(w, "  debounce_ms: %s\n", valueStyle.Render(fmt.Sprint(cfg.Watch.DebounceMS)))
	fmt.Fprintf(w, "  clear_screen: %s\n", valueStyle.Render(fmt.Sprint(cfg.Watch.ClearScreen)))
}

func patternList(patterns []string) string {
	if len(patterns) == 0 {
		return SubtitleStyle.Render("(none)")
	}
	return SuccessStyle.Render(strings.Join(patterns, ", "))
}
