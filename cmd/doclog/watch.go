// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/doclog/doclog/internal/watch"
)

// newWatchCommand creates the `doclog watch` command.
func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Re-check Python sources whenever they change",
		Long: `Check every source under DIR (default the working directory), then watch
the directory and re-check changed files after a quiet period.

The include and exclude patterns select the watched files; the
watch.debounce_ms and watch.clear_screen settings tune re-checks.
Stop with Ctrl+C.`,
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
			return runWatch(cmd.Context(), app, s, root)
		},
	}
}

func runWatch(ctx context.Context, app *App, s *session, root string) error {
	recheck := func(ctx context.Context, files []string) error {
		result, err := runCheck(ctx, s, root, files)
		if err != nil {
			return err
		}
		return app.emit(s, result, func(w io.Writer) { renderCheck(w, result, s.verbose) })
	}

	w, err := watch.New(watch.Config{
		Patterns:    s.cfg.Include,
		Ignore:      s.cfg.Exclude,
		Debounce:    time.Duration(s.cfg.Watch.DebounceMS) * time.Millisecond,
		ClearScreen: s.cfg.Watch.ClearScreen,
		BaseDir:     root,
		Stdout:      app.stdout,
		Logger:      s.logger.WithPrefix("watch"),
		OnChange: func(ctx context.Context, changed []string) error {
			existing := existingFiles(root, changed)
			if len(existing) == 0 {
				s.logger.Info("changed sources were removed", "paths", changed)
				return nil
			}
			return recheck(ctx, existing)
		},
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	// The initial pass may legitimately find nothing in a fresh directory.
	_, files, err := discoverSources(root, s.cfg.Include, s.cfg.Exclude)
	switch {
	case errors.Is(err, errNoSourceFiles):
		s.logger.Info("no sources yet, waiting for changes", "dir", root)
	case err != nil:
		return err
	default:
		if err := recheck(ctx, files); err != nil {
			return err
		}
	}

	fmt.Fprintln(app.stderr, SubtitleStyle.Render(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", w.BaseDir())))
	return w.Run(ctx)
}

// existingFiles drops paths that no longer exist, e.g. after a rename.
func existingFiles(root string, rel []string) []string {
	out := make([]string, 0, len(rel))
	for _, r := range rel {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(r)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		out = append(out, r)
	}
	return out
}
