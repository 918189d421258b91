// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"

	"github.com/doclog/doclog/internal/config"
	"github.com/doclog/doclog/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{})
	app.flags = &rootFlagValues{}

	var buf bytes.Buffer
	app.handleError(&buf, fang.Styles{}, &ExitError{Code: 1})
	if buf.Len() != 0 {
		t.Errorf("a bare ExitError must print nothing, got %q", buf.String())
	}

	err := issue.NewErrorContext().
		WithOperation("decode value").
		WithResource("[1,").
		WithIssue(issue.InvalidValueLiteralId).
		WithSuggestion("Write the value as YAML").
		Wrap(errors.New("yaml: did not find expected node content")).
		BuildError()

	app.handleError(&buf, fang.Styles{}, err)
	brief := buf.String()
	for _, want := range []string{"failed to decode value: [1,", "Write the value as YAML"} {
		if !strings.Contains(brief, want) {
			t.Errorf("output missing %q:\n%s", want, brief)
		}
	}
	if strings.Contains(brief, "Error chain:") {
		t.Errorf("error chain shown without --verbose:\n%s", brief)
	}

	buf.Reset()
	app.flags.verbose = true
	app.handleError(&buf, fang.Styles{}, err)
	if !strings.Contains(buf.String(), "Error chain:") || buf.Len() <= len(brief) {
		t.Errorf("verbose output should add the chain and the catalog entry:\n%s", buf.String())
	}
}

func TestRunWatch_InitialCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSource(t, dir, "math.py", mathSource)

	cfg := config.DefaultConfig()
	cfg.Watch.DebounceMS = 50
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{Stdout: &stdout, Stderr: &stderr})
	s := &session{cfg: cfg, logger: log.New(io.Discard)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, app, s, dir) }()

	time.Sleep(300 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWatch() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch() did not return after cancel")
	}

	if !strings.Contains(stdout.String(), "1 discrepancy") {
		t.Errorf("initial check missing from output:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Watching") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestExistingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSource(t, dir, "kept.py", "")
	got := existingFiles(dir, []string{"gone.py", "kept.py"})
	if len(got) != 1 || got[0] != "kept.py" {
		t.Errorf("existingFiles() = %v", got)
	}
}
