// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type harness struct {
	w      *Watcher
	calls  chan []string
	cancel context.CancelFunc
	errCh  chan error
	stdout *bytes.Buffer
}

func startWatcher(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{calls: make(chan []string, 16), stdout: &bytes.Buffer{}}
	if cfg.Debounce == 0 {
		cfg.Debounce = 50 * time.Millisecond
	}
	cfg.Stdout = h.stdout
	cfg.Logger = log.New(&bytes.Buffer{})
	if cfg.OnChange == nil {
		cfg.OnChange = func(_ context.Context, changed []string) error {
			h.calls <- changed
			return nil
		}
	}

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.w = w

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.errCh = make(chan error, 1)
	go func() { h.errCh <- w.Run(ctx) }()
	// Let the event loop start.
	time.Sleep(50 * time.Millisecond)
	return h
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.cancel()
	select {
	case err := <-h.errCh:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func (h *harness) next(t *testing.T) []string {
	t.Helper()
	select {
	case changed := <-h.calls:
		return changed
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
		return nil
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("def f():\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	h := startWatcher(t, Config{BaseDir: dir, Debounce: 150 * time.Millisecond})

	for _, name := range []string{"c.py", "a.py", "b.py"} {
		write(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}

	changed := h.next(t)
	if want := []string{"a.py", "b.py", "c.py"}; !slices.Equal(changed, want) {
		t.Errorf("changed = %v, want %v", changed, want)
	}

	time.Sleep(300 * time.Millisecond)
	if len(h.calls) != 0 {
		t.Errorf("rapid writes must coalesce into one callback, got %d more", len(h.calls))
	}
	h.stop(t)
}

func TestWatcher_OnlyPythonByDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	h := startWatcher(t, Config{BaseDir: dir})

	write(t, filepath.Join(dir, "notes.txt"))
	write(t, filepath.Join(dir, "__pycache__", "mod.cpython-312.pyc"))
	time.Sleep(200 * time.Millisecond)
	write(t, filepath.Join(dir, "mod.py"))

	changed := h.next(t)
	if !slices.Equal(changed, []string{"mod.py"}) {
		t.Errorf("changed = %v, want only mod.py", changed)
	}
	h.stop(t)
}

func TestWatcher_IgnoreAndNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	h := startWatcher(t, Config{BaseDir: dir, Ignore: []string{"build/**"}})

	write(t, filepath.Join(dir, "build", "gen.py"))
	time.Sleep(200 * time.Millisecond)

	// A directory created after startup is watched too.
	sub := filepath.Join(dir, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(sub, "util.py"))

	changed := h.next(t)
	if slices.Contains(changed, "build/gen.py") {
		t.Errorf("ignored path reported: %v", changed)
	}
	if !slices.Contains(changed, "pkg/util.py") {
		t.Errorf("changed = %v, want pkg/util.py", changed)
	}
	h.stop(t)
}

func TestWatcher_SkipsOverlappingRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu      sync.Mutex
		active  int
		overlap bool
		runs    = make(chan []string, 16)
	)
	h := startWatcher(t, Config{
		BaseDir: dir,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(200 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			runs <- changed
			return nil
		},
	})

	write(t, filepath.Join(dir, "one.py"))
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(dir, "two.py"))

	var seen []string
	deadline := time.After(5 * time.Second)
	for !slices.Contains(seen, "two.py") {
		select {
		case changed := <-runs:
			seen = append(seen, changed...)
		case <-deadline:
			t.Fatalf("postponed change was lost, saw %v", seen)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("callbacks must not overlap")
	}
	h.stop(t)
}

func TestWatcher_ClearScreen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	h := startWatcher(t, Config{BaseDir: dir, ClearScreen: true})
	write(t, filepath.Join(dir, "a.py"))
	h.next(t)
	h.stop(t)

	if !strings.Contains(h.stdout.String(), "\033[2J\033[H") {
		t.Errorf("stdout = %q, want clear sequence", h.stdout.String())
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	h := startWatcher(t, Config{BaseDir: t.TempDir()})
	if err := h.w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
	h.stop(t)
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{BaseDir: t.TempDir(), Patterns: []string{"[unclosed"}}); err == nil {
		t.Error("an invalid watch pattern must fail")
	}
	if _, err := New(Config{BaseDir: t.TempDir(), Ignore: []string{"{a,b"}}); err == nil {
		t.Error("an invalid ignore pattern must fail")
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	ignores := DefaultIgnores()
	ignores[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() must return a copy")
	}

	w := &Watcher{ignores: DefaultIgnores()}
	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"pkg/__pycache__/m.pyc", true},
		{".venv/lib/site.py", true},
		{"src/.mypy_cache/x.json", true},
		{"src/app.py", false},
		{"venvtools/app.py", false},
	}
	for _, tt := range tests {
		if got := w.ignoredDir(tt.rel); got != tt.want {
			t.Errorf("ignoredDir(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
