// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when Python sources change.
//
// Every directory under the base directory is registered with fsnotify.
// Events on paths matching the patterns are collected until the debounce
// window closes; the callback then receives the sorted set of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")

	// defaultPatterns select Python sources.
	defaultPatterns = []string{"**/*.py"}

	// defaultIgnores are never watched: VCS metadata, virtualenvs, tool
	// caches and editor droppings.
	defaultIgnores = []string{
		"**/.git/**",
		"**/.hg/**",
		"**/__pycache__/**",
		"**/*.pyc",
		"**/.venv/**",
		"**/venv/**",
		"**/.tox/**",
		"**/.nox/**",
		"**/.mypy_cache/**",
		"**/.pytest_cache/**",
		"**/node_modules/**",
		"**/*.swp",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns are doublestar patterns, relative to BaseDir, selecting the
		// files whose changes trigger OnChange. Empty means "**/*.py".
		Patterns []string
		// Ignore patterns are added to the built-in ignores.
		Ignore []string
		// Debounce is the quiet period after the last event.
		Debounce time.Duration
		// ClearScreen writes an ANSI clear sequence to Stdout before each run.
		ClearScreen bool
		// BaseDir is the watched root. Empty means the working directory.
		BaseDir string
		// OnChange receives the changed paths relative to BaseDir, sorted.
		OnChange func(ctx context.Context, changed []string) error
		// Stdout receives the clear-screen sequence. Defaults to os.Stdout.
		Stdout io.Writer
		// Logger receives watcher diagnostics. Defaults to a stderr logger
		// prefixed "watch".
		Logger *log.Logger
	}

	// Watcher monitors BaseDir. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		patterns []string
		ignores  []string
		stdout   io.Writer
		logger   *log.Logger
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
	}

	// batch collects changed paths and fires the callback once the debounce
	// window has passed. A firing that finds the previous one still running
	// re-arms the timer instead of overlapping it.
	batch struct {
		mu      sync.Mutex
		pending map[string]struct{}
		timer   *time.Timer
		running atomic.Bool
		delay   time.Duration
		fire    func([]string)
		logger  *log.Logger
	}
)

// New validates the patterns, creates the fsnotify watcher and registers
// every non-ignored directory under BaseDir.
func New(cfg Config) (*Watcher, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:      cfg,
		patterns: patterns,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		stdout:   cfg.Stdout,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
		baseDir:  absBase,
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.logger == nil {
		w.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "watch"})
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := w.addTree(w.baseDir); err != nil {
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// BaseDir returns the absolute watched root.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Run processes events until ctx is cancelled, returning nil then. Fatal
// fsnotify errors (resource exhaustion) end the loop with an error.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b := &batch{
		pending: make(map[string]struct{}),
		delay:   w.debounce,
		logger:  w.logger,
		fire:    func(changed []string) { w.dispatch(ctx, changed) },
	}
	defer func() {
		b.stop()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			rel := w.rel(evt.Name)
			if w.ignored(rel) || !w.matches(rel) {
				continue
			}
			w.logger.Debug("change detected", "path", rel, "op", evt.Op.String())
			b.add(ctx, rel)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, changed []string) {
	if w.cfg.ClearScreen {
		fmt.Fprint(w.stdout, "\033[2J\033[H")
	}
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Error("re-check failed", "err", err)
	}
}

func (b *batch) add(ctx context.Context, rel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[rel] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, func() { b.flush(ctx) })
		return
	}
	b.timer.Reset(b.delay)
}

// flush runs on the timer goroutine and may race with cancellation, so the
// callback must also honour ctx.
func (b *batch) flush(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !b.running.CompareAndSwap(false, true) {
		b.logger.Info("previous run still in progress, re-check postponed")
		b.mu.Lock()
		b.timer.Reset(b.delay)
		b.mu.Unlock()
		return
	}
	defer b.running.Store(false)

	b.mu.Lock()
	changed := make([]string, 0, len(b.pending))
	for p := range b.pending {
		changed = append(changed, p)
	}
	clear(b.pending)
	b.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	slices.Sort(changed)
	b.fire(changed)
}

func (b *batch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}

// addTree registers root and its non-ignored subdirectories. Unreadable
// directories are skipped with a warning.
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "err", walkErr)
			return nil //nolint:nilerr // keep watching the rest of the tree
		}
		if !d.IsDir() {
			return nil
		}
		if rel := w.rel(path); rel != "." && w.ignoredDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignoredDir(w.rel(path)) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("add new directory", "path", path, "err", err)
	}
}

// rel returns path relative to the base directory, with forward slashes.
func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

// ignoredDir also tries rel+"/" so "**/venv/**" excludes the directory itself.
func (w *Watcher) ignoredDir(rel string) bool {
	return w.ignored(rel) || w.ignored(strings.TrimSuffix(rel, "/")+"/")
}

func (w *Watcher) matches(rel string) bool {
	return matchAny(w.patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
