// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/doclog/doclog/internal/issue"
	"github.com/doclog/doclog/pkg/doclog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// isolated returns options that cannot see any config outside tmp.
func isolated(t *testing.T) (LoadOptions, string) {
	t.Helper()
	tmp := t.TempDir()
	return LoadOptions{ConfigDirPath: filepath.Join(tmp, AppName), BaseDir: tmp}, tmp
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Dialect != "pep257" {
		t.Errorf("Dialect = %q, want pep257", cfg.Dialect)
	}
	if cfg.Mode != doclog.ModePassive {
		t.Errorf("Mode = %q, want passive", cfg.Mode)
	}
	if cfg.MaxDepth != 64 {
		t.Errorf("MaxDepth = %d, want 64", cfg.MaxDepth)
	}
	if cfg.Output != OutputText || cfg.LogLevel != LogLevelWarn {
		t.Errorf("Output, LogLevel = %q, %q", cfg.Output, cfg.LogLevel)
	}
	if !slices.Equal(cfg.Include, []string{"**/*.py"}) {
		t.Errorf("Include = %v", cfg.Include)
	}
	if cfg.Watch.DebounceMS != DefaultDebounceMS {
		t.Errorf("Watch.DebounceMS = %d", cfg.Watch.DebounceMS)
	}
}

func TestConfigDir_Override(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	dir := t.TempDir()
	SetConfigDirOverride(dir)
	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	cfg, path, err := NewProvider().LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" {
		t.Errorf("source = %q, want none", path)
	}
	if cfg.Dialect != DefaultConfig().Dialect || cfg.MaxDepth != DefaultConfig().MaxDepth {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_UserConfigDir(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	path := filepath.Join(opts.ConfigDirPath, "config.cue")
	writeFile(t, path, `
dialect: "google"
mode:    "active"
include: ["src/**/*.py"]
watch: debounce_ms: 100
`)
	// The user config directory wins over the project file.
	writeFile(t, filepath.Join(opts.BaseDir, LocalConfigFile), `dialect: "rest"`)

	cfg, source, err := NewProvider().LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if source != path {
		t.Errorf("source = %q, want %q", source, path)
	}
	if cfg.Dialect != "google" || cfg.Mode != doclog.ModeActive {
		t.Errorf("Dialect, Mode = %q, %q", cfg.Dialect, cfg.Mode)
	}
	if !slices.Equal(cfg.Include, []string{"src/**/*.py"}) {
		t.Errorf("Include = %v", cfg.Include)
	}
	if cfg.Watch.DebounceMS != 100 {
		t.Errorf("Watch.DebounceMS = %d, want 100", cfg.Watch.DebounceMS)
	}
	if cfg.Output != OutputText || cfg.MaxDepth != 64 {
		t.Errorf("unset fields must keep defaults: %+v", cfg)
	}
}

func TestLoad_ProjectFileFallback(t *testing.T) {
	t.Parallel()

	opts, _ := isolated(t)
	writeFile(t, filepath.Join(opts.BaseDir, LocalConfigFile), "dialect: \"epytext\"\noutput: \"yaml\"\n")

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Dialect != "epytext" || cfg.Output != OutputYAML {
		t.Errorf("Dialect, Output = %q, %q", cfg.Dialect, cfg.Output)
	}
}

func TestLoad_CustomPath_NotFound(t *testing.T) {
	t.Parallel()

	opts, tmp := isolated(t)
	opts.ConfigFilePath = filepath.Join(tmp, "missing.cue")

	_, err := NewProvider().Load(context.Background(), opts)
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error should be *issue.ActionableError, got %T", err)
	}
	if ae.Operation != "load configuration" || ae.Resource != opts.ConfigFilePath || !ae.HasSuggestions() {
		t.Errorf("ActionableError = %+v", ae)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown dialect", `dialect: "numpydoc"`, "dialect"},
		{"wrong type", `max_depth: "deep"`, "max_depth"},
		{"non-positive depth", `max_depth: 0`, "max_depth"},
		{"unknown field", `colour: "red"`, "colour"},
		{"nested unknown field", `watch: interval: 3`, "watch.interval"},
		{"blank pattern", `include: ["**/*.py", " "]`, "include[1]"},
		{"syntax error", `dialect: "rest`, "custom.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, tmp := isolated(t)
			opts.ConfigFilePath = filepath.Join(tmp, "custom.cue")
			writeFile(t, opts.ConfigFilePath, tt.content)

			_, err := NewProvider().Load(context.Background(), opts)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DOCLOG_MODE", "active")
	t.Setenv("DOCLOG_WATCH_DEBOUNCE_MS", "50")

	opts, _ := isolated(t)
	writeFile(t, filepath.Join(opts.BaseDir, LocalConfigFile), `mode: "passive"`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mode != doclog.ModeActive {
		t.Errorf("Mode = %q, want the environment value active", cfg.Mode)
	}
	if cfg.Watch.DebounceMS != 50 {
		t.Errorf("Watch.DebounceMS = %d, want 50", cfg.Watch.DebounceMS)
	}
}

func TestLoad_InvalidEnvironmentOverride(t *testing.T) {
	t.Setenv("DOCLOG_OUTPUT", "xml")

	opts, _ := isolated(t)
	_, err := NewProvider().Load(context.Background(), opts)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts, _ := isolated(t)
	if _, err := NewProvider().Load(ctx, opts); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_LoadsBack(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Dialect = "rest"
	cfg.Exclude = []string{"venv/**", "build/**"}
	cfg.Watch.ClearScreen = true

	opts, tmp := isolated(t)
	opts.ConfigFilePath = filepath.Join(tmp, "generated.cue")
	writeFile(t, opts.ConfigFilePath, GenerateCUE(cfg))

	loaded, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("generated CUE must satisfy the schema: %v\n%s", err, GenerateCUE(cfg))
	}
	if loaded.Dialect != "rest" || !slices.Equal(loaded.Exclude, cfg.Exclude) || !loaded.Watch.ClearScreen {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	dir := filepath.Join(t.TempDir(), AppName)
	SetConfigDirOverride(dir)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `dialect:   "pep257"`) {
		t.Errorf("default config content:\n%s", data)
	}

	// An existing file is left untouched.
	writeFile(t, path, `dialect: "google"`)
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != `dialect: "google"` {
		t.Errorf("existing config was overwritten: %s", data)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"dialect"}, "dialect"},
		{[]string{"include", "0"}, "include[0]"},
		{[]string{"watch", "debounce_ms"}, "watch.debounce_ms"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
