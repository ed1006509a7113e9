package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.View.LineHeight != 16 || cfg.View.Cushion != 5 {
		t.Errorf("unexpected view defaults %+v", cfg.View)
	}
	if cfg.Input.DragInterval.Std() != 50*time.Millisecond {
		t.Errorf("expected 50ms drag interval, got %v", cfg.Input.DragInterval.Std())
	}
	if cfg.Preferences.LineEnding != "\r\n" || cfg.Preferences.TabSize != 4 {
		t.Errorf("unexpected preference defaults %+v", cfg.Preferences)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[engine]
broker_url = "ws://localhost:9000/ws"
request_timeout = "3s"

[view]
cushion_lines = 10
caret_policy = "off"

[input]
drag_interval = "20ms"

[broker]
core_args = ["--debug"]
origin_patterns = ["editor.example"]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.BrokerURL != "ws://localhost:9000/ws" {
		t.Errorf("unexpected broker url %q", cfg.Engine.BrokerURL)
	}
	if cfg.Engine.RequestTimeout.Std() != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.Engine.RequestTimeout.Std())
	}
	if cfg.View.Cushion != 10 || cfg.View.CaretPolicy != CaretOff {
		t.Errorf("unexpected view %+v", cfg.View)
	}
	if cfg.View.LineHeight != 16 {
		t.Errorf("expected default line height to survive, got %v", cfg.View.LineHeight)
	}
	if cfg.Input.DragInterval.Std() != 20*time.Millisecond {
		t.Errorf("expected 20ms, got %v", cfg.Input.DragInterval.Std())
	}
	if len(cfg.Broker.CoreArgs) != 1 || cfg.Broker.CoreArgs[0] != "--debug" {
		t.Errorf("unexpected core args %v", cfg.Broker.CoreArgs)
	}
	if len(cfg.Broker.OriginPatterns) != 1 || cfg.Broker.OriginPatterns[0] != "editor.example" {
		t.Errorf("unexpected origin patterns %v", cfg.Broker.OriginPatterns)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("[view\nline_height = 1"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Line == 0 {
		t.Errorf("expected a line number, got %+v", pe)
	}

	if _, err := Parse([]byte("[view]\nfont = \"mono\"")); !errors.As(err, &pe) {
		t.Errorf("expected unknown key to fail, got %v", err)
	}

	if _, err := Parse([]byte("[input]\ndrag_interval = \"soon\"")); !errors.As(err, &pe) {
		t.Errorf("expected bad duration to fail, got %v", err)
	}
}

func TestValidateCollectsAllFields(t *testing.T) {
	cfg := Default()
	cfg.Engine.BrokerURL = "http://localhost"
	cfg.View.LineHeight = 0
	cfg.View.CaretPolicy = "after"
	cfg.Log.Level = "loud"
	cfg.Preferences.LineEnding = "\r"
	cfg.Broker.OriginPatterns = []string{"[editor"}

	err := cfg.Validate()
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	want := map[string]ValidationErrorCode{
		"engine.broker_url":       ErrCodeInvalidEnum,
		"view.line_height":        ErrCodeOutOfRange,
		"view.caret_policy":       ErrCodeInvalidEnum,
		"log.level":               ErrCodeInvalidEnum,
		"preferences.line_ending": ErrCodeInvalidEnum,
		"broker.origin_patterns":  ErrCodeInvalidEnum,
	}
	if len(verr.Fields) != len(want) {
		t.Errorf("expected %d fields, got %v", len(want), verr.Fields)
	}
	for _, f := range verr.Fields {
		code, ok := want[f.Path]
		if !ok {
			t.Errorf("unexpected field %s", f.Path)
			continue
		}
		if f.Code != code {
			t.Errorf("%s: expected %s, got %s", f.Path, code, f.Code)
		}
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XIVIEW_LOG_LEVEL", "")
	t.Setenv("XIVIEW_BROKER_URL", "")
	t.Setenv("XIVIEW_CORE_PATH", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected info, got %q", cfg.Log.Level)
	}
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XIVIEW_LOG_LEVEL", "debug")
	t.Setenv("XIVIEW_BROKER_URL", "")
	t.Setenv("XIVIEW_CORE_PATH", "/opt/xi/xi-core")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected env to win, got %q", cfg.Log.Level)
	}
	if cfg.Broker.CorePath != "/opt/xi/xi-core" {
		t.Errorf("unexpected core path %q", cfg.Broker.CorePath)
	}
}

func TestWritePreferences(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	prefs := Default().Preferences
	prefs.TabSize = 8

	path, err := WritePreferences(dir, prefs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != PreferencesFile {
		t.Errorf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"tab_size = 8", "translate_tabs_to_spaces = true", "use_tab_stops = true", "auto_indent = false", "scroll_past_end = true", "wrap_width = 0"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %q in:\n%s", key, data)
		}
	}

	got, err := ReadPreferences(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != prefs {
		t.Errorf("expected %+v, got %+v", prefs, got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the preferences file, got %d entries", len(entries))
	}
}

func TestWatcherReloads(t *testing.T) {
	t.Setenv("XIVIEW_LOG_LEVEL", "")
	t.Setenv("XIVIEW_BROKER_URL", "")
	t.Setenv("XIVIEW_CORE_PATH", "")

	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(c *Config) { reloads <- c }) }()

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"nope\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(2 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-reloads:
			reloaded = cfg.Log.Level == "error"
		case <-timeout:
			t.Fatal("timed out waiting for reload")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
