package keymap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/xiview/internal/input/key"
	"github.com/dshills/xiview/internal/protocol"
)

func TestDefaultTableLookup(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		spec string
		want string
	}{
		{"Tab", protocol.InsertTab},
		{"Enter", protocol.InsertNewline},
		{"Backspace", protocol.DeleteBackward},
		{"Ctrl+Backspace", protocol.DeleteWordBackward},
		{"Delete", protocol.DeleteForward},
		{"Ctrl+Delete", protocol.DeleteWordForward},
		{"Up", protocol.MoveUp},
		{"Shift+Up", protocol.MoveUpAndModifySelection},
		{"Shift+Down", protocol.MoveDownAndModifySelection},
		{"Ctrl+z", protocol.Undo},
		{"Ctrl+Z", protocol.Undo},
		{"Ctrl+y", protocol.Redo},
		{"Ctrl+Home", protocol.MoveToBeginningOfDocument},
		{"End", protocol.MoveToRightEndOfLine},
		{"PageDown", protocol.ScrollPageDown},
	}
	for _, tt := range tests {
		a, ok := table.Lookup(key.MustParse(tt.spec))
		if !ok {
			t.Errorf("%s: expected a binding", tt.spec)
			continue
		}
		if a.Command != tt.want {
			t.Errorf("%s: got %s, want %s", tt.spec, a.Command, tt.want)
		}
	}
}

func TestDefaultTableLeavesArrowsUnbound(t *testing.T) {
	table := DefaultTable()
	for _, spec := range []string{"Left", "Right", "Shift+Left", "Shift+Right"} {
		if a, ok := table.Lookup(key.MustParse(spec)); ok {
			t.Errorf("%s: expected no binding, got %s", spec, a.Command)
		}
	}
}

func TestBareEntryRequiresNoModifier(t *testing.T) {
	table := DefaultTable()
	if _, ok := table.Lookup(key.MustParse("Alt+Tab")); ok {
		t.Error("expected Alt+Tab not to match the bare Tab entry")
	}
	if _, ok := table.Lookup(key.MustParse("z")); ok {
		t.Error("expected plain z not to match Ctrl+z")
	}
}

func TestModifiedEntryAllowsExtraModifiers(t *testing.T) {
	a := Action{Modifier: key.ModCtrl, Key: key.KeyRune, Rune: 'z', Command: "undo"}
	if !a.Matches(key.MustParse("Ctrl+Shift+z")) {
		t.Error("expected Ctrl+Shift+z to match a Ctrl entry")
	}
}

func TestNewTableValidation(t *testing.T) {
	_, err := NewTable(Action{Key: key.KeyTab})
	if !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}

	_, err = NewTable(
		Action{Key: key.KeyRune, Rune: 'a', Modifier: key.ModCtrl, Command: "x"},
		Action{Key: key.KeyRune, Rune: 'A', Modifier: key.ModCtrl, Command: "y"},
	)
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Errorf("expected ErrDuplicateBinding, got %v", err)
	}
}

func TestExtendOverrides(t *testing.T) {
	base := DefaultTable()
	ext, err := base.Extend(Action{Modifier: key.ModCtrl, Key: key.KeyRune, Rune: 'z', Command: "redo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := ext.Lookup(key.MustParse("Ctrl+z"))
	if a.Command != "redo" {
		t.Errorf("expected override, got %s", a.Command)
	}
	if ext.Len() != base.Len() {
		t.Errorf("expected same length, got %d and %d", ext.Len(), base.Len())
	}
	if a, _ := base.Lookup(key.MustParse("Ctrl+z")); a.Command != protocol.Undo {
		t.Error("expected base table unchanged")
	}
}

func TestLoadString(t *testing.T) {
	src := `
bind("Ctrl+d", "delete_forward")
for _, spec in ipairs({"Alt+Up", "Alt+Down"}) do
  bind(spec, "scroll_" .. string.lower(string.sub(spec, 5)))
end
`
	actions, err := LoadString(context.Background(), "test.lua", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}
	if actions[0].Command != "delete_forward" || actions[0].Rune != 'd' || !actions[0].Modifier.HasCtrl() {
		t.Errorf("unexpected first action %s", actions[0])
	}
	if actions[2].Command != "scroll_down" || actions[2].Key != key.KeyDown {
		t.Errorf("unexpected third action %s", actions[2])
	}
}

func TestLoadStringErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad spec", `bind("Hyper+x", "undo")`},
		{"syntax", `bind(`},
		{"duplicate", `bind("Ctrl+d", "a") bind("Ctrl+d", "b")`},
		{"no io", `io.open("/etc/passwd")`},
	}
	for _, tt := range tests {
		_, err := LoadString(context.Background(), tt.name, tt.src)
		var se *ScriptError
		if !errors.As(err, &se) {
			t.Errorf("%s: expected ScriptError, got %v", tt.name, err)
		}
	}
}

func TestLoadScriptTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadString(ctx, "loop.lua", `while true do end`); err == nil {
		t.Error("expected error for a cancelled script")
	}
}

func TestLoadScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.lua")
	if err := os.WriteFile(path, []byte(`bind("F5", "redo")`), 0o644); err != nil {
		t.Fatal(err)
	}
	actions, err := LoadScript(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 1 || actions[0].Key != key.KeyF5 {
		t.Errorf("unexpected actions %v", actions)
	}
}
