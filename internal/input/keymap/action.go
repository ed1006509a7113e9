// Package keymap holds the edit command table: the ordered list of key
// presses the view turns directly into engine edit commands.
//
// The table is scanned in declared order and the first matching entry wins.
// An entry matches when its key matches and either it requires no modifier
// and none is held, or every modifier it requires is held. Entries that
// require a modifier therefore precede the bare entry for the same key.
//
// The table is built once at startup from the defaults plus an optional
// Lua script, and is read-only afterwards.
package keymap

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/dshills/xiview/internal/input/key"
)

var (
	// ErrEmptyCommand indicates an entry without a command name.
	ErrEmptyCommand = errors.New("empty command name")

	// ErrDuplicateBinding indicates two entries for the same key press.
	ErrDuplicateBinding = errors.New("duplicate key binding")
)

// Action maps one key press to one engine edit command.
type Action struct {
	// Modifier is the modifier set that must be held. ModNone requires
	// that no modifier is held.
	Modifier key.Modifier
	Key      key.Key
	// Rune is the character for key.KeyRune entries, matched without case.
	Rune    rune
	Command string
}

// Matches reports whether ev triggers the action.
func (a Action) Matches(ev key.Event) bool {
	if a.Key != ev.Key {
		return false
	}
	if a.Key == key.KeyRune && unicode.ToLower(a.Rune) != unicode.ToLower(ev.Rune) {
		return false
	}
	if a.Modifier == key.ModNone {
		return ev.Modifiers.IsEmpty()
	}
	return ev.Modifiers&a.Modifier == a.Modifier
}

// String returns the key specification and command, e.g. "Ctrl+z -> undo".
func (a Action) String() string {
	ev := key.Event{Key: a.Key, Rune: a.Rune, Modifiers: a.Modifier}
	return fmt.Sprintf("%s -> %s", ev, a.Command)
}

func (a Action) sameKey(b Action) bool {
	if a.Key != b.Key || a.Modifier != b.Modifier {
		return false
	}
	return a.Key != key.KeyRune || unicode.ToLower(a.Rune) == unicode.ToLower(b.Rune)
}

// Table is a frozen, ordered edit command table.
type Table struct {
	actions []Action
}

// NewTable validates actions and returns a table holding a copy of them.
func NewTable(actions ...Action) (*Table, error) {
	if err := Validate(actions); err != nil {
		return nil, err
	}
	t := &Table{actions: make([]Action, len(actions))}
	copy(t.actions, actions)
	return t, nil
}

// Validate checks that every entry has a command and that no two entries
// bind the same key press.
func Validate(actions []Action) error {
	for i, a := range actions {
		if a.Command == "" {
			return fmt.Errorf("entry %d (%s): %w", i, a, ErrEmptyCommand)
		}
		for _, prev := range actions[:i] {
			if prev.sameKey(a) {
				return fmt.Errorf("entry %d (%s) shadows %s: %w", i, a, prev, ErrDuplicateBinding)
			}
		}
	}
	return nil
}

// Lookup returns the first action matching ev.
func (t *Table) Lookup(ev key.Event) (Action, bool) {
	for _, a := range t.actions {
		if a.Matches(ev) {
			return a, true
		}
	}
	return Action{}, false
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.actions)
}

// Actions returns a copy of the entries in order.
func (t *Table) Actions() []Action {
	out := make([]Action, len(t.actions))
	copy(out, t.actions)
	return out
}

// Extend returns a new table with extra placed ahead of the existing
// entries. Existing entries bound to the same key press as an extra entry
// are dropped so the extra entry replaces them.
func (t *Table) Extend(extra ...Action) (*Table, error) {
	if err := Validate(extra); err != nil {
		return nil, err
	}
	merged := make([]Action, 0, len(extra)+len(t.actions))
	merged = append(merged, extra...)
	for _, a := range t.actions {
		replaced := false
		for _, e := range extra {
			if e.sameKey(a) {
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, a)
		}
	}
	return NewTable(merged...)
}
