package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification such as "z", "Enter", "Ctrl+Z" or
// "Ctrl+Shift+Left". Letters combined with Ctrl are lowercased.
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	// A trailing "+" is the plus key itself, e.g. "Ctrl++".
	keyPart := spec
	var mods Modifier
	if i := strings.LastIndex(spec[:len(spec)-1], "+"); i >= 0 {
		keyPart = spec[i+1:]
		for _, p := range strings.Split(spec[:i], "+") {
			mod := ModifierFromName(p)
			if mod == ModNone {
				return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
			}
			mods = mods.With(mod)
		}
	}

	keyPart = strings.TrimSpace(keyPart)
	if strings.EqualFold(keyPart, "space") {
		return Event{Key: KeyRune, Rune: ' ', Modifiers: mods}, nil
	}
	if k := KeyFromName(keyPart); k != KeyNone {
		return Event{Key: k, Modifiers: mods}, nil
	}

	runes := []rune(keyPart)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}
	r := runes[0]
	if mods.HasCtrl() {
		r = unicode.ToLower(r)
	}
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}, nil
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}
