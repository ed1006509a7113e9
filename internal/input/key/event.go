package key

import (
	"strings"
	"time"
	"unicode"
)

// Event represents a single key press event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsText returns true if the event should be inserted as text: a character
// typed with no modifier other than Shift.
func (e Event) IsText() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune) && e.Modifiers&(ModCtrl|ModAlt|ModMeta) == 0
}

// String returns a specification string that Parse accepts, e.g.
// "Ctrl+Shift+Left" or "Ctrl+z".
func (e Event) String() string {
	var b strings.Builder
	if mods := e.Modifiers.String(); mods != "" {
		b.WriteString(mods)
		b.WriteByte('+')
	}
	if e.Key == KeyRune {
		if e.Rune == ' ' {
			b.WriteString("Space")
		} else {
			b.WriteRune(e.Rune)
		}
	} else {
		b.WriteString(e.Key.String())
	}
	return b.String()
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}
