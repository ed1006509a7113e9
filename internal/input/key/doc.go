// Package key defines keyboard events as the view receives them.
//
//   - Key identifies a special key, or KeyRune for characters
//   - Modifier is the set of held modifier keys
//   - Event is one key press
//
// Key specifications such as "Ctrl+Z" or "Shift+Left" are parsed with
// Parse; they are used by keymap extension scripts.
package key
