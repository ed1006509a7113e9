package line

import "unicode/utf8"

// Direction selects which side of an index IsNextToLineBreak inspects.
type Direction int

const (
	// Backward inspects the character before the index.
	Backward Direction = iota
	// Forward inspects the character at the index.
	Forward
)

// IsLineBreak reports whether r is a Unicode newline-class character.
func IsLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// IsNextToLineBreak reports whether the character adjacent to byte index idx
// in text, in the given direction, is a newline-class character.
func IsNextToLineBreak(text string, idx int, dir Direction) bool {
	if idx < 0 || idx > len(text) {
		return false
	}

	switch dir {
	case Backward:
		if idx == 0 {
			return false
		}
		r, _ := utf8.DecodeLastRuneInString(text[:idx])
		return IsLineBreak(r)
	case Forward:
		if idx >= len(text) {
			return false
		}
		r, _ := utf8.DecodeRuneInString(text[idx:])
		return IsLineBreak(r)
	}
	return false
}
