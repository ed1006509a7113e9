// Package cursor tracks the caret anchor reported by the engine and its
// on-screen blink state.
package cursor

import (
	"github.com/dshills/xiview/internal/renderer/layout"
	"github.com/dshills/xiview/internal/renderer/line"
)

// Position is a caret position in document coordinates. Char is a byte
// offset into the line text.
type Position struct {
	Line int
	Char int
}

// Anchor is the client's copy of the engine's caret.
//
// The anchor only moves when an update result carrying cursor metadata is
// applied; input handlers read it but never set it.
type Anchor struct {
	lineIndex int
	charIndex int
	pixelX    float64
	pixelY    float64
}

// NewAnchor returns an anchor at the start of the document.
func NewAnchor() *Anchor {
	return &Anchor{}
}

// LineIndex returns the anchored line.
func (a *Anchor) LineIndex() int {
	return a.lineIndex
}

// CharIndex returns the anchored byte offset within the line.
func (a *Anchor) CharIndex() int {
	return a.charIndex
}

// Position returns the anchor as a Position.
func (a *Anchor) Position() Position {
	return Position{Line: a.lineIndex, Char: a.charIndex}
}

// Pixel returns the caret's last computed pixel position.
func (a *Anchor) Pixel() layout.Point {
	return layout.Point{X: a.pixelX, Y: a.pixelY}
}

// IsAtStartOfLine returns true if the caret is before the first character.
func (a *Anchor) IsAtStartOfLine() bool {
	return a.charIndex == 0
}

// Apply moves the anchor to an engine-reported position.
func (a *Anchor) Apply(p Position) {
	a.lineIndex = p.Line
	a.charIndex = p.Char
}

// SetPixel records the caret's pixel position.
func (a *Anchor) SetPixel(x, y float64) {
	a.pixelX = x
	a.pixelY = y
}

// Place derives the pixel position from the anchored line's layout, with
// the line's top edge at yOffset.
func (a *Anchor) Place(l *line.Line, yOffset float64) {
	if l == nil {
		return
	}
	p := l.CaretPosition(a.charIndex)
	a.SetPixel(p.X, p.Y+yOffset)
}
