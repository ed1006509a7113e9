// Package line provides the displayed-line record held in the line cache.
//
// A Line has immutable text and style ranges. Its layout is attached
// lazily on the view loop, possibly after the line is published in a
// snapshot, and is stored atomically so other readers see either no layout
// or a complete one.
package line

import (
	"sync/atomic"

	"github.com/dshills/xiview/internal/renderer/layout"
)

// SelectionStyleID is the reserved style id the engine uses to mark the
// selected sub-range of a line.
const SelectionStyleID = 0

// StyleRange is one styled run of a line, in absolute byte offsets.
type StyleRange struct {
	Start   int
	Length  int
	StyleID int
}

// End returns the exclusive end offset of the range.
func (r StyleRange) End() int {
	return r.Start + r.Length
}

// Line is one displayed line.
type Line struct {
	text   string
	raw    string
	styles []StyleRange
	valid  bool
	layout atomic.Pointer[layout.TextLayout]
}

// New creates a line from engine text. A single trailing CRLF or LF is
// stripped from the displayed text; the original is kept as Raw.
func New(text string, styles []StyleRange) *Line {
	return &Line{
		text:   Normalize(text),
		raw:    text,
		styles: styles,
		valid:  true,
	}
}

// Placeholder creates an invalid line standing in for content the client
// has not received yet.
func Placeholder() *Line {
	return &Line{}
}

// WithStyles returns a new line with the same text and the given styles.
func (l *Line) WithStyles(styles []StyleRange) *Line {
	return &Line{
		text:   l.text,
		raw:    l.raw,
		styles: styles,
		valid:  l.valid,
	}
}

// Normalize strips one trailing CRLF or LF.
func Normalize(text string) string {
	n := len(text)
	if n > 0 && text[n-1] == '\n' {
		n--
		if n > 0 && text[n-1] == '\r' {
			n--
		}
	}
	return text[:n]
}

// Text returns the displayed text, without a trailing line terminator.
func (l *Line) Text() string {
	return l.text
}

// Raw returns the text exactly as the engine sent it.
func (l *Line) Raw() string {
	return l.raw
}

// Len returns the length of the displayed text in bytes.
func (l *Line) Len() int {
	return len(l.text)
}

// Styles returns the line's style ranges in order.
func (l *Line) Styles() []StyleRange {
	return l.styles
}

// Valid returns false for placeholder lines.
func (l *Line) Valid() bool {
	return l.valid
}

// Layout returns the shaping handle, or nil if the line is not laid out.
func (l *Line) Layout() *layout.TextLayout {
	return l.layout.Load()
}

// IsLaidOut returns true if a layout has been attached.
func (l *Line) IsLaidOut() bool {
	return l.layout.Load() != nil
}

// Shape attaches a layout produced by e. Lines already laid out are left
// untouched, so copied lines keep their layout across updates.
func (l *Line) Shape(e *layout.Engine) {
	if l.layout.Load() != nil {
		return
	}
	l.layout.Store(e.Shape(l.text))
}

// Reshape replaces the layout, e.g. after a metrics change.
func (l *Line) Reshape(e *layout.Engine) {
	l.layout.Store(e.Shape(l.text))
}

// Height returns the laid-out height, or fallback when not laid out.
func (l *Line) Height(fallback float64) float64 {
	tl := l.layout.Load()
	if tl == nil {
		return fallback
	}
	if h := tl.Height(); h > fallback {
		return h
	}
	return fallback
}

// CaretPosition returns the caret position for a byte index. Lines without a
// layout report the origin.
func (l *Line) CaretPosition(index int) layout.Point {
	tl := l.layout.Load()
	if tl == nil {
		return layout.Point{}
	}
	return tl.CaretPosition(index)
}

// Selection returns the selected sub-range, if the style list carries one.
func (l *Line) Selection() (StyleRange, bool) {
	for _, r := range l.styles {
		if r.StyleID == SelectionStyleID {
			return r, true
		}
	}
	return StyleRange{}, false
}

// HasSelection returns true if part of the line is selected.
func (l *Line) HasSelection() bool {
	_, ok := l.Selection()
	return ok
}

// SelectedStartCharIndex returns the selection start, or 0 without a selection.
func (l *Line) SelectedStartCharIndex() int {
	r, ok := l.Selection()
	if !ok {
		return 0
	}
	return r.Start
}

// SelectedEndCharIndex returns the selection end, or 0 without a selection.
func (l *Line) SelectedEndCharIndex() int {
	r, ok := l.Selection()
	if !ok {
		return 0
	}
	return r.End()
}
