package mouse

import (
	"github.com/dshills/xiview/internal/renderer/cursor"
	"github.com/dshills/xiview/internal/renderer/layout"
	"github.com/dshills/xiview/internal/renderer/line"
)

// Locate resolves pt to a document position.
//
// visible holds the lines of the visible window, the first of which is
// document line first with its top edge at top. Each line occupies a band
// as tall as its layout (at least lineHeight). The first band containing
// pt is hit-tested; a point past the glyphs resolves to the end of the
// line. When no band contains pt, prev is returned with ok false.
func Locate(visible []*line.Line, first int, top, lineHeight float64, pt layout.Point, prev cursor.Position) (pos cursor.Position, ok bool) {
	y := top
	for i, l := range visible {
		h := l.Height(lineHeight)
		if pt.Y >= y && pt.Y < y+h {
			char, hit := 0, false
			if tl := l.Layout(); tl != nil {
				char, hit = tl.HitTest(pt.X, pt.Y-y)
			}
			if !hit {
				char = l.Len()
			}
			return cursor.Position{Line: first + i, Char: char}, true
		}
		y += h
	}
	return prev, false
}
