// Package selection derives selection geometry from per-line style ranges.
//
// The engine reports a selection as a reserved style on each affected line,
// so a multi-line selection is simply a set of lines whose style list
// carries the selection triple. Geometry is computed from each line's
// layout.
package selection

import (
	"github.com/dshills/xiview/internal/renderer/layout"
	"github.com/dshills/xiview/internal/renderer/line"
)

// Bounds returns the selection rectangles of a laid-out line whose top edge
// is at yOffset. Wrapped selections produce one rectangle per visual row.
// Lines without a selection or layout return nil.
func Bounds(l *line.Line, yOffset float64) []layout.Rect {
	if l == nil {
		return nil
	}
	sel, ok := l.Selection()
	if !ok {
		return nil
	}
	tl := l.Layout()
	if tl == nil {
		return nil
	}

	start := tl.CaretPosition(sel.Start)
	end := tl.CaretPosition(sel.End())
	rowHeight := tl.Height() / float64(tl.Rows())

	if start.Y == end.Y {
		return []layout.Rect{{
			X:      start.X,
			Y:      start.Y + yOffset,
			Width:  end.X - start.X,
			Height: rowHeight,
		}}
	}

	// The selection spans rows: first row to the right edge, full middle
	// rows, last row from the left edge.
	width := tl.Bounds().Width
	var rects []layout.Rect
	rects = append(rects, layout.Rect{
		X:      start.X,
		Y:      start.Y + yOffset,
		Width:  width - start.X,
		Height: rowHeight,
	})
	for y := start.Y + rowHeight; y < end.Y; y += rowHeight {
		rects = append(rects, layout.Rect{X: 0, Y: y + yOffset, Width: width, Height: rowHeight})
	}
	if end.X > 0 {
		rects = append(rects, layout.Rect{X: 0, Y: end.Y + yOffset, Width: end.X, Height: rowHeight})
	}
	return rects
}

// Contains reports whether byte offset idx lies inside the line's selection.
func Contains(l *line.Line, idx int) bool {
	if l == nil {
		return false
	}
	sel, ok := l.Selection()
	if !ok {
		return false
	}
	return idx >= sel.Start && idx < sel.End()
}

// Lines returns the indices of lines carrying a selection, in order.
func Lines(lines []*line.Line) []int {
	var out []int
	for i, l := range lines {
		if l != nil && l.HasSelection() {
			out = append(out, i)
		}
	}
	return out
}
