// Package mouse maps pointer input onto document positions.
//
// Points are in layout pixels relative to the top-left corner of the text
// area. Locate resolves a point to a (line, character) position by walking
// the visible lines only; a point outside every visible line resolves to
// the previous caret position.
//
// Tracker turns raw press, move and release events into click counts and
// sampled drag positions:
//
//	tr := mouse.NewTracker(mouse.DefaultConfig())
//	count := tr.Press(ev)            // 1, 2 or 3
//	if pt, ok := tr.Move(ev); ok {   // at most once per DragInterval
//	    sendDrag(pt)
//	}
//	if pt, ok := tr.Release(ev); ok { // last position not yet sent
//	    sendDrag(pt)
//	}
//
// Tracker is safe for concurrent use.
package mouse
