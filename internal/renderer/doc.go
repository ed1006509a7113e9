// Package renderer draws a document view onto a terminal backend.
//
// The renderer is responsible for:
//   - Drawing the visible window of the line cache with engine styles
//   - Painting the selection and placing the caret
//   - The line number gutter and the status line
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│           Renderer (composer)           │
//	├─────────────────────────────────────────┤
//	│ linecache │ viewport │ style │ gutter   │
//	├─────────────────────────────────────────┤
//	│    ScreenBuffer (diffed double buffer)  │
//	├─────────────────────────────────────────┤
//	│    Backend: Terminal (tcell) │ Null     │
//	└─────────────────────────────────────────┘
//
// Line layouts are in layout pixels whose cell is CellWidth x LineHeight,
// so one cluster row is one terminal row.
//
// Usage:
//
//	term, _ := backend.NewTerminal(8, 16)
//	r := renderer.New(term, styles, renderer.DefaultOptions())
//	r.Resize(term.Size())
//	r.Draw(renderer.Frame{Snapshot: store.Load(), First: first, Last: last})
package renderer
