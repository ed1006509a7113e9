package backend

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/xiview/internal/renderer/core"
)

// ScreenBuffer provides double-buffered rendering with change tracking.
// It maintains two buffers: front (displayed) and back (drawing).
// Flush writes only the cells that differ to a Backend.
type ScreenBuffer struct {
	width, height int
	front         [][]core.Cell
	back          [][]core.Cell
	fullRedraw    bool
}

// NewScreenBuffer creates a screen buffer with the given dimensions.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	sb := &ScreenBuffer{}
	sb.Resize(width, height)
	return sb
}

// Resize reallocates the buffer. The next Flush redraws everything.
func (sb *ScreenBuffer) Resize(width, height int) {
	sb.width = max(width, 0)
	sb.height = max(height, 0)
	sb.front = allocCells(sb.width, sb.height)
	sb.back = allocCells(sb.width, sb.height)
	sb.fullRedraw = true
}

// Size returns the buffer dimensions.
func (sb *ScreenBuffer) Size() (width, height int) {
	return sb.width, sb.height
}

// SetCell sets a cell in the back buffer.
func (sb *ScreenBuffer) SetCell(x, y int, cell core.Cell) {
	if x >= 0 && x < sb.width && y >= 0 && y < sb.height {
		sb.back[y][x] = cell
	}
}

// Cell returns a cell from the back buffer.
func (sb *ScreenBuffer) Cell(x, y int) core.Cell {
	if x >= 0 && x < sb.width && y >= 0 && y < sb.height {
		return sb.back[y][x]
	}
	return core.EmptyCell()
}

// Clear resets the back buffer to empty cells.
func (sb *ScreenBuffer) Clear() {
	empty := core.EmptyCell()
	for y := range sb.back {
		for x := range sb.back[y] {
			sb.back[y][x] = empty
		}
	}
}

// FillRow fills row y from column x to the right edge with style.
func (sb *ScreenBuffer) FillRow(x, y int, style core.Style) {
	for ; x < sb.width; x++ {
		sb.SetCell(x, y, core.NewStyledCell(' ', style))
	}
}

// SetString writes s starting at (x, y) and returns the column after the
// last cell written. Wide characters take two cells; the second is a
// zero-width continuation cell.
func (sb *ScreenBuffer) SetString(x, y int, s string, style core.Style) int {
	g := uniseg.NewGraphemes(s)
	for g.Next() && x < sb.width {
		runes := g.Runes()
		w := runewidth.StringWidth(g.Str())
		if w == 0 {
			continue
		}
		if x+w > sb.width {
			break
		}
		sb.SetCell(x, y, core.Cell{Rune: runes[0], Combining: runes[1:], Width: w, Style: style})
		for i := 1; i < w; i++ {
			sb.SetCell(x+i, y, core.Cell{Width: 0, Style: style})
		}
		x += w
	}
	return x
}

// DirtyCount returns the number of cells that differ from the front buffer.
func (sb *ScreenBuffer) DirtyCount() int {
	n := 0
	for y := range sb.back {
		for x := range sb.back[y] {
			if sb.fullRedraw || !sb.back[y][x].Equals(sb.front[y][x]) {
				n++
			}
		}
	}
	return n
}

// Flush writes changed cells to b, calls Show and makes the back buffer
// current. It returns the number of cells written.
func (sb *ScreenBuffer) Flush(b Backend) int {
	n := 0
	for y := range sb.back {
		for x := range sb.back[y] {
			c := sb.back[y][x]
			if !sb.fullRedraw && c.Equals(sb.front[y][x]) {
				continue
			}
			if c.Width > 0 {
				b.SetCell(x, y, c)
			}
			sb.front[y][x] = c
			n++
		}
	}
	sb.fullRedraw = false
	b.Show()
	return n
}

// MarkFullRedraw forces the next Flush to write every cell.
func (sb *ScreenBuffer) MarkFullRedraw() {
	sb.fullRedraw = true
}
