// Package layout shapes a single line of text into monospace cells.
//
// A TextLayout is the opaque shaping handle attached to a displayed line. It
// maps between byte offsets in the line text and positions in a pixel space
// whose unit is one cell (CellWidth x CellHeight), wraps at a configured
// column, and answers caret and hit-test queries.
package layout

import (
	"math"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Metrics configures how text is shaped.
type Metrics struct {
	// CellWidth and CellHeight are the pixel size of one cell.
	CellWidth  float64
	CellHeight float64

	// TabWidth is the tab stop interval in cells.
	TabWidth int

	// WrapWidth is the column at which lines wrap. 0 disables wrapping.
	WrapWidth int
}

// DefaultMetrics returns metrics for a terminal grid: one cell is one unit.
func DefaultMetrics() Metrics {
	return Metrics{
		CellWidth:  1,
		CellHeight: 1,
		TabWidth:   4,
	}
}

// Engine shapes text with fixed metrics.
type Engine struct {
	metrics Metrics
	tabs    *TabExpander
}

// NewEngine creates a layout engine.
func NewEngine(m Metrics) *Engine {
	if m.CellWidth <= 0 {
		m.CellWidth = 1
	}
	if m.CellHeight <= 0 {
		m.CellHeight = 1
	}
	if m.WrapWidth < 0 {
		m.WrapWidth = 0
	}
	return &Engine{
		metrics: m,
		tabs:    NewTabExpander(m.TabWidth),
	}
}

// Metrics returns the engine's metrics.
func (e *Engine) Metrics() Metrics {
	return e.metrics
}

// Cluster is one grapheme cluster placed on the cell grid.
type Cluster struct {
	// Text is the cluster's source text.
	Text string
	// Offset and Size locate the cluster in the line text, in bytes.
	Offset int
	Size   int
	// Row and Col are the cell position of the cluster.
	Row int
	Col int
	// Width is the number of cells the cluster occupies.
	Width int
}

// TextLayout is the shaped form of one line.
type TextLayout struct {
	text     string
	clusters []Cluster
	rows     int
	cols     int
	endRow   int
	endCol   int
	cellW    float64
	cellH    float64
}

// Shape lays out text on the cell grid.
func (e *Engine) Shape(text string) *TextLayout {
	l := &TextLayout{
		text:  text,
		rows:  1,
		cellW: e.metrics.CellWidth,
		cellH: e.metrics.CellHeight,
	}

	row, col := 0, 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		from, to := g.Positions()
		s := g.Str()

		var w int
		if s == "\t" {
			w = e.tabs.TabStopOffset(col)
		} else {
			w = runewidth.StringWidth(s)
		}

		if e.metrics.WrapWidth > 0 && w > 0 && col > 0 && col+w > e.metrics.WrapWidth {
			row++
			col = 0
		}

		l.clusters = append(l.clusters, Cluster{
			Text:   s,
			Offset: from,
			Size:   to - from,
			Row:    row,
			Col:    col,
			Width:  w,
		})

		col += w
		if col > l.cols {
			l.cols = col
		}
	}

	l.rows = row + 1
	l.endRow = row
	l.endCol = col
	return l
}

// Text returns the shaped text.
func (l *TextLayout) Text() string {
	return l.text
}

// Clusters returns the placed clusters in text order.
func (l *TextLayout) Clusters() []Cluster {
	return l.clusters
}

// Rows returns the number of visual rows (at least 1).
func (l *TextLayout) Rows() int {
	return l.rows
}

// Bounds returns the layout bounds relative to the line origin.
func (l *TextLayout) Bounds() Rect {
	return Rect{
		Width:  float64(l.cols) * l.cellW,
		Height: l.Height(),
	}
}

// Height returns the laid-out height including trailing whitespace rows.
func (l *TextLayout) Height() float64 {
	return float64(l.rows) * l.cellH
}

// CaretPosition returns the pixel position of the caret placed before the
// byte at index. Indices past the end place the caret after the last cluster.
func (l *TextLayout) CaretPosition(index int) Point {
	if index < 0 {
		index = 0
	}
	for _, c := range l.clusters {
		if c.Offset+c.Size > index {
			return Point{X: float64(c.Col) * l.cellW, Y: float64(c.Row) * l.cellH}
		}
	}
	return Point{X: float64(l.endCol) * l.cellW, Y: float64(l.endRow) * l.cellH}
}

// HitTest returns the byte index of the cluster under (x, y), relative to
// the line origin. ok is false when the point lies outside the shaped
// glyphs, e.g. past the end of a row.
func (l *TextLayout) HitTest(x, y float64) (index int, ok bool) {
	if y < 0 || x < 0 {
		return 0, false
	}
	row := int(math.Floor(y / l.cellH))
	col := int(math.Floor(x / l.cellW))
	if row >= l.rows {
		return 0, false
	}

	for _, c := range l.clusters {
		if c.Row != row || c.Width == 0 {
			continue
		}
		if col >= c.Col && col < c.Col+c.Width {
			return c.Offset, true
		}
	}
	return 0, false
}
