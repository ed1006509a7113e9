package renderer

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/dshills/xiview/internal/renderer/backend"
	"github.com/dshills/xiview/internal/renderer/core"
	"github.com/dshills/xiview/internal/renderer/cursor"
	"github.com/dshills/xiview/internal/renderer/gutter"
	"github.com/dshills/xiview/internal/renderer/line"
	"github.com/dshills/xiview/internal/renderer/linecache"
	"github.com/dshills/xiview/internal/renderer/selection"
	"github.com/dshills/xiview/internal/renderer/statusline"
	"github.com/dshills/xiview/internal/renderer/style"
)

// PlaceholderStyle draws lines the engine has not delivered yet.
var PlaceholderStyle = core.DefaultStyle().WithAttributes(core.AttrDim)

// Options configures the renderer.
type Options struct {
	// LineHeight and CellWidth are the layout size of one terminal cell.
	LineHeight float64
	CellWidth  float64

	ShowLineNumbers bool

	Blink cursor.BlinkConfig
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		LineHeight:      16,
		CellWidth:       8,
		ShowLineNumbers: true,
		Blink:           cursor.BlinkConfig{Enabled: false},
	}
}

// Frame is everything one redraw needs.
type Frame struct {
	Snapshot *linecache.Snapshot

	// First and Last are the inclusive window reported by the viewport.
	First, Last int

	// RowOffset is the top edge of line First relative to the text area,
	// in layout pixels. It is zero or negative.
	RowOffset float64

	// Anchor is the caret. Its pixel position is updated as a side effect.
	Anchor *cursor.Anchor
}

// Renderer composes frames. It is driven by a single goroutine.
type Renderer struct {
	backend backend.Backend
	buf     *backend.ScreenBuffer
	styles  *style.Registry
	gutter  *gutter.Gutter
	status  *statusline.StatusLine
	blink   *cursor.Blink
	opts    Options

	width, height int
	frames        atomic.Uint64
}

// New creates a renderer drawing to b with styles from styles.
func New(b backend.Backend, styles *style.Registry, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.LineHeight <= 0 {
		opts.LineHeight = def.LineHeight
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = def.CellWidth
	}
	if styles == nil {
		styles = style.NewRegistry(core.ColorFromRGB(0, 0, 0))
	}
	w, h := b.Size()
	r := &Renderer{
		backend: b,
		buf:     backend.NewScreenBuffer(w, h),
		styles:  styles,
		gutter:  gutter.New(gutter.Config{ShowLineNumbers: opts.ShowLineNumbers, MinWidth: 3}),
		status:  statusline.New(),
		blink:   cursor.NewBlink(opts.Blink, time.Now()),
		opts:    opts,
		width:   w,
		height:  h,
	}
	return r
}

// Status returns the status line model.
func (r *Renderer) Status() *statusline.StatusLine {
	return r.status
}

// Styles returns the style registry.
func (r *Renderer) Styles() *style.Registry {
	return r.styles
}

// Resize sets the screen size in cells. The next Draw repaints everything.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.buf.Resize(width, height)
}

// Size returns the screen size in cells.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// TextRows returns the number of rows available to text.
func (r *Renderer) TextRows() int {
	return max(r.height-1, 0)
}

// TextHeight returns the text area height in layout pixels.
func (r *Renderer) TextHeight() float64 {
	return float64(r.TextRows()) * r.opts.LineHeight
}

// GutterWidth returns the gutter width in cells for lineCount lines.
func (r *Renderer) GutterWidth(lineCount int) int {
	return r.gutter.Width(lineCount)
}

// TextColumns returns the number of columns available to text.
func (r *Renderer) TextColumns(lineCount int) int {
	return max(r.width-r.GutterWidth(lineCount), 1)
}

// TextOrigin returns the left edge of the text area in layout pixels.
func (r *Renderer) TextOrigin(lineCount int) float64 {
	return float64(r.GutterWidth(lineCount)) * r.opts.CellWidth
}

// ResetBlink makes the caret solid, e.g. after input.
func (r *Renderer) ResetBlink(now time.Time) {
	r.blink.Reset(now)
}

// TickBlink advances the caret blink and returns true if a redraw is needed.
func (r *Renderer) TickBlink(now time.Time) bool {
	return r.blink.Update(now)
}

// FrameCount returns the number of frames drawn.
func (r *Renderer) FrameCount() uint64 {
	return r.frames.Load()
}

// Draw composes f and flushes the changed cells to the backend.
func (r *Renderer) Draw(f Frame) {
	r.buf.Clear()

	caretX, caretY, caretOK := 0, 0, false
	if n := f.Snapshot.Len(); n > 0 {
		rows := r.TextRows()
		gw := r.gutter.Width(n)
		top := f.RowOffset
		for i := max(f.First, 0); i <= f.Last && i < n; i++ {
			l := f.Snapshot.Line(i)
			row := int(math.Ceil(top / r.opts.LineHeight))
			if row >= rows {
				break
			}
			if row >= 0 {
				r.buf.SetString(0, row, r.gutter.Label(i, gw), PlaceholderStyle)
			}
			r.drawLine(l, row, gw, rows)

			if f.Anchor != nil && i == f.Anchor.LineIndex() {
				f.Anchor.Place(l, top)
				p := l.CaretPosition(f.Anchor.CharIndex())
				caretX = gw + int(math.Floor(p.X/r.opts.CellWidth))
				caretY = row + int(math.Floor(p.Y/r.opts.LineHeight))
				caretOK = caretY >= 0 && caretY < rows && caretX < r.width
			}
			top += l.Height(r.opts.LineHeight)
		}
	}

	if r.height > 0 {
		r.status.Render(r.buf, r.height-1)
	}

	if caretOK && r.blink.Visible() {
		r.backend.ShowCursor(caretX, caretY)
	} else {
		r.backend.HideCursor()
	}
	r.buf.Flush(r.backend)
	r.frames.Add(1)
}

// drawLine draws one line whose first visual row is row.
func (r *Renderer) drawLine(l *line.Line, row, gw, rows int) {
	if !l.Valid() {
		if row >= 0 {
			r.buf.SetString(gw, row, "~", PlaceholderStyle)
		}
		return
	}

	tl := l.Layout()
	if tl == nil {
		if row >= 0 {
			r.buf.SetString(gw, row, l.Text(), core.DefaultStyle())
		}
		return
	}

	spans := r.styles.Spans(l.Styles())
	for _, c := range tl.Clusters() {
		y := row + c.Row
		if y < 0 || y >= rows || c.Width == 0 {
			continue
		}
		x := gw + c.Col
		st := r.styles.Resolve(c.Offset, spans)
		if c.Text == "\t" {
			for k := 0; k < c.Width; k++ {
				r.buf.SetCell(x+k, y, core.NewStyledCell(' ', st))
			}
			continue
		}
		r.buf.SetString(x, y, c.Text, st)
	}

	r.paintSelection(l, row, gw, rows)
}

// paintSelection applies the selection background over the selection's
// cells, including trailing cells past the last glyph of a wrapped row.
func (r *Renderer) paintSelection(l *line.Line, row, gw, rows int) {
	sel, ok := r.styles.Lookup(line.SelectionStyleID)
	if !ok || sel.Background.IsDefault() {
		return
	}
	over := core.DefaultStyle().WithBackground(sel.Background)

	for _, rect := range selection.Bounds(l, 0) {
		y := row + int(math.Floor(rect.Y/r.opts.LineHeight))
		if y < 0 || y >= rows {
			continue
		}
		x0 := gw + int(math.Floor(rect.X/r.opts.CellWidth))
		n := int(math.Ceil(rect.Width / r.opts.CellWidth))
		for x := x0; x < x0+n; x++ {
			c := r.buf.Cell(x, y)
			c.Style = c.Style.Merge(over)
			r.buf.SetCell(x, y, c)
		}
	}
}
