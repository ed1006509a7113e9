package input

import (
	"time"

	"github.com/dshills/xiview/internal/input/key"
	"github.com/dshills/xiview/internal/input/keymap"
	"github.com/dshills/xiview/internal/input/mouse"
	"github.com/dshills/xiview/internal/logging"
	"github.com/dshills/xiview/internal/protocol"
	"github.com/dshills/xiview/internal/renderer/cursor"
	"github.com/dshills/xiview/internal/renderer/layout"
	"github.com/dshills/xiview/internal/renderer/line"
	"github.com/dshills/xiview/internal/renderer/linecache"
)

// Sender sends edit commands to the engine. protocol.Client implements it.
type Sender interface {
	Edit(method string) error
	Insert(chars string) error
	Find(query string) error
	Click(line, col, mods, count int) error
	Drag(line, col, mods int) error
}

// Viewport is the part of the viewport controller the dispatcher uses.
type Viewport interface {
	VisibleRange() (first, last int, ok bool)
	RowOffset() float64
	LineHeight() float64
	ScrollBy(wheelDelta float64)
}

// Dispatcher maps input events to edit commands.
type Dispatcher struct {
	sender   Sender
	store    *linecache.Store
	viewport Viewport
	anchor   *cursor.Anchor

	table   *keymap.Table
	tracker *mouse.Tracker
	logger  *logging.Logger
	metrics *Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTable sets the edit command table. The default table is used otherwise.
func WithTable(t *keymap.Table) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.table = t
		}
	}
}

// WithTracker sets the pointer tracker.
func WithTracker(t *mouse.Tracker) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracker = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics sets the metrics tracker.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// NewDispatcher creates a dispatcher reading lines from store and the caret
// from anchor.
func NewDispatcher(sender Sender, store *linecache.Store, vp Viewport, anchor *cursor.Anchor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:   sender,
		store:    store,
		viewport: vp,
		anchor:   anchor,
		table:    keymap.DefaultTable(),
		tracker:  mouse.NewTracker(mouse.DefaultConfig()),
		logger:   logging.Null(),
		metrics:  NewMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetTable replaces the edit command table.
func (d *Dispatcher) SetTable(t *keymap.Table) {
	if t != nil {
		d.table = t
	}
}

// Table returns the edit command table.
func (d *Dispatcher) Table() *keymap.Table {
	return d.table
}

// Metrics returns the dispatcher's metrics.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// HandleKey maps a key press to edit commands. It returns false when the
// key has no meaning for the view.
func (d *Dispatcher) HandleKey(ev key.Event) bool {
	start := time.Now()
	defer func() { d.metrics.recordLatency(time.Since(start)) }()
	d.metrics.keyEvents.Add(1)

	if a, ok := d.table.Lookup(ev); ok {
		d.send(a.Command)
		return true
	}

	shift := ev.Modifiers.HasShift()
	switch {
	case ev.Key == key.KeyLeft && ev.Modifiers&^key.ModShift == 0:
		d.moveLeft(shift)
		return true
	case ev.Key == key.KeyRight && ev.Modifiers&^key.ModShift == 0:
		d.moveRight(shift)
		return true
	}

	d.metrics.unmatchedKeys.Add(1)
	return false
}

func (d *Dispatcher) moveLeft(shift bool) {
	if d.anchor.IsAtStartOfLine() {
		if shift {
			d.send(protocol.MoveUpAndModifySelection, protocol.MoveToRightEndOfLineAndModifySelection)
		} else {
			d.send(protocol.MoveUp, protocol.MoveToRightEndOfLine)
		}
		return
	}
	if shift {
		d.send(protocol.MoveLeftAndModifySelection)
	} else {
		d.send(protocol.MoveLeft)
	}
}

func (d *Dispatcher) moveRight(shift bool) {
	if d.atLineBreak() {
		if shift {
			d.send(protocol.MoveToLeftEndOfLineAndModifySelection, protocol.MoveDownAndModifySelection)
		} else {
			d.send(protocol.MoveToLeftEndOfLine, protocol.MoveDown)
		}
		return
	}
	if shift {
		d.send(protocol.MoveRightAndModifySelection)
	} else {
		d.send(protocol.MoveRight)
	}
}

// atLineBreak reports whether the caret sits just before the raw line's
// line break.
func (d *Dispatcher) atLineBreak() bool {
	l := d.store.Load().Line(d.anchor.LineIndex())
	if l == nil {
		return false
	}
	return line.IsNextToLineBreak(l.Raw(), d.anchor.CharIndex(), line.Forward)
}

// send issues methods in order, stopping at the first failure.
func (d *Dispatcher) send(methods ...string) {
	for _, m := range methods {
		err := d.sender.Edit(m)
		d.metrics.recordSend(err)
		if err != nil {
			d.logger.Warn("send %s: %v", m, err)
			return
		}
	}
}

// HandleChar inserts a typed character. Backspace, newline and carriage
// return are left to HandleKey.
func (d *Dispatcher) HandleChar(r rune) bool {
	d.metrics.charEvents.Add(1)
	switch r {
	case '\b', '\n', '\r':
		return false
	}
	err := d.sender.Insert(string(r))
	d.metrics.recordSend(err)
	if err != nil {
		d.logger.Warn("send insert: %v", err)
	}
	return true
}

// Find asks the engine to search for query, ignoring case.
func (d *Dispatcher) Find(query string) {
	err := d.sender.Find(query)
	d.metrics.recordSend(err)
	if err != nil {
		d.logger.Warn("send find: %v", err)
	}
}

// Wheel scrolls the viewport by a wheel delta.
func (d *Dispatcher) Wheel(delta float64) {
	d.metrics.pointerEvents.Add(1)
	d.viewport.ScrollBy(delta)
}

// LineAndCursorIndexFromPos resolves a point in the text area to a
// document position, falling back to the caret when the point lies outside
// every visible line.
func (d *Dispatcher) LineAndCursorIndexFromPos(pt layout.Point) cursor.Position {
	prev := d.anchor.Position()
	first, last, ok := d.viewport.VisibleRange()
	if !ok {
		return prev
	}
	visible := d.store.Load().Range(first, last)
	pos, _ := mouse.Locate(visible, first, d.viewport.RowOffset(), d.viewport.LineHeight(), pt, prev)
	return pos
}

// PointerPressed sends a click at the pressed position and starts a drag.
func (d *Dispatcher) PointerPressed(ev mouse.Event) {
	d.metrics.pointerEvents.Add(1)
	if ev.Button.IsWheel() {
		d.Wheel(ev.Button.Delta())
		return
	}
	if ev.Button != mouse.ButtonLeft {
		return
	}
	count := d.tracker.Press(ev)
	pos := d.LineAndCursorIndexFromPos(ev.Position)
	err := d.sender.Click(pos.Line, pos.Char, clickModifiers(ev.Modifiers), count)
	d.metrics.recordSend(err)
	if err != nil {
		d.logger.Warn("send click: %v", err)
	}
}

// PointerMoved reports drag positions while the button is held, at most
// once per sampling interval.
func (d *Dispatcher) PointerMoved(ev mouse.Event) {
	d.metrics.pointerEvents.Add(1)
	pt, ok := d.tracker.Move(ev)
	if !ok {
		if d.tracker.IsDragging() {
			d.metrics.dragsHeld.Add(1)
		}
		return
	}
	d.drag(pt)
}

// PointerReleased ends the drag, reporting the last held-back position.
func (d *Dispatcher) PointerReleased(ev mouse.Event) {
	d.metrics.pointerEvents.Add(1)
	if pt, ok := d.tracker.Release(ev); ok {
		d.drag(pt)
	}
}

func (d *Dispatcher) drag(pt layout.Point) {
	pos := d.LineAndCursorIndexFromPos(pt)
	err := d.sender.Drag(pos.Line, pos.Char, clickModifiers(d.tracker.Modifiers()))
	d.metrics.recordSend(err)
	if err != nil {
		d.logger.Warn("send drag: %v", err)
		return
	}
	d.metrics.dragsSent.Add(1)
}

// clickModifiers encodes modifiers the way the engine expects them in
// click and drag parameters.
func clickModifiers(m key.Modifier) int {
	var out int
	if m.HasShift() {
		out |= protocol.ClickModShift
	}
	if m.HasCtrl() {
		out |= protocol.ClickModCtrl
	}
	return out
}
