package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/xiview/internal/config"
	"github.com/dshills/xiview/internal/input"
	"github.com/dshills/xiview/internal/input/key"
	"github.com/dshills/xiview/internal/input/keymap"
	"github.com/dshills/xiview/internal/input/mouse"
	"github.com/dshills/xiview/internal/logging"
	"github.com/dshills/xiview/internal/protocol"
	"github.com/dshills/xiview/internal/renderer"
	"github.com/dshills/xiview/internal/renderer/backend"
	"github.com/dshills/xiview/internal/renderer/core"
	"github.com/dshills/xiview/internal/renderer/cursor"
	"github.com/dshills/xiview/internal/renderer/layout"
	"github.com/dshills/xiview/internal/renderer/linecache"
	"github.com/dshills/xiview/internal/renderer/statusline"
	"github.com/dshills/xiview/internal/renderer/style"
	"github.com/dshills/xiview/internal/renderer/viewport"
)

// blinkTick is how often the loop checks the caret blink.
const blinkTick = 100 * time.Millisecond

// Client is the part of the protocol client a view needs.
// protocol.Client implements it.
type Client interface {
	input.Sender
	Scroll(first, end int) error
	RequestLines(first, end int) error
}

// View is one document view. Run's goroutine owns the interpreter, the
// viewport, the caret anchor and the renderer; everything else reaches
// them through Post.
type View struct {
	client   Client
	interp   *linecache.Interpreter
	store    *linecache.Store
	viewport *viewport.Controller
	anchor   *cursor.Anchor
	styles   *style.Registry
	render   *renderer.Renderer
	shaper   *layout.Engine
	input    *input.Dispatcher
	logger   *logging.Logger
	metrics  *Metrics

	posts chan func()
	done  chan struct{}
	dirty bool

	finding bool
	query   []rune

	mu  sync.Mutex
	err error
}

// ViewOption configures a View.
type ViewOption func(*viewOptions)

type viewOptions struct {
	logger  *logging.Logger
	metrics *Metrics
	table   *keymap.Table
}

// WithViewLogger sets the view's logger.
func WithViewLogger(l *logging.Logger) ViewOption {
	return func(o *viewOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithViewMetrics sets the view's metrics.
func WithViewMetrics(m *Metrics) ViewOption {
	return func(o *viewOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithKeymap sets the edit command table.
func WithKeymap(t *keymap.Table) ViewOption {
	return func(o *viewOptions) {
		o.table = t
	}
}

// NewView creates a view drawing to b and sending edits through client.
func NewView(client Client, b backend.Backend, cfg *config.Config, opts ...ViewOption) (*View, error) {
	o := viewOptions{logger: logging.Null(), metrics: NewMetrics()}
	for _, opt := range opts {
		opt(&o)
	}

	policy, err := linecache.ParseCaretPolicy(cfg.View.CaretPolicy)
	if err != nil {
		return nil, &InitError{Component: "view", Err: err}
	}

	v := &View{
		client:  client,
		store:   linecache.NewStore(),
		anchor:  cursor.NewAnchor(),
		styles:  style.NewRegistry(core.ColorFromRGB(0, 0, 0)),
		logger:  o.logger,
		metrics: o.metrics,
		posts:   make(chan func(), 64),
		done:    make(chan struct{}),
	}
	v.interp = linecache.NewInterpreter(client,
		linecache.WithCaretPolicy(policy),
		linecache.WithLogger(o.logger.WithComponent("linecache")))
	v.viewport = viewport.NewController(viewport.Config{
		LineHeight: cfg.View.LineHeight,
		Cushion:    cfg.View.Cushion,
	}, v)
	v.shaper = layout.NewEngine(layout.Metrics{
		CellWidth:  cfg.View.CellWidth,
		CellHeight: cfg.View.LineHeight,
		TabWidth:   cfg.View.TabWidth,
		WrapWidth:  cfg.View.WrapWidth,
	})
	v.render = renderer.New(b, v.styles, renderer.Options{
		LineHeight:      cfg.View.LineHeight,
		CellWidth:       cfg.View.CellWidth,
		ShowLineNumbers: true,
		Blink:           cursor.DefaultBlinkConfig(),
	})
	v.input = input.NewDispatcher(client, v.store, v.viewport, v.anchor,
		input.WithTable(o.table),
		input.WithTracker(mouse.NewTracker(mouse.Config{
			DoubleClickTime:     cfg.Input.DoubleClickTime.Std(),
			DoubleClickDistance: mouse.DefaultConfig().DoubleClickDistance,
			DragInterval:        cfg.Input.DragInterval.Std(),
		})),
		input.WithLogger(o.logger.WithComponent("input")))
	return v, nil
}

// Run processes protocol events and posted functions until ctx is
// cancelled. A closed events channel leaves the view up, disconnected.
func (v *View) Run(ctx context.Context, events <-chan protocol.Event) error {
	defer close(v.done)

	ticker := time.NewTicker(blinkTick)
	defer ticker.Stop()

	v.redraw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			v.handleEvent(ev)
		case fn := <-v.posts:
			fn()
		case now := <-ticker.C:
			if v.render.TickBlink(now) {
				v.dirty = true
			}
		}
		if v.dirty {
			v.redraw()
		}
	}
}

// Post runs fn on the view loop. It returns false once the loop has exited.
func (v *View) Post(fn func()) bool {
	select {
	case v.posts <- fn:
		v.metrics.RecordInput()
		return true
	case <-v.done:
		v.metrics.RecordInputDropped()
		return false
	}
}

// Done is closed when Run returns.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// Err returns the error that failed the view, or nil.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Metrics returns the view's metrics.
func (v *View) Metrics() *Metrics {
	return v.metrics
}

// Store returns the published line cache.
func (v *View) Store() *linecache.Store {
	return v.store
}

func (v *View) fail(err error) {
	v.mu.Lock()
	v.err = &ViewError{Err: err}
	v.mu.Unlock()

	v.metrics.RecordDesync()
	v.logger.Error("view out of sync with engine: %v", err)
	v.render.Status().SetState("failed")
	v.render.Status().SetMessage("view out of sync with the engine; reopen the file", statusline.MessageError)
	v.dirty = true
}

func (v *View) handleEvent(ev protocol.Event) {
	switch ev := ev.(type) {
	case protocol.UpdateEvent:
		v.applyUpdate(ev.Update.Ops)
	case protocol.StyleEvent:
		v.styles.Define(ev.Style)
		v.dirty = true
	case protocol.ScrollToEvent:
		if v.Err() != nil {
			return
		}
		v.viewport.OnEngineScrollTo(ev.Line)
	case protocol.StatusEvent:
		v.handleStatus(ev)
	}
}

func (v *View) applyUpdate(ops []protocol.Op) {
	if v.Err() != nil {
		v.metrics.RecordIgnoredUpdate()
		return
	}

	start := time.Now()
	res, err := v.interp.Apply(v.store.Load(), ops)
	if err != nil {
		if errors.Is(err, linecache.ErrProtocolDesync) {
			v.fail(err)
			return
		}
		v.metrics.RecordMalformed()
		v.logger.Warn("dropping update: %v", err)
		return
	}

	if res.HasCursor {
		v.anchor.Apply(res.Cursor)
	}
	v.store.Publish(res.Snapshot)
	v.viewport.OnCacheReplaced(res.Snapshot.Len())
	v.dirty = true
	v.metrics.RecordUpdate(time.Since(start))
}

func (v *View) handleStatus(ev protocol.StatusEvent) {
	status := v.render.Status()
	switch {
	case ev.Connected:
		if v.Err() == nil {
			status.SetState("connected")
		}
	case ev.Err != nil:
		status.SetState("disconnected")
		status.SetMessage("connection lost: "+ev.Err.Error(), statusline.MessageError)
		v.logger.Error("connection lost: %v", ev.Err)
	default:
		status.SetState("disconnected")
	}
	v.dirty = true
}

// Invalidate implements viewport.Listener.
func (v *View) Invalidate() {
	v.dirty = true
}

// VisibleRangeChanged implements viewport.Listener. It reports the window
// to the engine and asks for any lines it has not delivered yet.
func (v *View) VisibleRangeChanged(first, last int) {
	if err := v.client.Scroll(first, last+1); err != nil {
		v.logger.Warn("send scroll: %v", err)
		return
	}
	if lo, hi, ok := v.store.Load().Invalid(first, last); ok {
		if err := v.client.RequestLines(lo, hi+1); err != nil {
			v.logger.Warn("send request: %v", err)
		}
	}
}

// Resize sets the screen size in cells.
func (v *View) Resize(width, height int) {
	v.render.Resize(width, height)
	v.viewport.Resize(v.render.TextHeight())
	v.dirty = true
}

// SetFilename shows name on the status line.
func (v *View) SetFilename(name string) {
	v.render.Status().SetFilename(name)
	v.dirty = true
}

// ShowMessage puts a message on the status line.
func (v *View) ShowMessage(msg string, t statusline.MessageType) {
	v.render.Status().SetMessage(msg, t)
	v.dirty = true
}

// SetCaretPolicy changes the caret correction policy.
func (v *View) SetCaretPolicy(p linecache.CaretPolicy) {
	v.interp.SetCaretPolicy(p)
}

// SetKeymap replaces the edit command table.
func (v *View) SetKeymap(t *keymap.Table) {
	v.input.SetTable(t)
}

// HandleKey routes a key press to the find prompt or the dispatcher.
func (v *View) HandleKey(ev key.Event) {
	v.render.ResetBlink(time.Now())
	if v.Err() == nil {
		v.render.Status().ClearMessage()
	}
	v.dirty = true

	if v.finding {
		v.handlePromptKey(ev)
		return
	}
	if ev.Key == key.KeyRune && ev.Rune == 'f' && ev.Modifiers == key.ModCtrl {
		v.finding = true
		v.query = v.query[:0]
		v.showPrompt()
		return
	}
	if ev.IsText() {
		v.input.HandleChar(ev.Rune)
		return
	}
	v.input.HandleKey(ev)
}

func (v *View) handlePromptKey(ev key.Event) {
	switch {
	case ev.Key == key.KeyEscape:
		v.finding = false
		v.render.Status().ClearMessage()
	case ev.Key == key.KeyEnter:
		v.finding = false
		v.render.Status().ClearMessage()
		if len(v.query) > 0 {
			v.input.Find(string(v.query))
		}
	case ev.Key == key.KeyBackspace:
		if len(v.query) > 0 {
			v.query = v.query[:len(v.query)-1]
		}
		v.showPrompt()
	case ev.IsText():
		v.query = append(v.query, ev.Rune)
		v.showPrompt()
	}
}

func (v *View) showPrompt() {
	v.render.Status().SetMessage(fmt.Sprintf("Find: %s", string(v.query)), statusline.MessageInfo)
}

// HandleMouse routes a pointer event to the dispatcher. The event's
// position is relative to the screen; the gutter is subtracted here.
func (v *View) HandleMouse(ev mouse.Event) {
	ev.Position.X -= v.render.TextOrigin(v.store.Load().Len())
	switch ev.Action {
	case mouse.ActionPress:
		v.render.ResetBlink(time.Now())
		v.input.PointerPressed(ev)
	case mouse.ActionMove:
		v.input.PointerMoved(ev)
	case mouse.ActionRelease:
		v.input.PointerReleased(ev)
	}
}

func (v *View) redraw() {
	start := time.Now()
	snap := v.store.Load()
	frame := renderer.Frame{Snapshot: snap, First: 0, Last: -1, Anchor: v.anchor}
	if first, last, ok := v.viewport.VisibleRange(); ok {
		snap.Shape(v.shaper, first, last)
		frame.First, frame.Last = first, last
		frame.RowOffset = v.viewport.RowOffset()
	}

	status := v.render.Status()
	status.SetTotalLines(snap.Len())
	status.SetPosition(v.anchor.LineIndex(), v.anchor.CharIndex())
	status.SetScrollPercent(int(v.viewport.ScrollPercent()))

	v.render.Draw(frame)
	v.dirty = false
	v.metrics.RecordFrame(time.Since(start))
}
