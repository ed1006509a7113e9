// Package viewport decides which lines of the line cache are materialized.
//
// The Controller tracks a scroll offset in layout pixels and derives the
// visible line window from it, padded by a cushion of extra lines so the
// engine has time to deliver content before it scrolls into view. After
// every effective recomputation it tells its Listener to redraw and to
// report the new window to the engine.
package viewport

import (
	"math"
	"sync"
)

// DefaultCushion is the number of lines materialized beyond what fits.
const DefaultCushion = 5

// WheelFactor converts a wheel delta into a scroll distance.
const WheelFactor = -0.25

// State is the controller's lifecycle state.
type State uint8

const (
	// StateEmpty means the line cache has no lines.
	StateEmpty State = iota
	// StateSettling means lines exist but no usable window has been computed.
	StateSettling
	// StateStable means the window spans more than one line.
	StateStable
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSettling:
		return "settling"
	case StateStable:
		return "stable"
	default:
		return "unknown"
	}
}

// Listener receives the controller's notifications. Methods are called
// without the controller's lock held.
type Listener interface {
	// Invalidate requests a local redraw.
	Invalidate()
	// VisibleRangeChanged reports the inclusive visible window.
	VisibleRangeChanged(first, last int)
}

// Config configures a Controller.
type Config struct {
	// LineHeight is the height of one line in layout pixels.
	LineHeight float64
	// Cushion is the number of extra lines kept materialized.
	Cushion int
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		LineHeight: 16,
		Cushion:    DefaultCushion,
	}
}

// Controller maintains the visible line window.
type Controller struct {
	mu sync.RWMutex

	lineHeight float64
	cushion    int

	scroll         float64
	viewportHeight float64
	lineCount      int

	first        int
	last         int
	maxScroll    float64
	visibleCount int
	state        State

	listener Listener
}

// NewController creates a controller. listener may be nil.
func NewController(cfg Config, listener Listener) *Controller {
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = DefaultConfig().LineHeight
	}
	if cfg.Cushion < 0 {
		cfg.Cushion = 0
	}
	c := &Controller{
		lineHeight: cfg.LineHeight,
		cushion:    cfg.Cushion,
		listener:   listener,
		maxScroll:  1,
	}
	c.recomputeBounds()
	return c
}

// SetListener replaces the listener.
func (c *Controller) SetListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// SetScroll moves the scroll offset, clamped to [0, MaxScroll].
func (c *Controller) SetScroll(value float64) {
	c.mu.Lock()
	n := c.setScrollLocked(value)
	c.mu.Unlock()
	n.deliver()
}

// ScrollBy scrolls by a wheel delta.
func (c *Controller) ScrollBy(wheelDelta float64) {
	c.mu.Lock()
	n := c.setScrollLocked(c.scroll + wheelDelta*WheelFactor)
	c.mu.Unlock()
	n.deliver()
}

// OnCacheReplaced re-derives the window for a cache of lineCount lines,
// keeping the scroll offset.
func (c *Controller) OnCacheReplaced(lineCount int) {
	c.mu.Lock()
	c.lineCount = max(lineCount, 0)
	switch {
	case c.lineCount == 0:
		c.state = StateEmpty
	case c.state == StateEmpty:
		c.state = StateSettling
	}
	c.recomputeBounds()
	n := c.setScrollLocked(c.scroll)
	c.mu.Unlock()
	n.deliver()
}

// Resize sets the viewport height in layout pixels.
func (c *Controller) Resize(height float64) {
	c.mu.Lock()
	c.viewportHeight = max(height, 0)
	c.recomputeBounds()
	n := c.setScrollLocked(c.scroll)
	c.mu.Unlock()
	n.deliver()
}

// OnEngineScrollTo scrolls to line when it is outside the visible window.
// It returns true if the scroll offset was changed.
func (c *Controller) OnEngineScrollTo(line int) bool {
	c.mu.Lock()
	if line >= c.first && line <= c.last {
		c.mu.Unlock()
		return false
	}
	n := c.setScrollLocked(math.Min(c.maxScroll, float64(line)*c.lineHeight))
	c.mu.Unlock()
	n.deliver()
	return true
}

// recomputeBounds derives maxScroll and the visible line count.
func (c *Controller) recomputeBounds() {
	c.maxScroll = math.Max(1, float64(c.lineCount)*c.lineHeight-c.viewportHeight)
	c.visibleCount = int(math.Ceil(c.viewportHeight/c.lineHeight)) + c.cushion
}

// setScrollLocked clamps value, re-derives the window and returns the
// notifications to deliver once the lock is released.
func (c *Controller) setScrollLocked(value float64) notification {
	c.scroll = math.Min(math.Max(value, 0), c.maxScroll)

	if c.lineCount == 0 {
		c.first, c.last = 0, 0
		return notification{}
	}

	first := int(math.Floor(c.scroll / c.lineHeight))
	last := min(first+c.visibleCount, c.lineCount-1)
	if last <= first {
		// Degenerate window: keep the stored bounds inside the cache but
		// report nothing.
		c.first = min(first, c.lineCount-1)
		c.last = c.first
		return notification{}
	}

	c.first, c.last = first, last
	c.state = StateStable
	return notification{listener: c.listener, emit: true, first: first, last: last}
}

type notification struct {
	listener    Listener
	emit        bool
	first, last int
}

func (n notification) deliver() {
	if !n.emit || n.listener == nil {
		return
	}
	n.listener.Invalidate()
	n.listener.VisibleRangeChanged(n.first, n.last)
}

// ScrollOffset returns the scroll offset in layout pixels.
func (c *Controller) ScrollOffset() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scroll
}

// MaxScroll returns the largest allowed scroll offset.
func (c *Controller) MaxScroll() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxScroll
}

// FirstVisible returns the first line of the window.
func (c *Controller) FirstVisible() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.first
}

// LastVisible returns the last line of the window.
func (c *Controller) LastVisible() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// VisibleRange returns the inclusive window. ok is false while the cache
// is empty.
func (c *Controller) VisibleRange() (first, last int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.first, c.last, c.lineCount > 0
}

// VisibleLineCount returns the number of lines that fit plus the cushion.
func (c *Controller) VisibleLineCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visibleCount
}

// LineHeight returns the configured line height.
func (c *Controller) LineHeight() float64 {
	return c.lineHeight
}

// ViewportHeight returns the viewport height in layout pixels.
func (c *Controller) ViewportHeight() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewportHeight
}

// LineCount returns the line count of the last cache seen.
func (c *Controller) LineCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lineCount
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
