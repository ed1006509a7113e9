package mouse

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dshills/xiview/internal/input/key"
	"github.com/dshills/xiview/internal/renderer/layout"
)

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button.
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
	// ButtonWheelUp indicates a wheel step away from the user.
	ButtonWheelUp
	// ButtonWheelDown indicates a wheel step toward the user.
	ButtonWheelDown
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonWheelUp:
		return "wheel-up"
	case ButtonWheelDown:
		return "wheel-down"
	default:
		return "none"
	}
}

// IsWheel returns true for wheel steps.
func (b Button) IsWheel() bool {
	return b == ButtonWheelUp || b == ButtonWheelDown
}

// WheelDelta is the wheel delta reported for one wheel step.
const WheelDelta = 120

// Delta returns the wheel delta for a wheel button: positive away from the
// user, negative toward. Other buttons return 0.
func (b Button) Delta() float64 {
	switch b {
	case ButtonWheelUp:
		return WheelDelta
	case ButtonWheelDown:
		return -WheelDelta
	default:
		return 0
	}
}

// Action represents the type of mouse action.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
	// ActionMove indicates pointer movement.
	ActionMove
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionMove:
		return "move"
	default:
		return "none"
	}
}

// Event represents a pointer event.
type Event struct {
	// Position is in layout pixels relative to the text area.
	Position layout.Point

	Button    Button
	Modifiers key.Modifier
	Action    Action
	Timestamp time.Time
}

// Distance returns the Manhattan distance between two points.
func Distance(a, b layout.Point) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// Config configures a Tracker.
type Config struct {
	// DoubleClickTime is the maximum time between clicks of one sequence.
	DoubleClickTime time.Duration

	// DoubleClickDistance is the maximum pointer travel, in layout pixels,
	// between clicks of one sequence.
	DoubleClickDistance float64

	// DragInterval is the minimum time between two drag reports.
	DragInterval time.Duration
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		DoubleClickTime:     400 * time.Millisecond,
		DoubleClickDistance: 16,
		DragInterval:        50 * time.Millisecond,
	}
}

// Tracker follows the primary button through press, drag and release.
type Tracker struct {
	mu sync.Mutex

	click   *clickTracker
	limiter *rate.Limiter

	dragging  bool
	modifiers key.Modifier
	pending   layout.Point
	hasPend   bool
}

// NewTracker creates a tracker.
func NewTracker(cfg Config) *Tracker {
	if cfg.DragInterval <= 0 {
		cfg.DragInterval = DefaultConfig().DragInterval
	}
	return &Tracker{
		click:   newClickTracker(cfg.DoubleClickTime, cfg.DoubleClickDistance),
		limiter: rate.NewLimiter(rate.Every(cfg.DragInterval), 1),
	}
}

// Press records a primary button press, starts a drag and returns the
// click count of the sequence the press belongs to.
func (t *Tracker) Press(ev Event) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := stamp(ev.Timestamp)
	count := t.click.recordClick(ev.Position, ts)
	t.dragging = true
	t.modifiers = ev.Modifiers
	t.hasPend = false
	// The press itself consumes the first token so a drag report never
	// immediately follows the click.
	t.limiter.AllowN(ts, 1)
	return count
}

// Move records pointer movement. It returns the position to report when a
// drag is active and the sampling interval has elapsed; otherwise the
// position is held back for Release.
func (t *Tracker) Move(ev Event) (layout.Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dragging {
		return layout.Point{}, false
	}
	if t.limiter.AllowN(stamp(ev.Timestamp), 1) {
		t.hasPend = false
		return ev.Position, true
	}
	t.pending = ev.Position
	t.hasPend = true
	return layout.Point{}, false
}

// Release ends the drag and returns the last held-back position, if any.
func (t *Tracker) Release(ev Event) (layout.Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dragging {
		return layout.Point{}, false
	}
	t.dragging = false
	if !t.hasPend {
		return layout.Point{}, false
	}
	t.hasPend = false
	return t.pending, true
}

// IsDragging returns true between Press and Release.
func (t *Tracker) IsDragging() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dragging
}

// Modifiers returns the modifiers held when the current drag started.
func (t *Tracker) Modifiers() key.Modifier {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.modifiers
}

// Reset clears all tracker state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.click.reset()
	t.dragging = false
	t.hasPend = false
}

func stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now()
	}
	return ts
}
