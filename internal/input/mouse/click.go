package mouse

import (
	"time"

	"github.com/dshills/xiview/internal/renderer/layout"
)

// clickTracker tracks click patterns for double and triple clicks.
type clickTracker struct {
	maxTime     time.Duration
	maxDistance float64

	lastPos   layout.Point
	lastTime  time.Time
	lastCount int
}

func newClickTracker(maxTime time.Duration, maxDistance float64) *clickTracker {
	return &clickTracker{
		maxTime:     maxTime,
		maxDistance: maxDistance,
	}
}

// recordClick records a click and returns the click count (1, 2, or 3).
// The count wraps back to 1 after 3.
func (t *clickTracker) recordClick(pos layout.Point, timestamp time.Time) int {
	if t.isPartOfSequence(pos, timestamp) {
		t.lastCount++
		if t.lastCount > 3 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}

	t.lastPos = pos
	t.lastTime = timestamp
	return t.lastCount
}

func (t *clickTracker) isPartOfSequence(pos layout.Point, timestamp time.Time) bool {
	if t.lastCount == 0 || t.lastTime.IsZero() {
		return false
	}

	// Negative elapsed time means clock skew; start a new sequence.
	elapsed := timestamp.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}
	return Distance(pos, t.lastPos) <= t.maxDistance
}

func (t *clickTracker) reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
	t.lastPos = layout.Point{}
}
