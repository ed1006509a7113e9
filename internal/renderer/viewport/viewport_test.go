package viewport

import (
	"math"
	"testing"
)

type recordingListener struct {
	invalidations int
	ranges        [][2]int
}

func (l *recordingListener) Invalidate() {
	l.invalidations++
}

func (l *recordingListener) VisibleRangeChanged(first, last int) {
	l.ranges = append(l.ranges, [2]int{first, last})
}

func newTestController(height float64, lines int) (*Controller, *recordingListener) {
	l := &recordingListener{}
	c := NewController(Config{LineHeight: 10, Cushion: 5}, l)
	c.Resize(height)
	c.OnCacheReplaced(lines)
	return c, l
}

func checkInvariant(t *testing.T, c *Controller) {
	t.Helper()
	n := c.LineCount()
	if n == 0 {
		return
	}
	first, last := c.FirstVisible(), c.LastVisible()
	if first < 0 || first > last || last >= n {
		t.Fatalf("invariant violated: 0 <= %d <= %d < %d", first, last, n)
	}
}

func TestInitialState(t *testing.T) {
	c := NewController(DefaultConfig(), nil)
	if c.State() != StateEmpty {
		t.Errorf("expected empty, got %s", c.State())
	}
	if c.MaxScroll() != 1 {
		t.Errorf("expected max scroll 1, got %v", c.MaxScroll())
	}
}

func TestOnCacheReplacedComputesWindow(t *testing.T) {
	c, l := newTestController(100, 100)

	if c.MaxScroll() != 900 {
		t.Errorf("expected max scroll 900, got %v", c.MaxScroll())
	}
	if c.VisibleLineCount() != 15 {
		t.Errorf("expected 15 visible lines, got %d", c.VisibleLineCount())
	}
	if c.FirstVisible() != 0 || c.LastVisible() != 15 {
		t.Errorf("expected window 0..15, got %d..%d", c.FirstVisible(), c.LastVisible())
	}
	if c.State() != StateStable {
		t.Errorf("expected stable, got %s", c.State())
	}
	if len(l.ranges) == 0 || l.ranges[len(l.ranges)-1] != [2]int{0, 15} {
		t.Errorf("expected range 0..15 reported, got %v", l.ranges)
	}
	if l.invalidations != len(l.ranges) {
		t.Errorf("expected one invalidate per range, got %d and %d", l.invalidations, len(l.ranges))
	}
}

func TestSetScrollClamps(t *testing.T) {
	c, _ := newTestController(100, 100)

	c.SetScroll(-50)
	if c.ScrollOffset() != 0 {
		t.Errorf("expected 0, got %v", c.ScrollOffset())
	}

	c.SetScroll(10000)
	if c.ScrollOffset() != 900 {
		t.Errorf("expected 900, got %v", c.ScrollOffset())
	}
	if c.FirstVisible() != 90 || c.LastVisible() != 99 {
		t.Errorf("expected window 90..99, got %d..%d", c.FirstVisible(), c.LastVisible())
	}
	checkInvariant(t, c)
}

func TestSetScrollFloorsFirstLine(t *testing.T) {
	c, _ := newTestController(100, 100)

	c.SetScroll(255)
	if c.FirstVisible() != 25 || c.LastVisible() != 40 {
		t.Errorf("expected window 25..40, got %d..%d", c.FirstVisible(), c.LastVisible())
	}
}

func TestDegenerateWindowEmitsNothing(t *testing.T) {
	l := &recordingListener{}
	c := NewController(Config{LineHeight: 10, Cushion: 5}, l)
	c.Resize(100)
	c.OnCacheReplaced(1)

	if len(l.ranges) != 0 || l.invalidations != 0 {
		t.Errorf("expected no notifications, got %v", l.ranges)
	}
	if c.State() != StateSettling {
		t.Errorf("expected settling, got %s", c.State())
	}
	checkInvariant(t, c)
}

func TestShrinkingCacheKeepsInvariant(t *testing.T) {
	c, _ := newTestController(100, 100)
	c.SetScroll(900)

	for _, n := range []int{50, 10, 2, 1, 3, 0, 7} {
		c.OnCacheReplaced(n)
		checkInvariant(t, c)
	}
}

func TestEmptiedCacheReturnsToEmpty(t *testing.T) {
	c, l := newTestController(100, 100)
	reported := len(l.ranges)

	c.OnCacheReplaced(0)
	if c.State() != StateEmpty {
		t.Errorf("expected empty, got %s", c.State())
	}
	if _, _, ok := c.VisibleRange(); ok {
		t.Error("expected no visible range")
	}
	if len(l.ranges) != reported {
		t.Error("expected no range reported for an empty cache")
	}

	c.OnCacheReplaced(20)
	if c.State() != StateStable {
		t.Errorf("expected stable after refill, got %s", c.State())
	}
}

func TestOnEngineScrollTo(t *testing.T) {
	c, _ := newTestController(100, 100)

	if c.OnEngineScrollTo(10) {
		t.Error("expected no scroll for a visible line")
	}
	if c.ScrollOffset() != 0 {
		t.Errorf("expected offset unchanged, got %v", c.ScrollOffset())
	}

	if !c.OnEngineScrollTo(50) {
		t.Fatal("expected scroll for a line outside the window")
	}
	if c.ScrollOffset() != 500 {
		t.Errorf("expected offset 500, got %v", c.ScrollOffset())
	}

	c.OnEngineScrollTo(99)
	if c.ScrollOffset() != 900 {
		t.Errorf("expected offset clamped to 900, got %v", c.ScrollOffset())
	}
}

func TestScrollBy(t *testing.T) {
	c, _ := newTestController(100, 100)

	c.ScrollBy(-120)
	if c.ScrollOffset() != 30 {
		t.Errorf("expected offset 30, got %v", c.ScrollOffset())
	}
	c.ScrollBy(120)
	if c.ScrollOffset() != 0 {
		t.Errorf("expected offset 0, got %v", c.ScrollOffset())
	}
}

func TestResize(t *testing.T) {
	c, l := newTestController(100, 100)

	c.Resize(200)
	if c.VisibleLineCount() != 25 {
		t.Errorf("expected 25 visible lines, got %d", c.VisibleLineCount())
	}
	if c.MaxScroll() != 800 {
		t.Errorf("expected max scroll 800, got %v", c.MaxScroll())
	}
	if got := l.ranges[len(l.ranges)-1]; got != [2]int{0, 25} {
		t.Errorf("expected range 0..25, got %v", got)
	}
}

func TestScrollPercent(t *testing.T) {
	c, _ := newTestController(100, 100)
	c.SetScroll(450)
	if got := c.ScrollPercent(); math.Abs(got-50) > 1e-9 {
		t.Errorf("expected 50%%, got %v", got)
	}

	short, _ := newTestController(100, 3)
	if short.ScrollPercent() != 0 {
		t.Errorf("expected 0%% for a short document, got %v", short.ScrollPercent())
	}
}

func TestRowOffset(t *testing.T) {
	c, _ := newTestController(100, 100)
	c.SetScroll(255)
	if got := c.RowOffset(); got != -5 {
		t.Errorf("expected row offset -5, got %v", got)
	}
	if got := c.LineTop(30); got != 45 {
		t.Errorf("expected line 30 at 45, got %v", got)
	}
}
