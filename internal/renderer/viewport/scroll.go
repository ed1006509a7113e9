package viewport

// ScrollState captures the controller's scroll position.
type ScrollState struct {
	Offset       float64
	MaxScroll    float64
	FirstVisible int
	LastVisible  int
	LineCount    int
}

// GetScrollState returns the current scroll state.
func (c *Controller) GetScrollState() ScrollState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ScrollState{
		Offset:       c.scroll,
		MaxScroll:    c.maxScroll,
		FirstVisible: c.first,
		LastVisible:  c.last,
		LineCount:    c.lineCount,
	}
}

// ScrollPercent returns how far through the document the view is, 0-100.
// Documents that fit in the viewport report 0.
func (c *Controller) ScrollPercent() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if float64(c.lineCount)*c.lineHeight <= c.viewportHeight || c.maxScroll <= 0 {
		return 0
	}
	return c.scroll / c.maxScroll * 100
}

// LineTop returns the top edge of line relative to the viewport, in layout
// pixels, assuming uniform line height.
func (c *Controller) LineTop(line int) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return float64(line)*c.lineHeight - c.scroll
}

// RowOffset returns the offset of the first visible line's top edge from
// the viewport top. It is zero or negative.
func (c *Controller) RowOffset() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return float64(c.first)*c.lineHeight - c.scroll
}
