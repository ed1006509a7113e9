// Package gutter formats the line number column drawn left of the text.
package gutter

import "strconv"

// Config holds gutter configuration.
type Config struct {
	// ShowLineNumbers enables line number display.
	ShowLineNumbers bool

	// MinWidth is the minimum number of digit columns.
	MinWidth int
}

// DefaultConfig returns the default gutter configuration.
func DefaultConfig() Config {
	return Config{
		ShowLineNumbers: true,
		MinWidth:        3,
	}
}

// Gutter computes the gutter width and line labels.
type Gutter struct {
	cfg Config
}

// New creates a gutter.
func New(cfg Config) *Gutter {
	if cfg.MinWidth < 1 {
		cfg.MinWidth = 1
	}
	return &Gutter{cfg: cfg}
}

// Width returns the number of cells the gutter occupies for a document of
// lineCount lines, including one separating space. A hidden gutter is 0.
func (g *Gutter) Width(lineCount int) int {
	if !g.cfg.ShowLineNumbers {
		return 0
	}
	return CalculateWidth(lineCount, g.cfg.MinWidth) + 1
}

// Label returns the 1-based number of line, right aligned in a gutter of
// width cells.
func (g *Gutter) Label(line, width int) string {
	if width <= 1 {
		return ""
	}
	return PadLeft(strconv.Itoa(line+1), width-1) + " "
}

// PadLeft pads a string with spaces on the left to the specified width.
func PadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	padding := make([]byte, width-len(s))
	for i := range padding {
		padding[i] = ' '
	}
	return string(padding) + s
}

// CalculateWidth calculates the minimum width needed to display line numbers
// for the given line count.
func CalculateWidth(lineCount, minWidth int) int {
	digits := len(strconv.Itoa(max(lineCount, 1)))
	if digits < minWidth {
		return minWidth
	}
	return digits
}
