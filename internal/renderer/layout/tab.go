package layout

// TabExpander provides tab stop arithmetic in cell columns.
type TabExpander struct {
	tabWidth int
}

// NewTabExpander creates a tab expander with the given tab width.
func NewTabExpander(tabWidth int) *TabExpander {
	if tabWidth < 1 {
		tabWidth = 4
	}
	return &TabExpander{tabWidth: tabWidth}
}

// TabWidth returns the current tab width.
func (t *TabExpander) TabWidth() int {
	return t.tabWidth
}

// NextTabStop returns the next tab stop column after the given column.
func (t *TabExpander) NextTabStop(col int) int {
	return col + t.TabStopOffset(col)
}

// TabStopOffset returns how many cells a tab at the given column occupies.
func (t *TabExpander) TabStopOffset(col int) int {
	return t.tabWidth - (col % t.tabWidth)
}
