package layout

import "testing"

func TestTabStopOffset(t *testing.T) {
	tabs := NewTabExpander(4)

	tests := []struct {
		col      int
		expected int
	}{
		{0, 4},
		{1, 3},
		{3, 1},
		{4, 4},
		{6, 2},
	}

	for _, tt := range tests {
		if got := tabs.TabStopOffset(tt.col); got != tt.expected {
			t.Errorf("TabStopOffset(%d) = %d, expected %d", tt.col, got, tt.expected)
		}
		if got := tabs.NextTabStop(tt.col); got != tt.col+tt.expected {
			t.Errorf("NextTabStop(%d) = %d, expected %d", tt.col, got, tt.col+tt.expected)
		}
	}
}

func TestTabExpanderDefaultsInvalidWidth(t *testing.T) {
	if got := NewTabExpander(0).TabWidth(); got != 4 {
		t.Errorf("expected default tab width 4, got %d", got)
	}
}
