package core

import "testing"

func TestColorEquals(t *testing.T) {
	tests := []struct {
		a, b Color
		want bool
	}{
		{ColorDefault, ColorDefault, true},
		{ColorDefault, ColorFromRGB(0, 0, 0), false},
		{ColorFromRGB(1, 2, 3), ColorFromRGB(1, 2, 3), true},
		{ColorFromRGB(1, 2, 3), ColorFromRGB(1, 2, 4), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equals(tt.b); got != tt.want {
			t.Errorf("%v.Equals(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestColorString(t *testing.T) {
	if got := ColorFromRGB(255, 128, 0).String(); got != "#FF8000" {
		t.Errorf("expected #FF8000, got %s", got)
	}
	if got := ColorDefault.String(); got != "default" {
		t.Errorf("expected default, got %s", got)
	}
}

func TestStyleMerge(t *testing.T) {
	base := DefaultStyle().WithForeground(ColorFromRGB(1, 1, 1)).WithAttributes(AttrBold)
	top := DefaultStyle().WithBackground(ColorFromRGB(9, 9, 9)).WithAttributes(AttrItalic)

	got := base.Merge(top)
	if !got.Foreground.Equals(ColorFromRGB(1, 1, 1)) {
		t.Errorf("expected base foreground kept, got %v", got.Foreground)
	}
	if !got.Background.Equals(ColorFromRGB(9, 9, 9)) {
		t.Errorf("expected top background, got %v", got.Background)
	}
	if !got.Attributes.Has(AttrBold) || !got.Attributes.Has(AttrItalic) {
		t.Errorf("expected bold and italic, got %v", got.Attributes)
	}
}

func TestCellEquals(t *testing.T) {
	a := NewStyledCell('x', DefaultStyle())
	b := NewStyledCell('x', DefaultStyle())
	if !a.Equals(b) {
		t.Error("expected equal cells")
	}
	b.Combining = []rune{'\u0301'}
	if a.Equals(b) {
		t.Error("expected combining runes to differ")
	}
	if !EmptyCell().Equals(Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}) {
		t.Error("expected blank default cell")
	}
}
