package line

import (
	"testing"

	"github.com/dshills/xiview/internal/renderer/layout"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"foo\r\n", "foo"},
		{"foo\n", "foo"},
		{"foo\r", "foo\r"},
		{"foo\n\n", "foo\n"},
		{"\n", ""},
		{"", ""},
		{"bar", "bar"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNewKeepsRawText(t *testing.T) {
	l := New("foo\r\n", nil)

	if l.Text() != "foo" {
		t.Errorf("expected text %q, got %q", "foo", l.Text())
	}
	if l.Raw() != "foo\r\n" {
		t.Errorf("expected raw %q, got %q", "foo\r\n", l.Raw())
	}
	if !l.Valid() {
		t.Error("expected line to be valid")
	}
	if l.IsLaidOut() {
		t.Error("expected new line to have no layout")
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()

	if p.Valid() {
		t.Error("expected placeholder to be invalid")
	}
	if p.Text() != "" || p.Len() != 0 {
		t.Errorf("expected empty placeholder, got %q", p.Text())
	}
	if p.IsLaidOut() {
		t.Error("expected placeholder to have no layout")
	}
}

func TestSelectionFromStyles(t *testing.T) {
	l := New("hello world", []StyleRange{
		{Start: 0, Length: 5, StyleID: 2},
		{Start: 6, Length: 5, StyleID: SelectionStyleID},
	})

	if !l.HasSelection() {
		t.Fatal("expected selection")
	}
	if l.SelectedStartCharIndex() != 6 {
		t.Errorf("expected selection start 6, got %d", l.SelectedStartCharIndex())
	}
	if l.SelectedEndCharIndex() != 11 {
		t.Errorf("expected selection end 11, got %d", l.SelectedEndCharIndex())
	}
}

func TestNoSelection(t *testing.T) {
	l := New("hello", []StyleRange{{Start: 0, Length: 5, StyleID: 3}})

	if l.HasSelection() {
		t.Error("expected no selection")
	}
	if l.SelectedStartCharIndex() != 0 || l.SelectedEndCharIndex() != 0 {
		t.Error("expected zero selection indices")
	}
}

func TestWithStylesKeepsText(t *testing.T) {
	l := New("abc\n", nil)
	u := l.WithStyles([]StyleRange{{Start: 0, Length: 1, StyleID: 0}})

	if u == l {
		t.Fatal("expected a new line")
	}
	if u.Text() != "abc" || u.Raw() != "abc\n" {
		t.Errorf("expected text preserved, got %q / %q", u.Text(), u.Raw())
	}
	if l.HasSelection() {
		t.Error("expected original line untouched")
	}
}

func TestShapeIsIdempotent(t *testing.T) {
	e := layout.NewEngine(layout.DefaultMetrics())
	l := New("abc", nil)

	l.Shape(e)
	first := l.Layout()
	l.Shape(e)

	if l.Layout() != first {
		t.Error("expected Shape to keep an existing layout")
	}
	if l.Height(1) != 1 {
		t.Errorf("expected height 1, got %v", l.Height(1))
	}
	if p := l.CaretPosition(3); p.X != 3 {
		t.Errorf("expected caret x 3, got %v", p.X)
	}
}

func TestDecodeStyles(t *testing.T) {
	ranges, err := DecodeStyles([]int{2, 3, 0, 1, 4, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0] != (StyleRange{Start: 2, Length: 3, StyleID: 0}) {
		t.Errorf("unexpected first range %+v", ranges[0])
	}
	if ranges[1] != (StyleRange{Start: 6, Length: 4, StyleID: 7}) {
		t.Errorf("unexpected second range %+v", ranges[1])
	}

	if _, err := DecodeStyles([]int{1, 2}); err == nil {
		t.Error("expected error for partial triple")
	}
	if ranges, err := DecodeStyles(nil); err != nil || ranges != nil {
		t.Errorf("expected nil ranges for empty input, got %v %v", ranges, err)
	}
}

func TestIsNextToLineBreak(t *testing.T) {
	tests := []struct {
		text     string
		idx      int
		dir      Direction
		expected bool
	}{
		{"foo\r\n", 4, Backward, true},
		{"foo\r\n", 3, Backward, false},
		{"foo\r\n", 0, Backward, false},
		{"abc\n", 3, Forward, true},
		{"abc\n", 2, Forward, false},
		{"abc\n", 4, Forward, false},
		{"abc", 3, Forward, false},
		{"a\u2028b", 1, Forward, true},
		{"a\u2028b", 4, Backward, true},
		{"", 0, Forward, false},
		{"abc", -1, Backward, false},
	}

	for _, tt := range tests {
		if got := IsNextToLineBreak(tt.text, tt.idx, tt.dir); got != tt.expected {
			t.Errorf("IsNextToLineBreak(%q, %d, %v) = %v, expected %v", tt.text, tt.idx, tt.dir, got, tt.expected)
		}
	}
}
