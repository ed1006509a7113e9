package style

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/xiview/internal/protocol"
	"github.com/dshills/xiview/internal/renderer/core"
	"github.com/dshills/xiview/internal/renderer/line"
)

func TestDecodeARGB(t *testing.T) {
	tests := []struct {
		name string
		v    int64
		want core.Color
	}{
		{"opaque", 0xFF112233, core.ColorFromRGB(0x11, 0x22, 0x33)},
		{"transparent", 0x00FFFFFF, core.ColorDefault},
		{"half over black", 0x80FF0000, core.ColorFromRGB(128, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeARGB(tt.v, colorful.Color{})
			if !got.Equals(tt.want) {
				t.Errorf("DecodeARGB(%#x) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestRegistryDefine(t *testing.T) {
	r := NewRegistry(core.ColorFromRGB(0, 0, 0))

	s := r.Define(protocol.StyleParams{
		ID:        2,
		FgColor:   0xFFFF8000,
		BgColor:   0,
		Weight:    700,
		Italic:    true,
		Underline: true,
	})

	if !s.Foreground.Equals(core.ColorFromRGB(255, 128, 0)) {
		t.Errorf("unexpected foreground %v", s.Foreground)
	}
	if !s.Background.IsDefault() {
		t.Errorf("expected default background, got %v", s.Background)
	}
	for _, a := range []core.Attribute{core.AttrBold, core.AttrItalic, core.AttrUnderline} {
		if !s.Attributes.Has(a) {
			t.Errorf("expected attribute %v", a)
		}
	}

	got, ok := r.Lookup(2)
	if !ok || !got.Equals(s) {
		t.Error("expected style 2 to be registered")
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 styles, got %d", r.Len())
	}
}

func TestRegistryResolveLayers(t *testing.T) {
	r := NewRegistry(core.ColorDefault)
	r.Define(protocol.StyleParams{ID: 3, FgColor: 0xFF00FF00})

	ranges := []line.StyleRange{
		{Start: 0, Length: 6, StyleID: 3},
		{Start: 4, Length: 4, StyleID: line.SelectionStyleID},
		{Start: 8, Length: 2, StyleID: 99},
	}
	spans := r.Spans(ranges)
	if len(spans) != 2 {
		t.Fatalf("expected unknown style skipped, got %d spans", len(spans))
	}

	green := core.ColorFromRGB(0, 255, 0)

	s := r.Resolve(1, spans)
	if !s.Foreground.Equals(green) || !s.Background.IsDefault() {
		t.Errorf("offset 1: unexpected style %+v", s)
	}

	s = r.Resolve(5, spans)
	if !s.Foreground.Equals(green) || !s.Background.Equals(DefaultSelection.Background) {
		t.Errorf("offset 5: expected engine fg under selection bg, got %+v", s)
	}

	s = r.Resolve(7, spans)
	if !s.Foreground.IsDefault() || !s.Background.Equals(DefaultSelection.Background) {
		t.Errorf("offset 7: expected selection only, got %+v", s)
	}

	if s := r.Resolve(9, spans); !s.Equals(core.DefaultStyle()) {
		t.Errorf("offset 9: expected base style, got %+v", s)
	}
}

func TestResolverLayerToggle(t *testing.T) {
	r := NewResolver()
	spans := []Span{{Start: 0, End: 2, Style: DefaultSelection, Layer: LayerSelection}}

	r.SetLayerEnabled(LayerSelection, false)
	if r.IsLayerEnabled(LayerSelection) {
		t.Error("expected selection layer disabled")
	}
	if s := r.Resolve(0, spans); !s.Equals(core.DefaultStyle()) {
		t.Errorf("expected base style with layer disabled, got %+v", s)
	}
	if r.IsLayerEnabled(LayerCount) {
		t.Error("expected out of range layer disabled")
	}
}
