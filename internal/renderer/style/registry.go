package style

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/xiview/internal/protocol"
	"github.com/dshills/xiview/internal/renderer/core"
	"github.com/dshills/xiview/internal/renderer/line"
)

// BoldWeight is the smallest font weight drawn as bold.
const BoldWeight = 600

// DefaultSelection is the selection style used until the engine defines one.
var DefaultSelection = core.DefaultStyle().WithBackground(core.ColorFromRGB(60, 90, 130))

// Registry holds the styles the engine has defined with set_style. It is
// written by the view loop and read by the renderer.
type Registry struct {
	mu       sync.RWMutex
	styles   map[int]core.Style
	resolver *Resolver
	backdrop colorful.Color
}

// NewRegistry creates a registry whose translucent colors are composited
// over backdrop.
func NewRegistry(backdrop core.Color) *Registry {
	r := &Registry{
		styles:   map[int]core.Style{line.SelectionStyleID: DefaultSelection},
		resolver: NewResolver(),
	}
	r.backdrop = toColorful(backdrop)
	return r
}

// Define records a style definition and returns the resulting style.
func (r *Registry) Define(p protocol.StyleParams) core.Style {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := core.DefaultStyle()
	s.Foreground = DecodeARGB(p.FgColor, r.backdrop)
	s.Background = DecodeARGB(p.BgColor, r.backdrop)
	if p.Weight >= BoldWeight {
		s.Attributes |= core.AttrBold
	}
	if p.Italic {
		s.Attributes |= core.AttrItalic
	}
	if p.Underline {
		s.Attributes |= core.AttrUnderline
	}

	r.styles[p.ID] = s
	return s
}

// Lookup returns the style defined for id.
func (r *Registry) Lookup(id int) (core.Style, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.styles[id]
	return s, ok
}

// Len returns the number of defined styles, including the selection.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.styles)
}

// SetBaseStyle sets the style under every span.
func (r *Registry) SetBaseStyle(s core.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolver.SetBaseStyle(s)
}

// Spans converts a line's style ranges into resolvable spans. Ranges whose
// style is unknown are skipped.
func (r *Registry) Spans(ranges []line.StyleRange) []Span {
	if len(ranges) == 0 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	spans := make([]Span, 0, len(ranges))
	for _, rg := range ranges {
		s, ok := r.styles[rg.StyleID]
		if !ok || rg.Length == 0 {
			continue
		}
		layer := LayerEngine
		if rg.StyleID == line.SelectionStyleID {
			layer = LayerSelection
		}
		spans = append(spans, Span{Start: rg.Start, End: rg.End(), Style: s, Layer: layer})
	}
	return spans
}

// Resolve returns the style at offset given spans from Spans.
func (r *Registry) Resolve(offset int, spans []Span) core.Style {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolver.Resolve(offset, spans)
}

// DecodeARGB unpacks a color sent as 0xAARRGGBB. A zero alpha means the
// color is unset; partial alpha is composited over backdrop.
func DecodeARGB(v int64, backdrop colorful.Color) core.Color {
	u := uint32(v)
	a := uint8(u >> 24)
	if a == 0 {
		return core.ColorDefault
	}
	c := core.ColorFromRGB(uint8(u>>16), uint8(u>>8), uint8(u))
	if a == 0xff {
		return c
	}
	blended := backdrop.BlendRgb(toColorful(c), float64(a)/255).Clamped()
	r, g, b := blended.RGB255()
	return core.ColorFromRGB(r, g, b)
}

func toColorful(c core.Color) colorful.Color {
	if c.IsDefault() {
		return colorful.Color{}
	}
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
