// Package style turns the engine's style definitions and per-line style
// ranges into terminal cell styles.
//
// Styles are resolved in layers: the base style, then engine-defined styles
// in range order, then the selection on top. Later layers overlay earlier
// ones; a default color in an upper layer lets the lower color show through.
package style

import "github.com/dshills/xiview/internal/renderer/core"

// Layer represents a style layer with priority.
type Layer uint8

const (
	// LayerBase is the base/default style layer.
	LayerBase Layer = iota

	// LayerEngine holds styles defined by the engine through set_style.
	LayerEngine

	// LayerSelection is the selection highlight layer.
	LayerSelection

	// LayerCount is the number of layers.
	LayerCount
)

// String returns the string representation of the layer.
func (l Layer) String() string {
	switch l {
	case LayerBase:
		return "base"
	case LayerEngine:
		return "engine"
	case LayerSelection:
		return "selection"
	default:
		return "unknown"
	}
}

// Span is a styled byte range of a line at a given layer.
type Span struct {
	// Start is the first byte offset (inclusive).
	Start int

	// End is the last byte offset (exclusive).
	End int

	// Style is the style to apply.
	Style core.Style

	// Layer is the priority layer.
	Layer Layer
}

// Contains returns true if offset falls within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Resolver resolves styles by combining layers.
type Resolver struct {
	baseStyle    core.Style
	layerEnabled [LayerCount]bool
}

// NewResolver creates a resolver with every layer enabled.
func NewResolver() *Resolver {
	r := &Resolver{baseStyle: core.DefaultStyle()}
	for i := range r.layerEnabled {
		r.layerEnabled[i] = true
	}
	return r
}

// SetBaseStyle sets the base style.
func (r *Resolver) SetBaseStyle(style core.Style) {
	r.baseStyle = style
}

// BaseStyle returns the base style.
func (r *Resolver) BaseStyle() core.Style {
	return r.baseStyle
}

// SetLayerEnabled enables or disables a layer.
func (r *Resolver) SetLayerEnabled(layer Layer, enabled bool) {
	if layer < LayerCount {
		r.layerEnabled[layer] = enabled
	}
}

// IsLayerEnabled returns true if a layer is enabled.
func (r *Resolver) IsLayerEnabled(layer Layer) bool {
	if layer >= LayerCount {
		return false
	}
	return r.layerEnabled[layer]
}

// Resolve combines the spans covering offset, lower layers first.
func (r *Resolver) Resolve(offset int, spans []Span) core.Style {
	result := r.baseStyle
	for layer := LayerBase; layer < LayerCount; layer++ {
		if !r.layerEnabled[layer] {
			continue
		}
		for _, span := range spans {
			if span.Layer == layer && span.Contains(offset) {
				result = result.Merge(span.Style)
			}
		}
	}
	return result
}
