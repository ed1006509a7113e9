package line

import "fmt"

// DecodeStyles converts the engine's flat style array into ranges. The array
// holds (startDelta, length, styleID) triples; each startDelta is relative to
// the end of the previous range.
func DecodeStyles(raw []int) ([]StyleRange, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw)%3 != 0 {
		return nil, fmt.Errorf("style array length %d is not a multiple of 3", len(raw))
	}

	ranges := make([]StyleRange, 0, len(raw)/3)
	pos := 0
	for i := 0; i < len(raw); i += 3 {
		start := pos + raw[i]
		length := raw[i+1]
		if start < 0 || length < 0 {
			return nil, fmt.Errorf("style triple %d has negative start or length", i/3)
		}
		ranges = append(ranges, StyleRange{Start: start, Length: length, StyleID: raw[i+2]})
		pos = start + length
	}
	return ranges, nil
}
