package aggregate

import "math"

// Point is one scatter tuple; Z is set only for three-field extraction.
type Point struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Z     *float64 `json:"z,omitempty"`
	Label string   `json:"label,omitempty"`
}

// Extractor reads a numeric field, reporting false when it is not usable.
type Extractor[T any] func(T) (float64, bool)

// Pairs emits one {x, y} point per item, dropping items where either value
// is missing or non-finite.
func Pairs[T any](items []T, x, y Extractor[T], label func(T) string) []Point {
	out := make([]Point, 0, len(items))
	for _, it := range items {
		xv, ok := finite(x(it))
		if !ok {
			continue
		}
		yv, ok := finite(y(it))
		if !ok {
			continue
		}
		p := Point{X: xv, Y: yv}
		if label != nil {
			p.Label = label(it)
		}
		out = append(out, p)
	}
	return out
}

// Triples is Pairs with a third value, dropped on the same terms.
func Triples[T any](items []T, x, y, z Extractor[T], label func(T) string) []Point {
	out := make([]Point, 0, len(items))
	for _, it := range items {
		xv, okx := finite(x(it))
		yv, oky := finite(y(it))
		zv, okz := finite(z(it))
		if !okx || !oky || !okz {
			continue
		}
		p := Point{X: xv, Y: yv, Z: &zv}
		if label != nil {
			p.Label = label(it)
		}
		out = append(out, p)
	}
	return out
}

func finite(v float64, ok bool) (float64, bool) {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
