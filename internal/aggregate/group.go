// Package aggregate holds the generic metric primitives: grouping,
// bucketing, ranking, cross-tabulation, cumulative curves and paired-field
// extraction. Every function is pure, total and safe on empty input.
package aggregate

import "careerlens/internal/tabular"

// NA is the category of blank or absent values.
const NA = "NA"

// CategoryValue is one {category, value} pair of a metric result.
type CategoryValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// grouper assigns items to categories in first-seen order. Keys are
// compared after normalization ignoring case; the first spelling seen is
// the one displayed. Blank values join the literal "NA" group.
type grouper struct {
	index   map[string]int
	display []string
}

func newGrouper() *grouper {
	return &grouper{index: make(map[string]int)}
}

func (g *grouper) slot(raw string) int {
	display, key := tabular.NormalizeCategory(raw)
	if display == "" {
		display, key = NA, "na"
	}
	if i, ok := g.index[key]; ok {
		return i
	}
	g.index[key] = len(g.display)
	g.display = append(g.display, display)
	return len(g.display) - 1
}

func (g *grouper) len() int { return len(g.display) }

// GroupCount counts items per category of key(item).
func GroupCount[T any](items []T, key func(T) string) []CategoryValue {
	g := newGrouper()
	var counts []float64
	for _, it := range items {
		i := g.slot(key(it))
		if i == len(counts) {
			counts = append(counts, 0)
		}
		counts[i]++
	}
	return pairs(g, counts)
}

// GroupSum totals val(item) per category of key(item).
func GroupSum[T any](items []T, key func(T) string, val func(T) float64) []CategoryValue {
	g := newGrouper()
	var sums []float64
	for _, it := range items {
		i := g.slot(key(it))
		if i == len(sums) {
			sums = append(sums, 0)
		}
		sums[i] += val(it)
	}
	return pairs(g, sums)
}

// GroupPercent reports, per category, the percentage of that category's own
// items for which match holds. The denominator is the group size, never the
// global count.
func GroupPercent[T any](items []T, key func(T) string, match func(T) bool) []CategoryValue {
	g := newGrouper()
	var hits, totals []float64
	for _, it := range items {
		i := g.slot(key(it))
		if i == len(totals) {
			hits = append(hits, 0)
			totals = append(totals, 0)
		}
		totals[i]++
		if match(it) {
			hits[i]++
		}
	}
	out := make([]CategoryValue, g.len())
	for i := range out {
		out[i] = CategoryValue{Category: g.display[i], Value: ratio(hits[i], totals[i]) * 100}
	}
	return out
}

// EntityAverage is the arithmetic mean of val(item) per entity of key(item).
func EntityAverage[T any](items []T, key func(T) string, val func(T) float64) []CategoryValue {
	g := newGrouper()
	var sums, counts []float64
	for _, it := range items {
		i := g.slot(key(it))
		if i == len(counts) {
			sums = append(sums, 0)
			counts = append(counts, 0)
		}
		sums[i] += val(it)
		counts[i]++
	}
	out := make([]CategoryValue, g.len())
	for i := range out {
		out[i] = CategoryValue{Category: g.display[i], Value: ratio(sums[i], counts[i])}
	}
	return out
}

// ratio divides, returning 0 for a zero denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func pairs(g *grouper, vals []float64) []CategoryValue {
	out := make([]CategoryValue, g.len())
	for i := range out {
		out[i] = CategoryValue{Category: g.display[i], Value: vals[i]}
	}
	return out
}
