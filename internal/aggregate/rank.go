package aggregate

import "sort"

// TopN returns the n items with the highest score, descending. Ties keep
// their input order. n <= 0 yields an empty result.
func TopN[T any](items []T, n int, score func(T) float64) []T {
	if n <= 0 || len(items) == 0 {
		return []T{}
	}
	ranked := make([]T, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// SortDesc orders category values by value, descending, stable on ties.
func SortDesc(values []CategoryValue) []CategoryValue {
	out := make([]CategoryValue, len(values))
	copy(out, values)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// CumulativePoint is one rank of a concentration curve.
type CumulativePoint struct {
	Rank    int     `json:"rank"`
	Entity  string  `json:"entity"`
	Value   float64 `json:"value"`
	Running float64 `json:"running"`
	Share   float64 `json:"share"`
}

// Cumulative sorts entities descending by value and emits the running sum
// by rank. Share is the running sum as a percentage of the grand total, 0
// when the total is 0.
func Cumulative(values []CategoryValue) []CumulativePoint {
	sorted := SortDesc(values)
	var total float64
	for _, v := range sorted {
		total += v.Value
	}
	out := make([]CumulativePoint, len(sorted))
	var running float64
	for i, v := range sorted {
		running += v.Value
		out[i] = CumulativePoint{
			Rank:    i + 1,
			Entity:  v.Category,
			Value:   v.Value,
			Running: running,
			Share:   ratio(running, total) * 100,
		}
	}
	return out
}
