package aggregate

import (
	"math"
	"sort"
	"strconv"
)

// Closure selects which end of a bucket is inclusive.
type Closure int

const (
	// LeftClosed buckets are [lo, lo+w).
	LeftClosed Closure = iota
	// RightClosed buckets are (lo, lo+w], except the bucket ending at w
	// which also holds 0. Used for salary bands such as "0-5 LPA".
	RightClosed
)

// Bucket is one non-empty histogram bin.
type Bucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Label string  `json:"label"`
	Count int     `json:"count"`
}

const bucketEpsilon = 1e-9

// maxBucketIndex bounds |v/w|. Past 2^53 adjacent bucket bounds are no
// longer distinct float64 values, so such a value has no bucket to land in.
const maxBucketIndex = 1 << 53

// Histogram bins the finite values by width. Buckets come back sorted by
// lower bound and only buckets with members are emitted, so the counts sum to
// the number of finite inputs whose |v/w| stays below 2^53. A non-positive
// width yields no buckets.
func Histogram(values []float64, width float64, closure Closure) []Bucket {
	if !(width > 0) || math.IsInf(width, 0) {
		return nil
	}
	counts := make(map[int64]int)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v/width) >= maxBucketIndex {
			continue
		}
		counts[bucketIndex(v, width, closure)]++
	}

	idx := make([]int64, 0, len(counts))
	for k := range counts {
		idx = append(idx, k)
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })

	out := make([]Bucket, len(idx))
	for i, k := range idx {
		lo := tidy(float64(k) * width)
		hi := tidy(float64(k+1) * width)
		out[i] = Bucket{Lower: lo, Upper: hi, Label: formatBound(lo) + "-" + formatBound(hi), Count: counts[k]}
	}
	return out
}

// HistogramOf extracts values with val and bins those that parsed.
func HistogramOf[T any](items []T, val func(T) (float64, bool), width float64, closure Closure) []Bucket {
	values := make([]float64, 0, len(items))
	for _, it := range items {
		if v, ok := val(it); ok {
			values = append(values, v)
		}
	}
	return Histogram(values, width, closure)
}

func bucketIndex(v, width float64, closure Closure) int64 {
	q := v / width
	if r := math.Round(q); math.Abs(q-r) < bucketEpsilon {
		q = r
	}
	if closure == RightClosed {
		if q == 0 {
			return 0
		}
		return int64(math.Ceil(q)) - 1
	}
	return int64(math.Floor(q))
}

// tidy strips representation noise such as 0.30000000000000004.
func tidy(f float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 9, 64), 64)
	if err != nil {
		return f
	}
	return v
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String renders the bucket as "label:count".
func (b Bucket) String() string { return b.Label + ":" + strconv.Itoa(b.Count) }
