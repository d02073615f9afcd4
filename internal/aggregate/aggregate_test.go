package aggregate

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type student struct {
	name   string
	dept   string
	placed bool
	salary float64
}

var batch = []student{
	{name: "a", dept: "CSE", placed: true, salary: 5},
	{name: "b", dept: "CSE ", placed: false, salary: 0},
	{name: "c", dept: "ece", placed: true, salary: 8},
	{name: "d", dept: "", placed: false, salary: 0},
	{name: "e", dept: "ECE", placed: true, salary: 8},
}

func byDept(s student) string { return s.dept }

func TestGroupCount(t *testing.T) {
	got := GroupCount(batch, byDept)
	want := []CategoryValue{{"CSE", 2}, {"ece", 2}, {NA, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupCount mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, GroupCount([]student{}, byDept))
}

func TestGroupPercent_WithinGroupDenominator(t *testing.T) {
	got := GroupPercent(batch[:3], byDept, func(s student) bool { return s.placed })
	want := []CategoryValue{{"CSE", 50}, {"ece", 100}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupPercent mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupSumAndEntityAverage(t *testing.T) {
	salary := func(s student) float64 { return s.salary }

	sum := GroupSum(batch, byDept, salary)
	assert.Equal(t, []CategoryValue{{"CSE", 5}, {"ece", 16}, {NA, 0}}, sum)

	avg := EntityAverage(batch, byDept, salary)
	assert.Equal(t, []CategoryValue{{"CSE", 2.5}, {"ece", 8}, {NA, 0}}, avg)

	assert.Empty(t, EntityAverage(nil, byDept, salary))
	assert.Equal(t, 0.0, ratio(3, 0))
}

func TestHistogram(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		width   float64
		closure Closure
		want    []string
	}{
		{name: "left closed", values: []float64{5, 0, 8}, width: 5, closure: LeftClosed, want: []string{"0-5:1", "5-10:2"}},
		{name: "right closed bands", values: []float64{5, 0, 8}, width: 5, closure: RightClosed, want: []string{"0-5:2", "5-10:1"}},
		{name: "skips empty buckets", values: []float64{1, 42}, width: 10, closure: LeftClosed, want: []string{"0-10:1", "40-50:1"}},
		{name: "sorted ascending", values: []float64{9.5, 6.1, 7.9, 6.0}, width: 1, closure: LeftClosed, want: []string{"6-7:2", "7-8:1", "9-10:1"}},
		{name: "fractional width", values: []float64{0.3, 0.25}, width: 0.1, closure: LeftClosed, want: []string{"0.2-0.3:1", "0.3-0.4:1"}},
		{name: "negative values", values: []float64{-1}, width: 5, closure: LeftClosed, want: []string{"-5-0:1"}},
		{name: "non finite excluded", values: []float64{math.NaN(), math.Inf(1), 3}, width: 5, closure: LeftClosed, want: []string{"0-5:1"}},
		{name: "beyond float precision excluded", values: []float64{9.876543210987654e25, 3}, width: 5, closure: LeftClosed, want: []string{"0-5:1"}},
		{name: "beyond float precision excluded right closed", values: []float64{-9.876543210987654e25, 3}, width: 5, closure: RightClosed, want: []string{"0-5:1"}},
		{name: "largest representable index", values: []float64{(1<<53 - 1) * 2.0}, width: 2, closure: LeftClosed, want: []string{"18014398509481982-18014398509481984:1"}},
		{name: "empty input", values: nil, width: 5, closure: LeftClosed, want: []string{}},
		{name: "invalid width", values: []float64{1}, width: 0, closure: LeftClosed, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, b := range Histogram(tt.values, tt.width, tt.closure) {
				got = append(got, b.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistogram_CountsSumToFiniteInputs(t *testing.T) {
	values := []float64{0, 0.5, 1, 2.2, 3.7, 5, 5, 9.99, 10, math.NaN(), -3, 100}
	finite := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			finite++
		}
	}
	for _, closure := range []Closure{LeftClosed, RightClosed} {
		buckets := Histogram(values, 2.5, closure)
		total := 0
		for i, b := range buckets {
			total += b.Count
			assert.Positive(t, b.Count)
			if i > 0 {
				assert.Less(t, buckets[i-1].Lower, b.Lower)
			}
		}
		assert.Equal(t, finite, total)
	}
}

func TestHistogramOf(t *testing.T) {
	parsed := map[string]float64{"a": 7.5, "b": 8.1}
	got := HistogramOf([]string{"a", "b", "missing"}, func(k string) (float64, bool) {
		v, ok := parsed[k]
		return v, ok
	}, 1, LeftClosed)
	require.Len(t, got, 2)
	assert.Equal(t, "7-8", got[0].Label)
}

func TestTopN_StableDescending(t *testing.T) {
	salary := func(s student) float64 { return s.salary }

	top := TopN(batch, 3, salary)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"c", "e", "a"}, []string{top[0].name, top[1].name, top[2].name})

	assert.Len(t, TopN(batch, 50, salary), len(batch))
	assert.Empty(t, TopN(batch, 0, salary))
	assert.Equal(t, "b", TopN(batch[:2], 2, func(student) float64 { return 1 })[1].name, "ties keep input order")
	assert.Equal(t, "CSE", batch[0].dept, "input is not reordered")
}

func TestCrossTab(t *testing.T) {
	table := CrossTab([]Contribution{
		{Entity: "Acme", Category: "CSE", Weight: 3},
		{Entity: "Globex", Category: "ECE", Weight: 1},
		{Entity: "acme ", Category: "ECE", Weight: 2},
	})

	assert.Equal(t, []string{"CSE", "ECE"}, table.Categories)
	want := []CrossRow{
		{Entity: "Acme", Values: map[string]float64{"CSE": 3, "ECE": 2}, Total: 5},
		{Entity: "Globex", Values: map[string]float64{"CSE": 0, "ECE": 1}, Total: 1},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("CrossTab mismatch (-want +got):\n%s", diff)
	}

	empty := CrossTab(nil)
	assert.Empty(t, empty.Rows)
	assert.Empty(t, empty.Categories)
}

func TestCumulative(t *testing.T) {
	got := Cumulative([]CategoryValue{{"B", 1}, {"A", 3}, {"C", 0}})
	want := []CumulativePoint{
		{Rank: 1, Entity: "A", Value: 3, Running: 3, Share: 75},
		{Rank: 2, Entity: "B", Value: 1, Running: 4, Share: 100},
		{Rank: 3, Entity: "C", Value: 0, Running: 4, Share: 100},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cumulative mismatch (-want +got):\n%s", diff)
	}

	zero := Cumulative([]CategoryValue{{"A", 0}})
	assert.Equal(t, 0.0, zero[0].Share)
	assert.Empty(t, Cumulative(nil))
}

func TestPairsAndTriples(t *testing.T) {
	type rec struct{ x, y, z string }
	items := []rec{{"1", "2", "3"}, {"", "2", "3"}, {"4", "5", ""}}
	parse := func(get func(rec) string) Extractor[rec] {
		return func(r rec) (float64, bool) {
			switch get(r) {
			case "":
				return 0, false
			case "1":
				return 1, true
			case "2":
				return 2, true
			case "3":
				return 3, true
			case "4":
				return 4, true
			default:
				return 5, true
			}
		}
	}
	x := parse(func(r rec) string { return r.x })
	y := parse(func(r rec) string { return r.y })
	z := parse(func(r rec) string { return r.z })

	pairs := Pairs(items, x, y, nil)
	require.Len(t, pairs, 2)
	assert.Equal(t, Point{X: 4, Y: 5}, pairs[1])

	triples := Triples(items, x, y, z, func(r rec) string { return r.x })
	require.Len(t, triples, 1)
	assert.Equal(t, 3.0, *triples[0].Z)
	assert.Equal(t, "1", triples[0].Label)

	inf := Pairs([]float64{1}, func(float64) (float64, bool) { return math.Inf(1), true },
		func(v float64) (float64, bool) { return v, true }, nil)
	assert.Empty(t, inf)
}
