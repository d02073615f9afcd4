package analysis

import (
	"fmt"
	"sort"

	"careerlens/internal/schema"
)

// Kind describes the shape of a metric's data.
type Kind string

const (
	KindCategories Kind = "categories"
	KindBuckets    Kind = "buckets"
	KindRanking    Kind = "ranking"
	KindCrossTab   Kind = "crosstab"
	KindCumulative Kind = "cumulative"
	KindPoints     Kind = "points"
	KindSummary    Kind = "summary"
)

// Width keys understood by Options.Widths.
const (
	WidthCGPA    = "cgpa"
	WidthMarks   = "marks"
	WidthCutOff  = "cutoff"
	WidthSalary  = "salary"
	WidthPackage = "package"
)

// DefaultWidths are the histogram widths used when Options leave one unset.
var DefaultWidths = map[string]float64{
	WidthCGPA:    0.5,
	WidthMarks:   10,
	WidthCutOff:  10,
	WidthSalary:  5,
	WidthPackage: 5,
}

// DefaultTopN is the ranking length used when Options.TopN is unset.
const DefaultTopN = 10

// Options parameterize metric evaluation.
type Options struct {
	TopN   int
	Widths map[string]float64
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

func (o Options) width(key string) float64 {
	if w, ok := o.Widths[key]; ok && w > 0 {
		return w
	}
	return DefaultWidths[key]
}

// Result is one evaluated metric.
type Result struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Kind  Kind   `json:"kind"`
	Data  any    `json:"data"`
}

// Metric is a named pure function of a dataset.
type Metric struct {
	Name  string
	Title string
	Kind  Kind
	eval  func(ds *Dataset, opts Options) any
}

// Evaluate runs the metric.
func (m Metric) Evaluate(ds *Dataset, opts Options) Result {
	return Result{Name: m.Name, Title: m.Title, Kind: m.Kind, Data: m.eval(ds, opts)}
}

// Catalogue is the ordered metric list of one view.
type Catalogue struct {
	View    schema.ViewName
	metrics []Metric
	byName  map[string]int
}

func newCatalogue(view schema.ViewName, metrics ...Metric) Catalogue {
	c := Catalogue{View: view, metrics: metrics, byName: make(map[string]int, len(metrics))}
	for i, m := range metrics {
		if _, dup := c.byName[m.Name]; dup {
			panic(fmt.Sprintf("analysis: duplicate metric %q in %s catalogue", m.Name, view))
		}
		c.byName[m.Name] = i
	}
	return c
}

// Names lists the metric names in catalogue order.
func (c Catalogue) Names() []string {
	out := make([]string, len(c.metrics))
	for i, m := range c.metrics {
		out[i] = m.Name
	}
	return out
}

// Metrics returns the catalogue's metrics in order.
func (c Catalogue) Metrics() []Metric {
	return append([]Metric(nil), c.metrics...)
}

// Lookup finds a metric by name.
func (c Catalogue) Lookup(name string) (Metric, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Metric{}, false
	}
	return c.metrics[i], true
}

// UnknownMetricError names a metric the catalogue does not have.
type UnknownMetricError struct {
	View schema.ViewName
	Name string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("view %s has no metric %q", e.View, e.Name)
}

// Evaluate computes the named metrics, or all of them when names is empty.
// Results follow catalogue order regardless of the order of names.
func (c Catalogue) Evaluate(ds *Dataset, opts Options, names ...string) ([]Result, error) {
	selected := c.metrics
	if len(names) > 0 {
		idx := make([]int, 0, len(names))
		seen := make(map[int]bool, len(names))
		for _, n := range names {
			i, ok := c.byName[n]
			if !ok {
				return nil, &UnknownMetricError{View: c.View, Name: n}
			}
			if !seen[i] {
				seen[i] = true
				idx = append(idx, i)
			}
		}
		sort.Ints(idx)
		selected = make([]Metric, len(idx))
		for j, i := range idx {
			selected[j] = c.metrics[i]
		}
	}

	out := make([]Result, len(selected))
	for i, m := range selected {
		out[i] = m.Evaluate(ds, opts)
	}
	return out, nil
}

var catalogues = map[schema.ViewName]Catalogue{
	schema.ViewStudent:  studentCatalogue(),
	schema.ViewOverview: overviewCatalogue(),
	schema.ViewCompany:  companyCatalogue(),
}

// CatalogueFor returns the metric catalogue of a view.
func CatalogueFor(view schema.ViewName) (Catalogue, bool) {
	c, ok := catalogues[view]
	return c, ok
}
