// Package api contains the v1 HTTP contract of the careerlens analysis API.
package api

import (
	"careerlens/internal/filter"
)

// RangeBounds is an inclusive numeric range; omitted sides are open.
type RangeBounds struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// FilterRequest replaces a view's filter state. Any value equal to "all"
// (case-insensitive) or empty disables that criterion.
type FilterRequest struct {
	Search      string                 `json:"search,omitempty" validate:"max=200"`
	SearchField string                 `json:"search_field,omitempty" validate:"max=200"`
	Equals      map[string]string      `json:"equals,omitempty" validate:"max=50,dive,keys,required,max=200,endkeys,max=200"`
	Ranges      map[string]RangeBounds `json:"ranges,omitempty" validate:"max=50,dive,keys,required,max=200,endkeys"`
	Slots       map[string]string      `json:"slots,omitempty" validate:"max=10,dive,keys,required,endkeys,max=200"`
}

// Criteria converts the request into the engine's filter state.
func (r FilterRequest) Criteria() filter.Criteria {
	c := filter.Criteria{
		Search:      r.Search,
		SearchField: r.SearchField,
		Equals:      r.Equals,
		Slots:       r.Slots,
	}
	if len(r.Ranges) > 0 {
		c.Ranges = make(map[string]filter.Bounds, len(r.Ranges))
		for field, b := range r.Ranges {
			c.Ranges[field] = filter.Bounds{Min: b.Min, Max: b.Max}
		}
	}
	return c
}

// FilterRequestFrom is the inverse of Criteria, used to read state back.
func FilterRequestFrom(c filter.Criteria) FilterRequest {
	r := FilterRequest{
		Search:      c.Search,
		SearchField: c.SearchField,
		Equals:      c.Equals,
		Slots:       c.Slots,
	}
	if len(c.Ranges) > 0 {
		r.Ranges = make(map[string]RangeBounds, len(c.Ranges))
		for field, b := range c.Ranges {
			r.Ranges[field] = RangeBounds{Min: b.Min, Max: b.Max}
		}
	}
	return r
}

// MetricsRequest carries the query options of the metrics endpoints.
type MetricsRequest struct {
	Names  []string           `json:"names,omitempty" validate:"max=64,dive,required,max=64"`
	TopN   int                `json:"top_n,omitempty" validate:"omitempty,min=1,max=100"`
	Widths map[string]float64 `json:"widths,omitempty" validate:"max=10,dive,keys,oneof=cgpa marks cutoff salary package,endkeys,gt=0"`
}

// ExportRequest selects the export encoding.
type ExportRequest struct {
	Format string `json:"format" validate:"omitempty,exportfmt"`
}

// TemplateRequest selects the template view and encoding.
type TemplateRequest struct {
	View   string `json:"view" validate:"required,view"`
	Format string `json:"format" validate:"omitempty,exportfmt"`
}

// Target addresses one view of one workspace. Unknown views are reported
// as not found by the service rather than rejected here.
type Target struct {
	Workspace string `json:"workspace" validate:"required,max=64,printascii,excludesall=/?#"`
	View      string `json:"view" validate:"required,max=32"`
}
