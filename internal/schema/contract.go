package schema

import (
	"slices"

	"careerlens/internal/slots"
	"careerlens/internal/tabular"
)

// ViewName identifies an analysis screen.
type ViewName string

const (
	ViewStudent  ViewName = "student"
	ViewCompany  ViewName = "company"
	ViewOverview ViewName = "overview"
)

// Contract is the declarative column contract of one view.
type Contract struct {
	View     ViewName
	Title    string
	Required RequiredColumnSpec
	Families []slots.Family

	// Fixed columns are known to the view but not required. They are
	// excluded when the remaining headers are read as dynamic columns.
	Fixed []string

	// Dynamic marks views whose leftover headers carry data, such as the
	// per-department counts of the company view.
	Dynamic bool

	// TemplateExtra adds sample dynamic columns to the blank template.
	TemplateExtra []string
}

// Validate checks rows against the contract's requirements.
func (c Contract) Validate(rows []tabular.Row) Result {
	return Validate(rows, c.Required)
}

// TemplateHeaders is the header row of the blank upload template: required
// columns (preferred alternative), fixed columns, sample dynamic columns and
// every slot family column.
func (c Contract) TemplateHeaders() []string {
	var out []string
	add := func(name string) {
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	for _, r := range c.Required.requirements {
		add(r.Preferred())
	}
	for _, f := range c.Fixed {
		add(f)
	}
	for _, e := range c.TemplateExtra {
		add(e)
	}
	for _, fam := range c.Families {
		for _, h := range fam.Headers() {
			add(h)
		}
	}
	return out
}

// DynamicColumns returns the observed columns that are neither required,
// fixed nor owned by a slot family, in observed order.
func (c Contract) DynamicColumns(columns []string) []string {
	known := make(map[string]struct{})
	for _, n := range c.Required.Names() {
		known[n] = struct{}{}
	}
	for _, n := range c.Fixed {
		known[n] = struct{}{}
	}
	var out []string
	for _, col := range columns {
		if _, ok := known[col]; ok {
			continue
		}
		owned := false
		for _, fam := range c.Families {
			if fam.Owns(col) {
				owned = true
				break
			}
		}
		if !owned {
			out = append(out, col)
		}
	}
	return out
}
