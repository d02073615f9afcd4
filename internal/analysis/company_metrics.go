package analysis

import (
	"careerlens/internal/aggregate"
	"careerlens/internal/schema"
	"careerlens/internal/tabular"
)

// CompanyCrossRow is a company's department counts with the declared
// total check.
type CompanyCrossRow struct {
	Company       string             `json:"company"`
	Values        map[string]float64 `json:"values"`
	ComputedTotal float64            `json:"computed_total"`
	DeclaredTotal *float64           `json:"declared_total,omitempty"`
	Consistent    bool               `json:"consistent"`
}

// CompanyCrossTab is the company x department matrix of the company view.
type CompanyCrossTab struct {
	Departments []string          `json:"departments"`
	Rows        []CompanyCrossRow `json:"rows"`
}

// RecruitmentSummary is the headline figure set of the company view.
type RecruitmentSummary struct {
	Companies          int     `json:"companies"`
	Hires              float64 `json:"hires"`
	Departments        int     `json:"departments"`
	HighestPackage     float64 `json:"highest_package"`
	AveragePackage     float64 `json:"average_package"`
	InconsistentTotals int     `json:"inconsistent_totals"`
}

func deptContributions(ds *Dataset) []aggregate.Contribution {
	var out []aggregate.Contribution
	for _, c := range ds.Companies {
		for _, d := range c.Departments {
			out = append(out, aggregate.Contribution{Entity: c.Name, Category: d.Dept, Weight: d.Count})
		}
	}
	return out
}

// companyCrossTab merges rows naming the same company. The declared total of
// a merged company is the sum of its rows' totals, and is dropped when any
// of them lacks one.
func companyCrossTab(ds *Dataset) CompanyCrossTab {
	table := aggregate.CrossTab(deptContributions(ds))

	type declared struct {
		sum     float64
		missing bool
	}
	totals := make(map[string]*declared)
	for _, c := range ds.Companies {
		_, key := tabular.NormalizeCategory(c.Name)
		d, ok := totals[key]
		if !ok {
			d = &declared{}
			totals[key] = d
		}
		if c.DeclaredTotal == nil {
			d.missing = true
			continue
		}
		d.sum += *c.DeclaredTotal
	}

	out := CompanyCrossTab{Departments: ds.Departments, Rows: make([]CompanyCrossRow, len(table.Rows))}
	if out.Departments == nil {
		out.Departments = []string{}
	}
	for i, r := range table.Rows {
		row := CompanyCrossRow{Company: r.Entity, Values: r.Values, ComputedTotal: r.Total, Consistent: true}
		_, key := tabular.NormalizeCategory(r.Entity)
		if d, ok := totals[key]; ok && !d.missing {
			total := d.sum
			row.DeclaredTotal = &total
			row.Consistent = totalsAgree(total, r.Total)
		}
		out.Rows[i] = row
	}
	return out
}

func companyTotals(ds *Dataset) []aggregate.CategoryValue {
	table := aggregate.CrossTab(deptContributions(ds))
	out := make([]aggregate.CategoryValue, len(table.Rows))
	for i, r := range table.Rows {
		out[i] = aggregate.CategoryValue{Category: r.Entity, Value: r.Total}
	}
	return out
}

var (
	packageOf   = func(c CompanyRecord) float64 { return c.Package.Value }
	byOrganizer = func(c CompanyRecord) string { return c.Organized }
)

func companyCatalogue() Catalogue {
	return newCatalogue(schema.ViewCompany,
		Metric{Name: "recruitment_summary", Title: "Recruitment summary", Kind: KindSummary, eval: func(ds *Dataset, _ Options) any {
			sum := RecruitmentSummary{Departments: len(ds.Departments)}
			var pkgTotal float64
			var pkgCount int
			for _, c := range ds.Companies {
				sum.Hires += c.ComputedTotal()
				if !c.Consistent() {
					sum.InconsistentTotals++
				}
				if c.Package.Valid {
					pkgTotal += c.Package.Value
					pkgCount++
					if c.Package.Value > sum.HighestPackage {
						sum.HighestPackage = c.Package.Value
					}
				}
			}
			sum.Companies = len(aggregate.GroupCount(ds.Companies, func(c CompanyRecord) string { return c.Name }))
			if pkgCount > 0 {
				sum.AveragePackage = pkgTotal / float64(pkgCount)
			}
			return sum
		}},
		Metric{Name: "company_dept_crosstab", Title: "Hires by company and department", Kind: KindCrossTab, eval: func(ds *Dataset, _ Options) any {
			return companyCrossTab(ds)
		}},
		Metric{Name: "dept_totals", Title: "Hires per department", Kind: KindCategories, eval: func(ds *Dataset, _ Options) any {
			return aggregate.GroupSum(deptContributions(ds),
				func(c aggregate.Contribution) string { return c.Category },
				func(c aggregate.Contribution) float64 { return c.Weight })
		}},
		Metric{Name: "top_recruiters", Title: "Top recruiters", Kind: KindRanking, eval: func(ds *Dataset, opts Options) any {
			top := aggregate.TopN(companyTotals(ds), opts.topN(), func(v aggregate.CategoryValue) float64 { return v.Value })
			out := make([]RankEntry, len(top))
			for i, v := range top {
				out[i] = RankEntry{Rank: i + 1, Label: v.Category, Value: v.Value, Row: -1}
			}
			return out
		}},
		Metric{Name: "top_packages", Title: "Highest packages", Kind: KindRanking, eval: func(ds *Dataset, opts Options) any {
			top := aggregate.TopN(ds.Companies, opts.topN(), packageOf)
			out := make([]RankEntry, len(top))
			for i, c := range top {
				out[i] = RankEntry{Rank: i + 1, Label: c.Name, Group: c.Organized, Value: c.Package.Value, Row: c.Row}
			}
			return out
		}},
		Metric{Name: "package_bands", Title: "Package bands", Kind: KindBuckets, eval: func(ds *Dataset, opts Options) any {
			return aggregate.HistogramOf(ds.Companies, func(c CompanyRecord) (float64, bool) {
				return c.Package.parsed()
			}, opts.width(WidthPackage), aggregate.RightClosed)
		}},
		Metric{Name: "organizer_distribution", Title: "Drives by organizer", Kind: KindCategories, eval: func(ds *Dataset, _ Options) any {
			return aggregate.GroupCount(ds.Companies, byOrganizer)
		}},
		Metric{Name: "average_package_by_organizer", Title: "Average package by organizer", Kind: KindCategories, eval: func(ds *Dataset, _ Options) any {
			return aggregate.EntityAverage(ds.Companies, byOrganizer, packageOf)
		}},
		Metric{Name: "hiring_concentration", Title: "Cumulative share of hires by company rank", Kind: KindCumulative, eval: func(ds *Dataset, _ Options) any {
			return aggregate.Cumulative(companyTotals(ds))
		}},
		Metric{Name: "package_vs_hires", Title: "Package against hires", Kind: KindPoints, eval: func(ds *Dataset, _ Options) any {
			return aggregate.Pairs(ds.Companies,
				func(c CompanyRecord) (float64, bool) { return c.Package.parsed() },
				func(c CompanyRecord) (float64, bool) { return c.ComputedTotal(), true },
				func(c CompanyRecord) string { return c.Name })
		}},
	)
}
