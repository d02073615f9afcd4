package analysis

import (
	"sort"
	"strconv"

	"careerlens/internal/aggregate"
	"careerlens/internal/schema"
	"careerlens/internal/slots"
)

// RankEntry is one row of a top-N ranking.
type RankEntry struct {
	Rank  int     `json:"rank"`
	Label string  `json:"label"`
	Group string  `json:"group,omitempty"`
	Value float64 `json:"value"`
	Row   int     `json:"row"`
}

// PlacementSummary is the headline figure set of the student views.
type PlacementSummary struct {
	Students      int     `json:"students"`
	Placed        int     `json:"placed"`
	PlacementRate float64 `json:"placement_rate"`
	Offers        int     `json:"offers"`
	HighestSalary float64 `json:"highest_salary"`
	AverageSalary float64 `json:"average_salary"`
}

type offer struct {
	student *StudentRecord
	slots.Record
}

func offersOf(ds *Dataset) []offer {
	var out []offer
	for i := range ds.Students {
		s := &ds.Students[i]
		for _, rec := range s.Offers {
			out = append(out, offer{student: s, Record: rec})
		}
	}
	return out
}

func placedOnly(students []StudentRecord) []StudentRecord {
	out := make([]StudentRecord, 0, len(students))
	for _, s := range students {
		if s.Placed() {
			out = append(out, s)
		}
	}
	return out
}

func studentGroup(name, title string, key func(StudentRecord) string) Metric {
	return Metric{Name: name, Title: title, Kind: KindCategories, eval: func(ds *Dataset, _ Options) any {
		return aggregate.GroupCount(ds.Students, key)
	}}
}

func studentRate(name, title string, key func(StudentRecord) string) Metric {
	return Metric{Name: name, Title: title, Kind: KindCategories, eval: func(ds *Dataset, _ Options) any {
		return aggregate.GroupPercent(ds.Students, key, StudentRecord.Placed)
	}}
}

func studentHistogram(name, title, widthKey string, field func(StudentRecord) Number, closure aggregate.Closure) Metric {
	return Metric{Name: name, Title: title, Kind: KindBuckets, eval: func(ds *Dataset, opts Options) any {
		return aggregate.HistogramOf(ds.Students, func(s StudentRecord) (float64, bool) {
			return field(s).parsed()
		}, opts.width(widthKey), closure)
	}}
}

func studentRanking(name, title string, field func(StudentRecord) Number) Metric {
	return Metric{Name: name, Title: title, Kind: KindRanking, eval: func(ds *Dataset, opts Options) any {
		top := aggregate.TopN(ds.Students, opts.topN(), func(s StudentRecord) float64 { return field(s).Value })
		out := make([]RankEntry, len(top))
		for i, s := range top {
			out[i] = RankEntry{Rank: i + 1, Label: s.Name, Group: s.Dept, Value: field(s).Value, Row: s.Row}
		}
		return out
	}}
}

var (
	byDept        = func(s StudentRecord) string { return s.Dept }
	byStatus      = func(s StudentRecord) string { return s.Status }
	byGender      = func(s StudentRecord) string { return s.Gender }
	byQuota       = func(s StudentRecord) string { return s.Quota }
	byResidence   = func(s StudentRecord) string { return s.Residence }
	byJobVertical = func(s StudentRecord) string { return s.JobVertical }
	byBatch       = func(s StudentRecord) string { return s.TrainingBatch }

	cgpa      = func(s StudentRecord) Number { return s.CGPA }
	tenth     = func(s StudentRecord) Number { return s.TenthMark }
	twelfth   = func(s StudentRecord) Number { return s.TwelfthMark }
	cutoff    = func(s StudentRecord) Number { return s.CutOff }
	maxSalary = func(s StudentRecord) Number { return s.MaxSalary }
)

func placementSummary() Metric {
	return Metric{Name: "placement_summary", Title: "Placement summary", Kind: KindSummary, eval: func(ds *Dataset, _ Options) any {
		sum := PlacementSummary{Students: len(ds.Students)}
		var salaryTotal float64
		for _, s := range ds.Students {
			sum.Offers += len(s.Offers)
			if s.MaxSalary.Value > sum.HighestSalary {
				sum.HighestSalary = s.MaxSalary.Value
			}
			if s.Placed() {
				sum.Placed++
				salaryTotal += s.MaxSalary.Value
			}
		}
		if sum.Students > 0 {
			sum.PlacementRate = float64(sum.Placed) / float64(sum.Students) * 100
		}
		if sum.Placed > 0 {
			sum.AverageSalary = salaryTotal / float64(sum.Placed)
		}
		return sum
	}}
}

func averageSalaryByDept() Metric {
	return Metric{Name: "average_salary_by_dept", Title: "Average salary of placed students by department", Kind: KindCategories,
		eval: func(ds *Dataset, _ Options) any {
			return aggregate.EntityAverage(placedOnly(ds.Students), byDept, func(s StudentRecord) float64 { return s.MaxSalary.Value })
		}}
}

// salaryBands uses right-closed bands so "5" lands in 0-5.
func salaryBands() Metric {
	return studentHistogram("salary_bands", "Maximum salary bands", WidthSalary, maxSalary, aggregate.RightClosed)
}

func offersPerStudent() Metric {
	return Metric{Name: "offers_per_student", Title: "Students by number of offers", Kind: KindCategories, eval: func(ds *Dataset, _ Options) any {
		counts := aggregate.GroupCount(ds.Students, func(s StudentRecord) string {
			n := len(s.Offers)
			if n == 0 && s.OfferCount.Valid {
				n = int(s.OfferCount.Value)
			}
			return strconv.Itoa(n)
		})
		sort.SliceStable(counts, func(i, j int) bool {
			a, _ := strconv.Atoi(counts[i].Category)
			b, _ := strconv.Atoi(counts[j].Category)
			return a < b
		})
		return counts
	}}
}

func companyOfferCounts() Metric {
	return Metric{Name: "company_offer_counts", Title: "Offers per company", Kind: KindCategories, eval: func(ds *Dataset, opts Options) any {
		counts := aggregate.SortDesc(aggregate.GroupCount(offersOf(ds), offerCompany))
		return truncate(counts, opts.topN())
	}}
}

func studentCompanyCrossTab() Metric {
	return Metric{Name: "company_dept_crosstab", Title: "Offers by company and department", Kind: KindCrossTab, eval: func(ds *Dataset, _ Options) any {
		offers := offersOf(ds)
		contribs := make([]aggregate.Contribution, len(offers))
		for i, o := range offers {
			contribs[i] = aggregate.Contribution{Entity: o.Primary, Category: o.student.Dept, Weight: 1}
		}
		return aggregate.CrossTab(contribs)
	}}
}

func companyAverageSalary() Metric {
	return Metric{Name: "company_average_salary", Title: "Average salary offered per company", Kind: KindCategories, eval: func(ds *Dataset, opts Options) any {
		avg := aggregate.EntityAverage(offersOf(ds), offerCompany, func(o offer) float64 { return o.Number(slots.AttrSalary) })
		return truncate(aggregate.SortDesc(avg), opts.topN())
	}}
}

func offerConcentration() Metric {
	return Metric{Name: "offer_concentration", Title: "Cumulative share of offers by company rank", Kind: KindCumulative, eval: func(ds *Dataset, _ Options) any {
		return aggregate.Cumulative(aggregate.GroupCount(offersOf(ds), offerCompany))
	}}
}

func offerOrganizers() Metric {
	return Metric{Name: "organizer_distribution", Title: "Offers by organizer", Kind: KindCategories, eval: func(ds *Dataset, _ Options) any {
		return aggregate.GroupCount(offersOf(ds), func(o offer) string { return o.Attr(slots.AttrOrganizer) })
	}}
}

func offerCompany(o offer) string { return o.Primary }

func truncate(values []aggregate.CategoryValue, n int) []aggregate.CategoryValue {
	if n < len(values) {
		return values[:n]
	}
	return values
}

func studentCatalogue() Catalogue {
	return newCatalogue(schema.ViewStudent,
		placementSummary(),
		studentGroup("placement_status", "Placed vs not placed", byStatus),
		studentGroup("dept_distribution", "Students per department", byDept),
		studentGroup("gender_distribution", "Students by gender", byGender),
		studentGroup("quota_distribution", "Students by quota", byQuota),
		studentGroup("residence_distribution", "Hostellers and day scholars", byResidence),
		studentGroup("job_vertical_distribution", "Students by job vertical", byJobVertical),
		studentGroup("training_batch_distribution", "Students by training batch", byBatch),
		studentRate("placement_rate_by_dept", "Placement rate by department", byDept),
		studentRate("placement_rate_by_gender", "Placement rate by gender", byGender),
		studentRate("placement_rate_by_quota", "Placement rate by quota", byQuota),
		averageSalaryByDept(),
		studentHistogram("cgpa_histogram", "CGPA distribution", WidthCGPA, cgpa, aggregate.LeftClosed),
		studentHistogram("tenth_mark_histogram", "10th mark distribution", WidthMarks, tenth, aggregate.LeftClosed),
		studentHistogram("twelfth_mark_histogram", "12th mark distribution", WidthMarks, twelfth, aggregate.LeftClosed),
		studentHistogram("cutoff_histogram", "Cut-off distribution", WidthCutOff, cutoff, aggregate.LeftClosed),
		salaryBands(),
		studentRanking("top_earners", "Top earners", maxSalary),
		studentRanking("top_cgpa", "Top CGPA", cgpa),
		offersPerStudent(),
		companyOfferCounts(),
		studentCompanyCrossTab(),
		companyAverageSalary(),
		offerConcentration(),
		offerOrganizers(),
		Metric{Name: "cgpa_vs_salary", Title: "CGPA against maximum salary", Kind: KindPoints, eval: func(ds *Dataset, _ Options) any {
			return aggregate.Pairs(ds.Students, extract(cgpa), extract(maxSalary), studentName)
		}},
		Metric{Name: "marks_profile", Title: "10th mark, 12th mark and CGPA", Kind: KindPoints, eval: func(ds *Dataset, _ Options) any {
			return aggregate.Triples(ds.Students, extract(tenth), extract(twelfth), extract(cgpa), studentName)
		}},
	)
}

func overviewCatalogue() Catalogue {
	return newCatalogue(schema.ViewOverview,
		placementSummary(),
		studentGroup("placement_status", "Placed vs not placed", byStatus),
		studentGroup("dept_distribution", "Students per department", byDept),
		studentRate("placement_rate_by_dept", "Placement rate by department", byDept),
		averageSalaryByDept(),
		salaryBands(),
		studentRanking("top_earners", "Top earners", maxSalary),
		offersPerStudent(),
		companyOfferCounts(),
		studentCompanyCrossTab(),
		companyAverageSalary(),
		offerConcentration(),
		offerOrganizers(),
	)
}

func extract(field func(StudentRecord) Number) aggregate.Extractor[StudentRecord] {
	return func(s StudentRecord) (float64, bool) { return field(s).parsed() }
}

func studentName(s StudentRecord) string { return s.Name }
