// Package analysis turns validated rows into typed per-view records and
// evaluates the named metric catalogue of each view on them.
package analysis

import (
	"strings"

	"careerlens/internal/schema"
	"careerlens/internal/slots"
	"careerlens/internal/tabular"
)

// Number is a coerced numeric cell. Value follows the forgiving rule (0 on
// failure); Valid reports whether the cell actually held a number.
type Number struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

func numberOf(v tabular.Value) Number {
	f, ok := tabular.ValueParse(v)
	return Number{Value: f, Valid: ok}
}

func (n Number) parsed() (float64, bool) { return n.Value, n.Valid }

// StudentRecord is the typed form of a student or overview row. Columns the
// contract does not name are kept in Extra.
type StudentRecord struct {
	Row           int                      `json:"row"`
	RegNumber     string                   `json:"reg_number,omitempty"`
	RollNo        string                   `json:"roll_no,omitempty"`
	Name          string                   `json:"name"`
	Dept          string                   `json:"dept"`
	Section       string                   `json:"section,omitempty"`
	PI            string                   `json:"pi,omitempty"`
	Gender        string                   `json:"gender,omitempty"`
	TrainingBatch string                   `json:"training_batch,omitempty"`
	Quota         string                   `json:"quota,omitempty"`
	Residence     string                   `json:"residence,omitempty"`
	JobVertical   string                   `json:"job_vertical,omitempty"`
	Status        string                   `json:"status"`
	TenthMark     Number                   `json:"tenth_mark"`
	TwelfthMark   Number                   `json:"twelfth_mark"`
	CGPA          Number                   `json:"cgpa"`
	CutOff        Number                   `json:"cutoff"`
	OfferCount    Number                   `json:"offer_count"`
	MaxSalary     Number                   `json:"max_salary"`
	Offers        []slots.Record           `json:"offers,omitempty"`
	Extra         map[string]tabular.Value `json:"extra,omitempty"`
}

// Placed reports whether the placement status reads "Placed".
func (s StudentRecord) Placed() bool {
	_, key := tabular.NormalizeCategory(s.Status)
	return key == "placed"
}

var studentColumns = []string{
	schema.ColRegNumber, schema.ColRollNo, schema.ColName, schema.ColDept,
	schema.ColSection, schema.ColPI, schema.ColTenthMark, schema.ColTwelfthMark,
	schema.ColCGPA, schema.ColCutOff, schema.ColTrainingBatch, schema.ColGender,
	schema.ColOfferCount, schema.ColPlacement, schema.ColMaxSalary, schema.ColQuota,
	schema.ColResidence, schema.ColJobVertical, schema.ColJobVerticalAlt,
}

// NewStudentRecord reads a row. Missing columns read as blank.
func NewStudentRecord(index int, row tabular.Row) StudentRecord {
	text := func(col string) string { return tabular.NormalizeHeader(row.Text(col)) }

	rec := StudentRecord{
		Row:           index,
		RegNumber:     text(schema.ColRegNumber),
		RollNo:        text(schema.ColRollNo),
		Name:          text(schema.ColName),
		Dept:          text(schema.ColDept),
		Section:       text(schema.ColSection),
		PI:            text(schema.ColPI),
		Gender:        text(schema.ColGender),
		TrainingBatch: text(schema.ColTrainingBatch),
		Quota:         text(schema.ColQuota),
		Residence:     text(schema.ColResidence),
		JobVertical:   text(schema.ColJobVertical),
		Status:        text(schema.ColPlacement),
		TenthMark:     numberOf(row.Get(schema.ColTenthMark)),
		TwelfthMark:   numberOf(row.Get(schema.ColTwelfthMark)),
		CGPA:          numberOf(row.Get(schema.ColCGPA)),
		CutOff:        numberOf(row.Get(schema.ColCutOff)),
		OfferCount:    numberOf(row.Get(schema.ColOfferCount)),
		MaxSalary:     numberOf(row.Get(schema.ColMaxSalary)),
		Offers:        slots.Expand(row, slots.Offers),
	}
	if rec.JobVertical == "" {
		rec.JobVertical = text(schema.ColJobVerticalAlt)
	}

	row.Each(func(col string, v tabular.Value) {
		if isStudentColumn(col) || slots.Offers.Owns(col) {
			return
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]tabular.Value)
		}
		rec.Extra[col] = v
	})
	return rec
}

func isStudentColumn(col string) bool {
	for _, c := range studentColumns {
		if c == col {
			return true
		}
	}
	return false
}

// DeptCount is one department cell of a company row.
type DeptCount struct {
	Dept  string  `json:"dept"`
	Count float64 `json:"count"`
}

// CompanyRecord is the typed form of a company row.
type CompanyRecord struct {
	Row           int         `json:"row"`
	Serial        string      `json:"serial,omitempty"`
	Name          string      `json:"name"`
	Package       Number      `json:"package"`
	Organized     string      `json:"organized"`
	Departments   []DeptCount `json:"departments"`
	DeclaredTotal *float64    `json:"declared_total,omitempty"`
}

// ComputedTotal sums the department counts.
func (c CompanyRecord) ComputedTotal() float64 {
	var total float64
	for _, d := range c.Departments {
		total += d.Count
	}
	return total
}

// Consistent reports whether the declared Total, when present and numeric,
// equals the sum of the department counts.
func (c CompanyRecord) Consistent() bool {
	if c.DeclaredTotal == nil {
		return true
	}
	return totalsAgree(*c.DeclaredTotal, c.ComputedTotal())
}

func totalsAgree(declared, computed float64) bool {
	diff := declared - computed
	return diff < 1e-9 && diff > -1e-9
}

// NewCompanyRecord reads a company row; depts are the inferred department
// columns in upload order.
func NewCompanyRecord(index int, row tabular.Row, depts []string) CompanyRecord {
	rec := CompanyRecord{
		Row:         index,
		Serial:      strings.TrimSpace(row.Text(schema.ColSerial)),
		Name:        tabular.NormalizeHeader(row.Text(schema.ColCompanyName)),
		Package:     numberOf(row.Get(schema.ColPackage)),
		Organized:   tabular.NormalizeHeader(row.Text(schema.ColOrganized)),
		Departments: make([]DeptCount, 0, len(depts)),
	}
	for _, d := range depts {
		rec.Departments = append(rec.Departments, DeptCount{Dept: d, Count: tabular.ValueNumber(row.Get(d))})
	}
	if total, ok := tabular.ValueParse(row.Get(schema.ColTotal)); ok {
		rec.DeclaredTotal = &total
	}
	return rec
}
