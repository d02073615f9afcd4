package analysis

import (
	"careerlens/internal/schema"
	"careerlens/internal/tabular"
)

// Dataset is a filtered row set together with its typed records. It is
// built once per filtered set and read by every metric.
type Dataset struct {
	View        schema.ViewName
	Rows        []tabular.Row
	Students    []StudentRecord
	Companies   []CompanyRecord
	Departments []string
}

// NewDataset types rows according to contract. columns is the column
// universe of the whole upload, so department inference does not depend on
// which rows survived filtering.
func NewDataset(contract schema.Contract, columns []string, rows []tabular.Row) *Dataset {
	ds := &Dataset{View: contract.View, Rows: rows}
	switch contract.View {
	case schema.ViewCompany:
		ds.Departments = contract.DynamicColumns(columns)
		ds.Companies = make([]CompanyRecord, len(rows))
		for i, r := range rows {
			ds.Companies[i] = NewCompanyRecord(i, r, ds.Departments)
		}
	default:
		ds.Students = make([]StudentRecord, len(rows))
		for i, r := range rows {
			ds.Students[i] = NewStudentRecord(i, r)
		}
	}
	return ds
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }
