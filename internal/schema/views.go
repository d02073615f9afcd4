package schema

import (
	"sort"

	"careerlens/internal/slots"
)

// Column names shared by the contracts and the analysis records.
const (
	ColRegNumber      = "Reg Number"
	ColRollNo         = "RollNo"
	ColName           = "Name"
	ColDept           = "Dept"
	ColSection        = "Section"
	ColPI             = "PI"
	ColTenthMark      = "10th Mark"
	ColTwelfthMark    = "12th Mark"
	ColCGPA           = "CGPA"
	ColCutOff         = "CutOff"
	ColTrainingBatch  = "Training Batch"
	ColGender         = "Gender"
	ColOfferCount     = "Number Of Company Placed"
	ColPlacement      = "Placed or Non Placed"
	ColMaxSalary      = "Maximum Salary"
	ColQuota          = "Quota"
	ColResidence      = "Hosteller / Days scholar"
	ColJobVertical    = "Job Vertical"
	ColJobVerticalAlt = "Job Vertical (IT, CORE, BDE)"

	ColSerial      = "S.No"
	ColCompanyName = "Company Name"
	ColPackage     = "Package"
	ColOrganized   = "Organized"
	ColTotal       = "Total"
)

// Student is the per-student placement sheet.
var Student = Contract{
	View:  ViewStudent,
	Title: "Student placement analysis",
	Required: Require(
		Columns(ColRegNumber, ColRollNo, ColName, ColDept, ColSection, ColPI,
			ColTenthMark, ColTwelfthMark, ColCGPA, ColCutOff, ColTrainingBatch,
			ColGender, ColOfferCount, ColPlacement, ColMaxSalary, ColQuota, ColResidence),
		[]Requirement{AnyOf(ColJobVertical, ColJobVerticalAlt)},
	),
	Families: []slots.Family{slots.Offers},
}

// Company is the per-company recruitment sheet; every header outside the
// fixed five is a department count.
var Company = Contract{
	View:          ViewCompany,
	Title:         "Company recruitment analysis",
	Required:      Require(Columns(ColCompanyName, ColPackage, ColOrganized)),
	Fixed:         []string{ColSerial, ColTotal},
	Dynamic:       true,
	TemplateExtra: []string{"CSE", "ECE", "EEE", "MECH", "CIVIL", "IT"},
}

// Overview is the main dashboard sheet.
var Overview = Contract{
	View:     ViewOverview,
	Title:    "Placement overview",
	Required: Require(Columns(ColName, ColDept, ColPlacement, ColMaxSalary)),
	Families: []slots.Family{slots.Offers},
}

var registry = map[ViewName]Contract{
	ViewStudent:  Student,
	ViewCompany:  Company,
	ViewOverview: Overview,
}

// Lookup returns the contract registered for view.
func Lookup(view string) (Contract, bool) {
	c, ok := registry[ViewName(view)]
	return c, ok
}

// Contracts returns every registered contract sorted by view name.
func Contracts() []Contract {
	out := make([]Contract, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].View < out[j].View })
	return out
}
