package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerlens/internal/tabular"
)

func TestValidate(t *testing.T) {
	spec := Require(Columns("A"), []Requirement{AnyOf("B", "C")})

	tests := []struct {
		name        string
		columns     []string
		wantOK      bool
		wantMissing []string
	}{
		{name: "all present", columns: []string{"A", "B"}, wantOK: true},
		{name: "alternate satisfies group", columns: []string{"C", "A"}, wantOK: true},
		{name: "reports every failure", columns: []string{"D"}, wantMissing: []string{"A", "B or C"}},
		{name: "only group missing", columns: []string{"A"}, wantMissing: []string{"B or C"}},
		{name: "normalized headers match", columns: []string{" A ", "B"}, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateColumns(tt.columns, spec)
			assert.Equal(t, tt.wantOK, got.OK)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}

func TestValidate_OrderIndependent(t *testing.T) {
	spec := Require(Columns("A", "B"))
	first := ValidateColumns([]string{"B", "A"}, spec)
	second := ValidateColumns([]string{"A", "B"}, spec)
	assert.Equal(t, first, second)
}

func TestValidate_UsesFirstRow(t *testing.T) {
	rows := []tabular.Row{
		tabular.RowFromStrings([]string{"Name", "Dept"}, "Asha", "CSE"),
	}
	res := Validate(rows, Overview.Required)
	assert.False(t, res.OK)
	assert.Equal(t, []string{ColPlacement, ColMaxSalary}, res.Missing)

	err := res.Err("overview")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "Placed or Non Placed, Maximum Salary")

	assert.Equal(t, []string{"A or B"}, Validate(nil, Require([]Requirement{AnyOf("A", "B")})).Missing)
}

func TestResult_ErrNilWhenOK(t *testing.T) {
	assert.NoError(t, Result{OK: true}.Err("student"))
}

func TestStudentContract(t *testing.T) {
	assert.Equal(t, 18, Student.Required.Len())

	headers := Student.TemplateHeaders()
	assert.Equal(t, ColRegNumber, headers[0])
	assert.Contains(t, headers, ColJobVertical)
	assert.NotContains(t, headers, ColJobVerticalAlt, "templates use the preferred alternative")
	assert.Contains(t, headers, "Company 10")
	assert.Contains(t, headers, "Join Letter Link (Company 10)")

	res := ValidateColumns(headers, Student.Required)
	assert.True(t, res.OK, "the template must satisfy its own contract")
}

func TestCompanyContract_DynamicColumns(t *testing.T) {
	cols := []string{"S.No", "Company Name", "Package", "CSE", "Organized", "ECE", "Total"}
	assert.Equal(t, []string{"CSE", "ECE"}, Company.DynamicColumns(cols))

	for _, c := range Contracts() {
		res := ValidateColumns(c.TemplateHeaders(), c.Required)
		assert.True(t, res.OK, "template of %s", c.View)
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("company")
	require.True(t, ok)
	assert.Equal(t, ViewCompany, c.View)

	_, ok = Lookup("faculty")
	assert.False(t, ok)

	views := Contracts()
	require.Len(t, views, 3)
	assert.Equal(t, ViewCompany, views[0].View)
}
