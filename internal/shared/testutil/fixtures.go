package testutil

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"
)

// CSV renders records as a comma-separated upload body. The first record is
// the header.
func CSV(t *testing.T, records ...[]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}
	return buf.Bytes()
}

// XLSX renders rows into the first sheet of a workbook and returns the file
// bytes. Cells keep their Go types, so numbers are stored as numeric cells.
func XLSX(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("write xlsx fixture row %d: %v", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx fixture: %v", err)
	}
	return buf.Bytes()
}
