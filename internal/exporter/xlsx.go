package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"careerlens/internal/tabular"
)

// DefaultSheet names the single sheet of exported workbooks.
const DefaultSheet = "Data"

// XLSXWriter writes rows into a one-sheet workbook.
type XLSXWriter struct {
	Sheet string
}

// Write encodes the header row and records to w. Number and Bool cells keep
// their type; everything else is written as text.
func (x XLSXWriter) Write(w io.Writer, headers []string, records [][]tabular.Value) error {
	sheet := x.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, rec := range records {
		cells := make([]interface{}, len(rec))
		for j, v := range rec {
			cells[j] = xlsxCell(v)
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func xlsxCell(v tabular.Value) interface{} {
	switch v.Kind() {
	case tabular.KindNumber:
		f, _ := tabular.ValueParse(v)
		return excelize.Cell{Value: f}
	case tabular.KindBool:
		return excelize.Cell{Value: v.String() == "true"}
	default:
		return excelize.Cell{Value: v.String()}
	}
}
