// Package exporter re-serializes row sets for download.
//
// It hands a filtered row set off verbatim: header order is the dataset's
// column order and cells are written as they were decoded. Three writers are
// provided:
//
// CSVWriter: delimited text with an optional UTF-8 BOM for Excel, either to
// an io.Writer or streamed to a file.
//
// XLSXWriter: a single-sheet workbook built with excelize's stream writer,
// keeping numeric cells numeric.
//
// Templates: the blank upload template of a view as JSON, CSV or XLSX, built
// from the view's schema contract.
//
// Example usage:
//
//	exp := exporter.New(logger)
//	err := exp.Export(ctx, w, exporter.FormatXLSX, columns, rows)
package exporter
