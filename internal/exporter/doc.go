// Package exporter writes rendered chart sets as downloadable files.
//
// CSVWriter emits one row per chart point with a UTF-8 BOM for Excel
// compatibility. WorkbookWriter builds an .xlsx workbook with a summary sheet
// and one sheet per chart carrying the data table and a native Excel chart.
// ChartExporter dispatches on Format and is shared by the HTTP export
// endpoint and the batch report command.
//
// Example usage:
//
//	exp := exporter.NewChartExporter()
//	err := exp.Export(w, exporter.FormatXLSX, results, exporter.ReportMeta{
//		Title:       "Bike Rentals Dashboard",
//		DatasetName: "train.csv",
//		GeneratedAt: time.Now(),
//	})
package exporter
