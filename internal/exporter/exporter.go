package exporter

import (
	"io"

	"bikedash/pkg/contracts/domain"
)

// ChartExporter writes chart sets in every supported format
type ChartExporter struct {
	csv      *CSVWriter
	workbook *WorkbookWriter
}

// NewChartExporter creates an exporter with default writers
func NewChartExporter() *ChartExporter {
	return &ChartExporter{
		csv:      NewCSVWriter(),
		workbook: NewWorkbookWriter(),
	}
}

// Export writes res to w in the given format
func (e *ChartExporter) Export(w io.Writer, format Format, res domain.ChartResults, meta ReportMeta) error {
	switch format {
	case FormatCSV:
		return e.csv.WriteCharts(w, res)
	case FormatXLSX:
		return e.workbook.WriteCharts(w, res, meta)
	default:
		_, err := ParseFormat(string(format))
		return err
	}
}
