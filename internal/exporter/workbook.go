package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"bikedash/pkg/contracts/domain"
)

// SummarySheet is the first sheet of a workbook export
const SummarySheet = "Summary"

// ReportMeta describes where a chart set came from
type ReportMeta struct {
	Title       string
	DatasetName string
	DatasetID   string
	GeneratedAt time.Time
}

// WorkbookWriter renders a chart set as an .xlsx workbook: a summary sheet
// followed by one sheet per chart holding its table and a native chart.
type WorkbookWriter struct {
	ChartWidth  uint
	ChartHeight uint
}

// NewWorkbookWriter creates a workbook writer with default chart size
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{ChartWidth: 640, ChartHeight: 360}
}

// WriteCharts writes the workbook to w
func (wb *WorkbookWriter) WriteCharts(w io.Writer, res domain.ChartResults, meta ReportMeta) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Title:   meta.Title,
		Subject: "Mean rentals by hour, month, weather, working day and period of the day",
		Creator: "bikedash",
		Created: meta.GeneratedAt.UTC().Format(time.RFC3339),
	})

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if err := wb.writeSummary(f, res, meta); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	for _, chart := range res.Charts {
		if err := wb.writeChartSheet(f, chart); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", chart.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (wb *WorkbookWriter) writeSummary(f *excelize.File, res domain.ChartResults, meta ReportMeta) error {
	rows := [][]interface{}{
		{meta.Title},
		{},
		{"Dataset", meta.DatasetName},
		{"Dataset ID", meta.DatasetID},
		{"Generated", meta.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Matching records", res.RecordCount},
		{},
		{"Years", formatInts(res.Selection.Years)},
		{"Seasons", formatInts(res.Selection.Seasons)},
		{"Working day", string(res.Selection.WorkingDay)},
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 20)
}

// writeChartSheet writes the label/mean/count table at A1 and places the chart
// beside it. A chart without points gets a note instead of an empty chart.
func (wb *WorkbookWriter) writeChartSheet(f *excelize.File, chart domain.Chart) error {
	sheet := chart.ID
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	xLabel := chart.XLabel
	if xLabel == "" {
		xLabel = "Group"
	}
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{xLabel, chart.YLabel, "Records"}); err != nil {
		return err
	}

	for i, p := range chart.Points {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{p.Label, p.Value, p.Count}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "C", 16); err != nil {
		return err
	}

	if chart.Empty() {
		return f.SetCellValue(sheet, "E2", "No records match the current selection")
	}

	last := len(chart.Points) + 1
	chartType := excelize.Col
	if chart.Kind == domain.ChartKindLine {
		chartType = excelize.Line
	}

	return f.AddChart(sheet, "E2", &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: chart.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.XLabel}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.YLabel}}},
		Dimension: excelize.ChartDimension{
			Width:  wb.ChartWidth,
			Height: wb.ChartHeight,
		},
	})
}
