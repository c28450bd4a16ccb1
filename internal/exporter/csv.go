package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"bikedash/pkg/contracts/domain"
)

// ChartCSVHeaders is the header row of a chart export
var ChartCSVHeaders = []string{"chart", "title", "key", "label", "mean_rentals", "records"}

// CSVWriter writes tabular data to a stream
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel detects the encoding
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
}

// WriteCSV writes the header row and records to w
func (c *CSVWriter) WriteCSV(w io.Writer, options WriteOptions) error {
	if c.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCharts writes every chart point as one row, charts in display order.
// Empty charts contribute no rows.
func (c *CSVWriter) WriteCharts(w io.Writer, res domain.ChartResults) error {
	return c.WriteCSV(w, WriteOptions{
		Headers: ChartCSVHeaders,
		Records: chartRecords(res),
	})
}

func chartRecords(res domain.ChartResults) [][]string {
	var records [][]string
	for _, chart := range res.Charts {
		for _, p := range chart.Points {
			records = append(records, []string{
				chart.ID,
				chart.Title,
				p.Key,
				p.Label,
				formatFloat(p.Value),
				strconv.Itoa(p.Count),
			})
		}
	}
	return records
}
