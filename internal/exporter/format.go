package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "bikedash/internal/errors"
)

// Format is a download format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats
var Formats = []Format{FormatCSV, FormatXLSX}

// ParseFormat accepts csv or xlsx, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", apperrors.UnsupportedFormatError(s)
}

// ContentType is the MIME type of a download
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName builds the attachment name for a download
func (f Format) FileName(at time.Time) string {
	return fmt.Sprintf("bike_rentals_%s.%s", at.UTC().Format("20060102_150405"), f)
}

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInts joins a selection list for display
func formatInts(values []int) string {
	if len(values) == 0 {
		return "(none)"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
