package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "bikedash/internal/errors"
	"bikedash/pkg/contracts/domain"
)

// Required column names, in the order they are reported when missing
const (
	ColDatetime   = "datetime"
	ColSeason     = "season"
	ColWeather    = "weather"
	ColWorkingDay = "workingday"
	ColCount      = "count"
)

// RequiredColumns lists every column the loader needs
var RequiredColumns = []string{ColDatetime, ColSeason, ColWeather, ColWorkingDay, ColCount}

// timestampLayouts are tried in order. All are read as naive wall-clock times.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

const utf8BOM = "\ufeff"

// columnIndex maps required columns to their position in a row
type columnIndex map[string]int

// Load reads a rentals file with a header row into raw records, in file
// order. Extra columns are ignored. The reader is consumed exactly once.
func Load(r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewFormatError("empty file: no header row", nil)
	}
	if err != nil {
		return nil, readError("malformed header row", err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError("malformed row", err)
		}

		rec, err := parseRow(cr, row, idx)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if records == nil {
		records = []domain.RawRecord{}
	}
	return records, nil
}

// readError reports CSV syntax errors as format errors. Anything else came
// from the reader itself (a body limit, a dropped connection) and is
// returned as is.
func readError(msg string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return apperrors.NewFormatError(msg, err)
	}
	return fmt.Errorf("read dataset: %w", err)
}

// LoadDataset loads, enriches and stamps a dataset identity on the file
func LoadDataset(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error) {
	raw, err := Load(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &domain.Dataset{
		ID:       uuid.NewString(),
		Name:     name,
		LoadedAt: time.Now().UTC(),
		Records:  Enrich(raw),
	}, nil
}

// indexColumns locates the required columns. Names are trimmed and matched
// case-insensitively; a leading byte order mark is ignored.
func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(RequiredColumns))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingColumnsError(missing)
	}
	return idx, nil
}

func parseRow(cr *csv.Reader, row []string, idx columnIndex) (domain.RawRecord, error) {
	var rec domain.RawRecord
	var err error

	cell := func(col string) (string, int) {
		i := idx[col]
		line, _ := cr.FieldPos(i)
		return strings.TrimSpace(row[i]), line
	}

	value, line := cell(ColDatetime)
	if rec.Timestamp, err = ParseTimestamp(value); err != nil {
		return rec, apperrors.NewParseError(line, ColDatetime, value, err)
	}

	ints := []struct {
		col string
		dst *int
	}{
		{ColSeason, &rec.Season},
		{ColWeather, &rec.Weather},
		{ColWorkingDay, &rec.WorkingDay},
	}
	for _, f := range ints {
		value, line := cell(f.col)
		if *f.dst, err = parseInt(value); err != nil {
			return rec, apperrors.NewParseError(line, f.col, value, err)
		}
	}

	value, line = cell(ColCount)
	if rec.Count, err = parseFloat(value); err != nil {
		return rec, apperrors.NewParseError(line, ColCount, value, err)
	}

	return rec, nil
}

// ParseTimestamp accepts the supported layouts and RFC 3339. Offsets are
// dropped so the wall clock is kept exactly as written.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseInt accepts integers and float literals with no fractional part
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}
