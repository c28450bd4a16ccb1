package dataprocessing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bikedash/internal/errors"
	"bikedash/internal/shared/testutil"
)

func TestLoad_SampleFile(t *testing.T) {
	records, err := Load(strings.NewReader(testutil.SampleRentals()))
	require.NoError(t, err)
	require.Len(t, records, 8)

	first := records[0]
	assert.Equal(t, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 1, first.Season)
	assert.Equal(t, 1, first.Weather)
	assert.Equal(t, 0, first.WorkingDay)
	assert.Equal(t, 16.0, first.Count)

	assert.Equal(t, 2012, records[7].Timestamp.Year(), "file order is kept")
}

func TestLoad_HeaderNormalisation(t *testing.T) {
	input := "\ufeff Datetime ,SEASON,Weather, WorkingDay,Count,extra\n" +
		"2011-01-01 05:00:00,1,2,0,10,ignored\n"

	records, err := Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Timestamp.Hour())
	assert.Equal(t, 2, records[0].Weather)
}

func TestLoad_HeaderOnly(t *testing.T) {
	records, err := Load(strings.NewReader("datetime,season,weather,workingday,count\n"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestLoad_FormatErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMissing []string
	}{
		{
			name:  "empty input",
			input: "",
		},
		{
			name:        "every missing column is reported",
			input:       "datetime,season,temp\n2011-01-01 00:00:00,1,9.84\n",
			wantMissing: []string{"weather", "workingday", "count"},
		},
		{
			name:        "count column missing",
			input:       "datetime,season,weather,workingday\n",
			wantMissing: []string{"count"},
		},
		{
			name:  "row with wrong field count",
			input: "datetime,season,weather,workingday,count\n2011-01-01 00:00:00,1,1,0\n",
		},
		{
			name:  "unterminated quote",
			input: "datetime,season,weather,workingday,count\n\"2011-01-01,1,1,0,5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Load(strings.NewReader(tt.input))

			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, apperrors.IsFormatError(err), "got %v", err)

			if tt.wantMissing != nil {
				var appErr *apperrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.wantMissing, appErr.Context["missing_columns"])
			}
		})
	}
}

func TestLoad_ReaderErrorsAreNotFormatErrors(t *testing.T) {
	limit := &http.MaxBytesError{Limit: 64}
	tests := []struct {
		name  string
		input io.Reader
	}{
		{"during header", iotest.ErrReader(limit)},
		{"during rows", io.MultiReader(
			strings.NewReader("datetime,season,weather,workingday,count\n2011-01-01 00:00:00,1,1,0,16\n"),
			iotest.ErrReader(limit),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.input)
			require.Error(t, err)
			assert.False(t, apperrors.IsFormatError(err))

			var maxErr *http.MaxBytesError
			assert.True(t, errors.As(err, &maxErr))
		})
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	header := "datetime,season,weather,workingday,count\n"
	good := "2011-01-01 00:00:00,1,1,0,16\n"

	tests := []struct {
		name       string
		row        string
		wantColumn string
		wantValue  string
	}{
		{"unparseable timestamp", "yesterday,1,1,0,5\n", "datetime", "yesterday"},
		{"non numeric season", "2011-01-01 01:00:00,spring,1,0,5\n", "season", "spring"},
		{"fractional weather", "2011-01-01 01:00:00,1,1.5,0,5\n", "weather", "1.5"},
		{"empty workingday", "2011-01-01 01:00:00,1,1,,5\n", "workingday", ""},
		{"non numeric count", "2011-01-01 01:00:00,1,1,0,lots\n", "count", "lots"},
		{"nan count", "2011-01-01 01:00:00,1,1,0,NaN\n", "count", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(header + good + tt.row))

			require.Error(t, err)
			assert.True(t, apperrors.IsParseError(err), "got %v", err)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, 3, appErr.Context["row"])
			assert.Equal(t, tt.wantColumn, appErr.Context["column"])
			assert.Equal(t, tt.wantValue, appErr.Context["value"])
		})
	}
}

func TestLoad_Coercion(t *testing.T) {
	input := "datetime,season,weather,workingday,count\n" +
		"2011-01-01 00:00:00,1.0,2.0,1.0,12.5\n"

	records, err := Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Season)
	assert.Equal(t, 2, records[0].Weather)
	assert.Equal(t, 1, records[0].WorkingDay)
	assert.Equal(t, 12.5, records[0].Count)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2012, 7, 9, 19, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2012-07-09 19:30:00", want},
		{"2012-07-09T19:30:00", want},
		{"2012-07-09 19:30", want},
		{"2012-07-09T19:30", want},
		{"2012-07-09T19:30:00+03:00", want},
		{"2012-07-09T19:30:00Z", want},
		{"2012-07-09", time.Date(2012, 7, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
			assert.Equal(t, tt.want.Hour(), got.Hour(), "wall clock is kept")
		})
	}

	_, err := ParseTimestamp("09/07/2012 19:30")
	assert.Error(t, err)
}

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset(context.Background(), "train.csv", strings.NewReader(testutil.SampleRentals()))
	require.NoError(t, err)

	assert.Len(t, ds.ID, 36)
	assert.Equal(t, "train.csv", ds.Name)
	assert.False(t, ds.LoadedAt.IsZero())
	require.Len(t, ds.Records, 8)
	assert.Equal(t, "Saturday", ds.Records[0].DayOfWeek)
	assert.Equal(t, 8, ds.Info().RecordCount)
}

func TestLoadDataset_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadDataset(ctx, "train.csv", strings.NewReader(testutil.SampleRentals()))
	assert.ErrorIs(t, err, context.Canceled)
}
