package testutil

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewTestLogger(t)

	logger.With(slog.String("component", "loader")).Info("dataset loaded", slog.Int("records", 8))
	logger.Error("upload rejected")

	records := h.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "loader", records[0].Attrs["component"])
	assert.Equal(t, int64(8), records[0].Attrs["records"])
	assert.NotContains(t, records[1].Attrs, "component")

	assert.True(t, h.ContainsMessage(slog.LevelInfo, "loaded"))
	assert.False(t, h.ContainsMessage(slog.LevelWarn, "loaded"))
	assert.True(t, h.ContainsAttr("component", "loader"))
	AssertLogContains(t, h, slog.LevelError, "rejected")
}

func TestRentalsCSV(t *testing.T) {
	csv := RentalsCSV(RentalRow{"2011-01-01 05:00:00", 1, 0, 2, 10})
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	require.Len(t, lines, 2)
	assert.Equal(t, RentalsHeader, lines[0])
	assert.Equal(t, "2011-01-01 05:00:00,1,0,0,2,9.84,10", lines[1])
}
