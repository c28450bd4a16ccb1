package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikedash/pkg/contracts/domain"
)

func enriched(ts string, workingDay int, count float64) domain.EnrichedRecord {
	t, err := ParseTimestamp(ts)
	if err != nil {
		panic(err)
	}
	return EnrichRecord(domain.RawRecord{Timestamp: t, Season: 1, Weather: 1, WorkingDay: workingDay, Count: count})
}

func TestMeanByDayPeriod(t *testing.T) {
	records := []domain.EnrichedRecord{
		enriched("2011-01-01 05:00:00", 0, 10),
		enriched("2011-01-01 14:00:00", 0, 20),
	}

	got := MeanByDayPeriod(records)

	assert.Equal(t, domain.AggregationResult[domain.DayPeriod]{
		{Key: domain.Night, Mean: 10, Count: 1},
		{Key: domain.Afternoon, Mean: 20, Count: 1},
	}, got)
}

func TestMeanByWorkingDay(t *testing.T) {
	records := []domain.EnrichedRecord{
		enriched("2011-01-01 00:00:00", 0, 5),
		enriched("2011-01-01 01:00:00", 0, 15),
		enriched("2011-01-03 01:00:00", 1, 10),
	}

	got := MeanByWorkingDay(records)

	assert.Equal(t, domain.AggregationResult[int]{
		{Key: 0, Mean: 10, Count: 2},
		{Key: 1, Mean: 10, Count: 1},
	}, got)
}

func TestAggregateMeanBy_SortedKeys(t *testing.T) {
	records := []domain.EnrichedRecord{
		enriched("2011-12-01 23:00:00", 0, 3),
		enriched("2011-02-01 08:00:00", 0, 1),
		enriched("2011-07-01 12:00:00", 0, 2),
		enriched("2011-02-09 08:00:00", 0, 4),
	}

	byMonth := MeanByMonth(records)
	assert.Equal(t, []int{2, 7, 12}, byMonth.Keys())
	mean, ok := byMonth.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, 2.5, mean)

	byHour := MeanByHour(records)
	assert.Equal(t, []int{8, 12, 23}, byHour.Keys())

	byPeriod := MeanByDayPeriod(records)
	assert.Equal(t, []domain.DayPeriod{domain.Morning, domain.Evening}, byPeriod.Keys(), "hour 12 is Morning")
}

func TestAggregateMeanBy_Empty(t *testing.T) {
	got := MeanByWeather(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, ok := got.Lookup(1)
	assert.False(t, ok)
}

func TestAggregateMeanBy_NoRounding(t *testing.T) {
	records := []domain.EnrichedRecord{
		enriched("2011-01-01 00:00:00", 0, 1),
		enriched("2011-01-01 00:30:00", 0, 1),
		enriched("2011-01-01 00:45:00", 0, 2),
	}

	got := MeanByHour(records)
	require.Len(t, got, 1)
	assert.Equal(t, 4.0/3.0, got[0].Mean)
	assert.Equal(t, 3, got[0].Count)
}

func TestAggregateMeanBy_CustomKey(t *testing.T) {
	records := []domain.EnrichedRecord{
		enriched("2011-01-01 00:00:00", 0, 10), // Saturday
		enriched("2011-01-02 00:00:00", 0, 30), // Sunday
		enriched("2011-01-08 00:00:00", 0, 20), // Saturday
	}

	got := AggregateMeanBy(records,
		func(r domain.EnrichedRecord) string { return r.DayOfWeek },
		func(r domain.EnrichedRecord) float64 { return r.Count },
	)

	assert.Equal(t, domain.AggregationResult[string]{
		{Key: "Saturday", Mean: 15, Count: 2},
		{Key: "Sunday", Mean: 30, Count: 1},
	}, got)
	assert.Equal(t, time.Saturday.String(), got[0].Key)
}
