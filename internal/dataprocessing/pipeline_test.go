package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikedash/pkg/contracts/domain"
)

func TestRender_AllCharts(t *testing.T) {
	records := sampleRecords(t)
	sel := Options(records).DefaultSelection()

	res := Render(records, sel)

	assert.Equal(t, 8, res.RecordCount)
	assert.Equal(t, sel, res.Selection)
	require.Len(t, res.Charts, 5)

	ids := make([]string, len(res.Charts))
	for i, c := range res.Charts {
		ids[i] = c.ID
		assert.Equal(t, YLabel, c.YLabel)
		assert.NotEmpty(t, c.Points, c.ID)
	}
	assert.Equal(t, domain.ChartIDs, ids)

	hour, ok := res.Chart(domain.ChartHour)
	require.True(t, ok)
	assert.Equal(t, domain.ChartKindLine, hour.Kind)
	assert.Equal(t, "Mean Rentals by Hour", hour.Title)
	assert.Equal(t, "Hour", hour.XLabel)

	weather, _ := res.Chart(domain.ChartWeather)
	assert.Equal(t, "Weather Category", weather.XLabel)
	assert.Equal(t, domain.ChartKindBar, weather.Kind)
}

func TestRender_WorkingDayLabels(t *testing.T) {
	res := Render(sampleRecords(t), domain.FilterSelection{
		Years: []int{2011, 2012}, Seasons: []int{1, 2, 3, 4}, WorkingDay: domain.WorkingDayAll,
	})

	wd, ok := res.Chart(domain.ChartWorkingDay)
	require.True(t, ok)
	require.Len(t, wd.Points, 2)
	assert.Equal(t, domain.ChartPoint{Key: "0", Label: "Non-working", Value: 29, Count: 4}, wd.Points[0])
	assert.Equal(t, domain.ChartPoint{Key: "1", Label: "Working", Value: 50, Count: 4}, wd.Points[1])
}

func TestRender_DayPeriodOrder(t *testing.T) {
	res := Render(sampleRecords(t), domain.FilterSelection{
		Years: []int{2011, 2012}, Seasons: []int{1, 2, 3, 4}, WorkingDay: domain.WorkingDayAll,
	})

	dp, _ := res.Chart(domain.ChartDayPeriod)
	labels := make([]string, len(dp.Points))
	for i, p := range dp.Points {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"Night", "Morning", "Afternoon", "Evening"}, labels)
	// Night holds the 00:00 and 05:00 rows
	assert.Equal(t, 13.0, dp.Points[0].Value)
}

func TestRender_EmptySelection(t *testing.T) {
	res := Render(sampleRecords(t), domain.FilterSelection{
		Years: []int{1999}, Seasons: []int{1}, WorkingDay: domain.WorkingDayAll,
	})

	assert.Equal(t, 0, res.RecordCount)
	require.Len(t, res.Charts, 5)
	for _, c := range res.Charts {
		assert.True(t, c.Empty(), c.ID)
		assert.NotNil(t, c.Points)
	}
}

func TestRender_Deterministic(t *testing.T) {
	records := sampleRecords(t)
	sel := domain.FilterSelection{Years: []int{2011}, Seasons: []int{1, 2, 3}, WorkingDay: domain.WorkingDayAll}

	assert.Equal(t, Render(records, sel), Render(records, sel))
}
