package dataprocessing

import (
	"cmp"
	"fmt"

	"bikedash/pkg/contracts/domain"
)

// YLabel is shared by every chart
const YLabel = "Mean Rentals"

// chartSpec is the fixed presentation of one grouping
type chartSpec struct {
	id     string
	title  string
	kind   domain.ChartKind
	xLabel string
}

var (
	hourChart       = chartSpec{domain.ChartHour, "Mean Rentals by Hour", domain.ChartKindLine, "Hour"}
	monthChart      = chartSpec{domain.ChartMonth, "Mean Rentals by Month", domain.ChartKindBar, "Month"}
	weatherChart    = chartSpec{domain.ChartWeather, "Weather vs Mean Rentals", domain.ChartKindBar, "Weather Category"}
	workingDayChart = chartSpec{domain.ChartWorkingDay, "Working Day vs Non-Working Day", domain.ChartKindBar, ""}
	dayPeriodChart  = chartSpec{domain.ChartDayPeriod, "Rentals by Period of the Day", domain.ChartKindBar, ""}
)

// Render runs the filter and all five aggregations for one interaction.
// A selection that matches nothing yields five charts with no points.
func Render(records []domain.EnrichedRecord, sel domain.FilterSelection) domain.ChartResults {
	filtered := ApplyFilter(records, sel)

	return domain.ChartResults{
		Selection:   sel,
		RecordCount: len(filtered),
		Charts: []domain.Chart{
			buildChart(hourChart, MeanByHour(filtered), plainLabel[int]),
			buildChart(monthChart, MeanByMonth(filtered), plainLabel[int]),
			buildChart(weatherChart, MeanByWeather(filtered), plainLabel[int]),
			buildChart(workingDayChart, MeanByWorkingDay(filtered), WorkingDayLabel),
			buildChart(dayPeriodChart, MeanByDayPeriod(filtered), plainLabel[domain.DayPeriod]),
		},
	}
}

// WorkingDayLabel names the two working day groups
func WorkingDayLabel(v int) string {
	switch v {
	case 0:
		return "Non-working"
	case 1:
		return "Working"
	default:
		return fmt.Sprint(v)
	}
}

func plainLabel[K cmp.Ordered](k K) string {
	return fmt.Sprint(k)
}

func buildChart[K cmp.Ordered](def chartSpec, res domain.AggregationResult[K], label func(K) string) domain.Chart {
	points := make([]domain.ChartPoint, len(res))
	for i, g := range res {
		points[i] = domain.ChartPoint{
			Key:   fmt.Sprint(g.Key),
			Label: label(g.Key),
			Value: g.Mean,
			Count: g.Count,
		}
	}

	return domain.Chart{
		ID:     def.id,
		Title:  def.title,
		Kind:   def.kind,
		XLabel: def.xLabel,
		YLabel: YLabel,
		Points: points,
	}
}
