package domain

// ChartKind tells the presentation layer how to draw a chart
type ChartKind string

const (
	ChartKindLine ChartKind = "line"
	ChartKindBar  ChartKind = "bar"
)

// Chart identifiers, one per grouping dimension
const (
	ChartHour       = "hour"
	ChartMonth      = "month"
	ChartWeather    = "weather"
	ChartWorkingDay = "workingday"
	ChartDayPeriod  = "day_period"
)

// ChartIDs lists the charts in display order
var ChartIDs = []string{ChartHour, ChartMonth, ChartWeather, ChartWorkingDay, ChartDayPeriod}

// ChartPoint is one bar or vertex
type ChartPoint struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Chart is a render-ready aggregation
type Chart struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Kind   ChartKind    `json:"kind"`
	XLabel string       `json:"x_label,omitempty"`
	YLabel string       `json:"y_label"`
	Points []ChartPoint `json:"points"`
}

// Empty reports whether the chart has no groups
func (c Chart) Empty() bool {
	return len(c.Points) == 0
}

// ChartResults is the output of one pipeline run
type ChartResults struct {
	Selection   FilterSelection `json:"selection"`
	RecordCount int             `json:"record_count"`
	Charts      []Chart         `json:"charts"`
}

// Chart returns the chart with the given id
func (r ChartResults) Chart(id string) (Chart, bool) {
	for _, c := range r.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}
