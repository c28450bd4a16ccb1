package domain

import (
	"cmp"
	"fmt"
	"time"
)

// RawRecord is one row of an uploaded rentals file
type RawRecord struct {
	Timestamp  time.Time `json:"datetime"`
	Season     int       `json:"season"`
	Weather    int       `json:"weather"`
	WorkingDay int       `json:"workingday"`
	Count      float64   `json:"count"`
}

// EnrichedRecord is a RawRecord with its calendar features derived.
// Records are values; once enriched they are never mutated.
type EnrichedRecord struct {
	RawRecord
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Hour      int       `json:"hour"`
	DayOfWeek string    `json:"day_of_week"`
	DayPeriod DayPeriod `json:"day_period"`
}

// DayPeriod buckets an hour of day. The numeric order is the display order.
type DayPeriod int

const (
	Night DayPeriod = iota
	Morning
	Afternoon
	Evening
)

var dayPeriodNames = [...]string{"Night", "Morning", "Afternoon", "Evening"}

// String returns the display label of the period
func (p DayPeriod) String() string {
	if p < Night || p > Evening {
		return fmt.Sprintf("DayPeriod(%d)", int(p))
	}
	return dayPeriodNames[p]
}

// MarshalText encodes the period as its label
func (p DayPeriod) MarshalText() ([]byte, error) {
	if p < Night || p > Evening {
		return nil, fmt.Errorf("invalid day period %d", int(p))
	}
	return []byte(p.String()), nil
}

// Dataset is one loaded file after enrichment. A new upload replaces it wholesale.
type Dataset struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	LoadedAt time.Time        `json:"loaded_at"`
	Records  []EnrichedRecord `json:"-"`
}

// Len returns the number of records in the dataset
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// DatasetInfo is the wire summary of a loaded dataset
type DatasetInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	LoadedAt    time.Time `json:"loaded_at"`
	RecordCount int       `json:"record_count"`
}

// Info summarises the dataset for API responses
func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{
		ID:          d.ID,
		Name:        d.Name,
		LoadedAt:    d.LoadedAt,
		RecordCount: d.Len(),
	}
}

// GroupMean is the mean of the target column within one group
type GroupMean[K cmp.Ordered] struct {
	Key   K       `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// AggregationResult maps group keys to means, ordered by key
type AggregationResult[K cmp.Ordered] []GroupMean[K]

// Keys returns the group keys in order
func (a AggregationResult[K]) Keys() []K {
	keys := make([]K, len(a))
	for i, g := range a {
		keys[i] = g.Key
	}
	return keys
}

// Lookup returns the mean for key
func (a AggregationResult[K]) Lookup(key K) (float64, bool) {
	for _, g := range a {
		if g.Key == key {
			return g.Mean, true
		}
	}
	return 0, false
}
