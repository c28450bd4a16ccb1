package dataprocessing

import (
	"cmp"
	"slices"

	"bikedash/pkg/contracts/domain"
)

// AggregateMeanBy partitions records by key and returns the arithmetic mean
// of value per partition, ordered by key. Empty input gives an empty result.
func AggregateMeanBy[K cmp.Ordered](
	records []domain.EnrichedRecord,
	key func(domain.EnrichedRecord) K,
	value func(domain.EnrichedRecord) float64,
) domain.AggregationResult[K] {
	type acc struct {
		sum   float64
		count int
	}

	groups := make(map[K]*acc)
	for _, r := range records {
		k := key(r)
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += value(r)
		a.count++
	}

	result := make(domain.AggregationResult[K], 0, len(groups))
	for k, a := range groups {
		result = append(result, domain.GroupMean[K]{
			Key:   k,
			Mean:  a.sum / float64(a.count),
			Count: a.count,
		})
	}
	slices.SortFunc(result, func(a, b domain.GroupMean[K]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return result
}

func rentals(r domain.EnrichedRecord) float64 { return r.Count }

// MeanByHour is the mean rental count per hour of day
func MeanByHour(records []domain.EnrichedRecord) domain.AggregationResult[int] {
	return AggregateMeanBy(records, func(r domain.EnrichedRecord) int { return r.Hour }, rentals)
}

// MeanByMonth is the mean rental count per calendar month
func MeanByMonth(records []domain.EnrichedRecord) domain.AggregationResult[int] {
	return AggregateMeanBy(records, func(r domain.EnrichedRecord) int { return r.Month }, rentals)
}

// MeanByWeather is the mean rental count per weather category
func MeanByWeather(records []domain.EnrichedRecord) domain.AggregationResult[int] {
	return AggregateMeanBy(records, func(r domain.EnrichedRecord) int { return r.Weather }, rentals)
}

// MeanByWorkingDay is the mean rental count for non-working (0) and working (1) days
func MeanByWorkingDay(records []domain.EnrichedRecord) domain.AggregationResult[int] {
	return AggregateMeanBy(records, func(r domain.EnrichedRecord) int { return r.WorkingDay }, rentals)
}

// MeanByDayPeriod is the mean rental count per period of the day
func MeanByDayPeriod(records []domain.EnrichedRecord) domain.AggregationResult[domain.DayPeriod] {
	return AggregateMeanBy(records, func(r domain.EnrichedRecord) domain.DayPeriod { return r.DayPeriod }, rentals)
}
