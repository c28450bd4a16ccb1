package dataprocessing

import "bikedash/pkg/contracts/domain"

// DayPeriodForHour buckets an hour on the half-open intervals
// (-1,6] Night, (6,12] Morning, (12,18] Afternoon, (18,24] Evening.
// Hours outside (-1,24] have no bucket.
func DayPeriodForHour(hour int) (domain.DayPeriod, bool) {
	switch {
	case hour <= -1 || hour > 24:
		return 0, false
	case hour <= 6:
		return domain.Night, true
	case hour <= 12:
		return domain.Morning, true
	case hour <= 18:
		return domain.Afternoon, true
	default:
		return domain.Evening, true
	}
}

// EnrichRecord derives the calendar features of one record
func EnrichRecord(raw domain.RawRecord) domain.EnrichedRecord {
	ts := raw.Timestamp
	// a parsed timestamp always has an hour in [0,23]
	period, _ := DayPeriodForHour(ts.Hour())

	return domain.EnrichedRecord{
		RawRecord: raw,
		Year:      ts.Year(),
		Month:     int(ts.Month()),
		Hour:      ts.Hour(),
		DayOfWeek: ts.Weekday().String(),
		DayPeriod: period,
	}
}

// Enrich derives features for a whole batch, preserving order
func Enrich(raw []domain.RawRecord) []domain.EnrichedRecord {
	out := make([]domain.EnrichedRecord, len(raw))
	for i, r := range raw {
		out[i] = EnrichRecord(r)
	}
	return out
}
