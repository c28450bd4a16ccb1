package dataprocessing

import (
	"slices"

	"bikedash/pkg/contracts/domain"
)

type intSet map[int]struct{}

func newIntSet(values []int) intSet {
	s := make(intSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s intSet) has(v int) bool {
	_, ok := s[v]
	return ok
}

// ApplyFilter keeps the records whose year and season are selected and whose
// working day matches the selector. The input is not modified and order is
// kept. An empty year or season selection matches nothing.
func ApplyFilter(records []domain.EnrichedRecord, sel domain.FilterSelection) []domain.EnrichedRecord {
	out := make([]domain.EnrichedRecord, 0)
	if len(sel.Years) == 0 || len(sel.Seasons) == 0 {
		return out
	}

	years := newIntSet(sel.Years)
	seasons := newIntSet(sel.Seasons)

	for _, r := range records {
		if years.has(r.Year) && seasons.has(r.Season) && sel.WorkingDay.Matches(r.WorkingDay) {
			out = append(out, r)
		}
	}
	return out
}

// Options lists the choices for the select controls: years in order of first
// appearance, seasons ascending, and the fixed working day states.
func Options(records []domain.EnrichedRecord) domain.FilterOptions {
	years := make([]int, 0)
	seenYears := make(intSet)
	seasons := make([]int, 0)
	seenSeasons := make(intSet)

	for _, r := range records {
		if !seenYears.has(r.Year) {
			seenYears[r.Year] = struct{}{}
			years = append(years, r.Year)
		}
		if !seenSeasons.has(r.Season) {
			seenSeasons[r.Season] = struct{}{}
			seasons = append(seasons, r.Season)
		}
	}
	slices.Sort(seasons)

	return domain.FilterOptions{
		Years:       years,
		Seasons:     seasons,
		WorkingDays: slices.Clone(domain.WorkingDayChoices),
	}
}
