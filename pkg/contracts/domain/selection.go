package domain

import (
	"fmt"
	"strconv"
)

// WorkingDaySelector is the three-state working day control
type WorkingDaySelector string

const (
	WorkingDayAll WorkingDaySelector = "All"
	WorkingDayOff WorkingDaySelector = "0"
	WorkingDayOn  WorkingDaySelector = "1"
)

// WorkingDayChoices lists the selector states in display order
var WorkingDayChoices = []WorkingDaySelector{WorkingDayAll, WorkingDayOff, WorkingDayOn}

// ParseWorkingDaySelector accepts All, 0 or 1
func ParseWorkingDaySelector(s string) (WorkingDaySelector, error) {
	switch WorkingDaySelector(s) {
	case WorkingDayAll, WorkingDayOff, WorkingDayOn:
		return WorkingDaySelector(s), nil
	}
	return "", fmt.Errorf("invalid working day selector %q", s)
}

// Matches reports whether a record's working day passes the selector
func (s WorkingDaySelector) Matches(workingDay int) bool {
	switch s {
	case WorkingDayAll, "":
		return true
	default:
		v, err := strconv.Atoi(string(s))
		return err == nil && v == workingDay
	}
}

// FilterSelection holds the active user choices
type FilterSelection struct {
	Years      []int              `json:"years" validate:"dive,gte=0"`
	Seasons    []int              `json:"seasons" validate:"dive,gte=0"`
	WorkingDay WorkingDaySelector `json:"workingday" validate:"required,oneof=All 0 1"`
}

// FilterOptions lists the choices offered by the select controls
type FilterOptions struct {
	Years       []int                `json:"years"`
	Seasons     []int                `json:"seasons"`
	WorkingDays []WorkingDaySelector `json:"workingdays"`
}

// DefaultSelection selects every option. The sets are never nil, so an
// empty dataset still encodes them as [].
func (o FilterOptions) DefaultSelection() FilterSelection {
	return FilterSelection{
		Years:      append([]int{}, o.Years...),
		Seasons:    append([]int{}, o.Seasons...),
		WorkingDay: WorkingDayAll,
	}
}
