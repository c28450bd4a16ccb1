// Package api contains the HTTP request and response contracts of the
// dashboard. Version v1 represents the current stable API version.
package api

import (
	"bikedash/pkg/contracts/domain"
)

// FilterRequest is the body of PUT /api/filters and POST /api/charts/preview.
// Every key must be present; an empty list selects nothing.
type FilterRequest struct {
	Years      []int  `json:"years" validate:"required,dive,gte=0"`
	Seasons    []int  `json:"seasons" validate:"required,dive,gte=0"`
	WorkingDay string `json:"workingday" validate:"required,oneof=All 0 1"`
}

// ToSelection converts the request into a domain selection
func (r FilterRequest) ToSelection() domain.FilterSelection {
	return domain.FilterSelection{
		Years:      append([]int{}, r.Years...),
		Seasons:    append([]int{}, r.Seasons...),
		WorkingDay: domain.WorkingDaySelector(r.WorkingDay),
	}
}

// ExportRequest identifies a download format
type ExportRequest struct {
	Format string `json:"format" param:"format" validate:"required,oneof=csv xlsx"`
}
