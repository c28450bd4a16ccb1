package api

import (
	"net/http"

	"bikedash/pkg/contracts/domain"
)

// Session states reported by the dashboard
const (
	StateNoData = "no_data"
	StateLoaded = "loaded"
)

// SnapshotResponse is the full view of the dashboard session. Dataset,
// Options, Selection and Charts are nil while no dataset is loaded.
type SnapshotResponse struct {
	State     string                  `json:"state"`
	Dataset   *domain.DatasetInfo     `json:"dataset,omitempty"`
	Options   *domain.FilterOptions   `json:"options,omitempty"`
	Selection *domain.FilterSelection `json:"selection,omitempty"`
	Charts    *domain.ChartResults    `json:"charts,omitempty"`
}

// Render implements render.Renderer
func (s *SnapshotResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Loaded reports whether the snapshot carries a dataset
func (s *SnapshotResponse) Loaded() bool {
	return s.State == StateLoaded
}

// FiltersResponse lists the filter choices and the active selection
type FiltersResponse struct {
	Options   domain.FilterOptions   `json:"options"`
	Selection domain.FilterSelection `json:"selection"`
}

// Render implements render.Renderer
func (f *FiltersResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ChartsResponse wraps one pipeline run
type ChartsResponse struct {
	DatasetID string `json:"dataset_id"`
	domain.ChartResults
}

// Render implements render.Renderer
func (c *ChartsResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
