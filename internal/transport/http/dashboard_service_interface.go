package http

import (
	"context"
	"io"

	"bikedash/internal/exporter"
	api "bikedash/pkg/contracts/api/v1"
	"bikedash/pkg/contracts/domain"
)

// DashboardService defines the session operations the HTTP layer needs
type DashboardService interface {
	Snapshot(ctx context.Context) *api.SnapshotResponse
	LoadDataset(ctx context.Context, name string, r io.Reader) (*api.SnapshotResponse, error)
	Filters(ctx context.Context) (*api.FiltersResponse, error)
	ApplySelection(ctx context.Context, sel domain.FilterSelection) (*api.ChartsResponse, error)
	Preview(ctx context.Context, sel domain.FilterSelection) (*api.ChartsResponse, error)
	Charts(ctx context.Context) (*api.ChartsResponse, error)
	Export(ctx context.Context, format exporter.Format, w io.Writer) error
}
