package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bikedash/internal/config"
	"bikedash/internal/dataprocessing"
	apperrors "bikedash/internal/errors"
	"bikedash/internal/exporter"
	"bikedash/internal/infrastructure"
	"bikedash/internal/validation"
	api "bikedash/pkg/contracts/api/v1"
	"bikedash/pkg/contracts/domain"
	"bikedash/pkg/contracts/events"
)

// Broadcaster pushes session events to connected browsers
type Broadcaster interface {
	Publish(ctx context.Context, msgType events.MessageType, data interface{})
}

// Rejection reasons reported with dataset:rejected
const (
	RejectFormat = "format"
	RejectParse  = "parse"
)

// DashboardService owns the single dashboard session: the loaded dataset
// and the active selection. Handlers run concurrently, so state is guarded
// by a mutex; the last write wins. Renders work on the immutable record
// slice of the dataset that was current when they started.
type DashboardService struct {
	mu        sync.RWMutex
	dataset   *domain.Dataset
	options   domain.FilterOptions
	selection domain.FilterSelection

	broadcaster Broadcaster
	validator   *validation.StructValidator
	exporter    *exporter.ChartExporter
	metrics     *infrastructure.DashboardMetrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewDashboardService creates a session in the no-data state. broadcaster
// and metrics may be nil.
func NewDashboardService(broadcaster Broadcaster, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DashboardService{
		broadcaster: broadcaster,
		validator:   validation.NewStructValidator(),
		exporter:    exporter.NewChartExporter(),
		metrics:     metrics,
		tracer:      otel.Tracer(infrastructure.InstrumentationName),
		logger:      logger.With(slog.String("component", "dashboard_service")),
	}
}

// State reports whether a dataset is loaded
func (s *DashboardService) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return api.StateNoData
	}
	return api.StateLoaded
}

// LoadDataset parses and enriches an uploaded file. On success it replaces
// the dataset, resets the selection to every option and returns the new
// snapshot. On failure the session is left exactly as it was.
func (s *DashboardService) LoadDataset(ctx context.Context, name string, r io.Reader) (*api.SnapshotResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.load_dataset",
		trace.WithAttributes(attribute.String("dataset.name", name)))
	defer span.End()

	ds, err := dataprocessing.LoadDataset(ctx, name, r)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.reject(ctx, name, err)
		return nil, err
	}

	options := dataprocessing.Options(ds.Records)
	selection := normalize(options.DefaultSelection())

	start := time.Now()
	results := dataprocessing.Render(ds.Records, selection)
	s.metrics.RecordRender(ctx, events.TriggerLoad, time.Since(start), results.RecordCount)

	s.mu.Lock()
	s.dataset = ds
	s.options = options
	s.selection = selection
	s.mu.Unlock()

	s.metrics.RecordDatasetLoad(ctx, ds.Len())
	span.SetAttributes(attribute.Int("dataset.records", ds.Len()))
	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("dataset_id", ds.ID),
		slog.String("name", name),
		slog.Int("records", ds.Len()),
		slog.Any("years", options.Years),
		slog.Any("seasons", options.Seasons))

	info := ds.Info()
	s.publish(ctx, events.MessageTypeDatasetLoaded, events.DatasetLoadedData{
		Dataset:   info,
		Options:   options,
		Selection: selection,
	})
	s.publish(ctx, events.MessageTypeChartsUpdated, events.ChartsUpdatedData{
		DatasetID: ds.ID,
		Trigger:   events.TriggerLoad,
		Results:   results,
	})

	return &api.SnapshotResponse{
		State:     api.StateLoaded,
		Dataset:   &info,
		Options:   &options,
		Selection: &selection,
		Charts:    &results,
	}, nil
}

// reject logs and broadcasts a failed upload
func (s *DashboardService) reject(ctx context.Context, name string, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		s.logger.WarnContext(ctx, "Dataset load aborted",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return
	}

	data := events.DatasetRejectedData{
		Name:    name,
		Message: appErr.Message,
	}
	switch appErr.Type {
	case apperrors.ErrTypeParsing:
		data.Reason = RejectParse
		data.Row, _ = appErr.Context["row"].(int)
		data.Column, _ = appErr.Context["column"].(string)
	default:
		data.Reason = RejectFormat
	}

	s.metrics.RecordDatasetRejection(ctx, data.Reason)
	s.logger.WarnContext(ctx, "Dataset rejected",
		slog.String("name", name),
		slog.String("reason", data.Reason),
		slog.String("error", err.Error()))
	s.publish(ctx, events.MessageTypeDatasetRejected, data)
}

// Snapshot returns the whole session. With no dataset loaded only the
// state is set.
func (s *DashboardService) Snapshot(ctx context.Context) *api.SnapshotResponse {
	s.mu.RLock()
	ds, options, selection := s.dataset, s.options, s.selection
	s.mu.RUnlock()

	if ds == nil {
		return &api.SnapshotResponse{State: api.StateNoData}
	}

	info := ds.Info()
	results := s.render(ctx, ds, selection, "snapshot")
	return &api.SnapshotResponse{
		State:     api.StateLoaded,
		Dataset:   &info,
		Options:   &options,
		Selection: &selection,
		Charts:    &results,
	}
}

// Filters returns the filter choices and the active selection
func (s *DashboardService) Filters(ctx context.Context) (*api.FiltersResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return &api.FiltersResponse{Options: s.options, Selection: s.selection}, nil
}

// Charts renders the active selection
func (s *DashboardService) Charts(ctx context.Context) (*api.ChartsResponse, error) {
	s.mu.RLock()
	ds, selection := s.dataset, s.selection
	s.mu.RUnlock()

	if ds == nil {
		return nil, ErrNoDataset
	}
	return &api.ChartsResponse{DatasetID: ds.ID, ChartResults: s.render(ctx, ds, selection, "charts")}, nil
}

// ApplySelection stores sel as the active selection and re-renders every
// chart. Values absent from the dataset are allowed and simply match nothing.
func (s *DashboardService) ApplySelection(ctx context.Context, sel domain.FilterSelection) (*api.ChartsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.apply_selection")
	defer span.End()

	if err := s.validator.ValidateStruct(sel); err != nil {
		return nil, err
	}
	sel = normalize(sel)

	s.mu.Lock()
	ds := s.dataset
	if ds == nil {
		s.mu.Unlock()
		return nil, ErrNoDataset
	}
	s.selection = sel
	s.mu.Unlock()

	results := s.render(ctx, ds, sel, events.TriggerSelection)
	s.logger.InfoContext(ctx, "Selection applied",
		slog.Any("years", sel.Years),
		slog.Any("seasons", sel.Seasons),
		slog.String("workingday", string(sel.WorkingDay)),
		slog.Int("matching_records", results.RecordCount))

	s.publish(ctx, events.MessageTypeChartsUpdated, events.ChartsUpdatedData{
		DatasetID: ds.ID,
		Trigger:   events.TriggerSelection,
		Results:   results,
	})

	return &api.ChartsResponse{DatasetID: ds.ID, ChartResults: results}, nil
}

// Preview renders sel without storing it or notifying clients
func (s *DashboardService) Preview(ctx context.Context, sel domain.FilterSelection) (*api.ChartsResponse, error) {
	if err := s.validator.ValidateStruct(sel); err != nil {
		return nil, err
	}
	sel = normalize(sel)

	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()
	if ds == nil {
		return nil, ErrNoDataset
	}

	return &api.ChartsResponse{DatasetID: ds.ID, ChartResults: s.render(ctx, ds, sel, "preview")}, nil
}

// Export writes the charts of the active selection to w
func (s *DashboardService) Export(ctx context.Context, format exporter.Format, w io.Writer) error {
	ctx, span := s.tracer.Start(ctx, "dashboard.export",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	s.mu.RLock()
	ds, selection := s.dataset, s.selection
	s.mu.RUnlock()
	if ds == nil {
		return ErrNoDataset
	}

	results := s.render(ctx, ds, selection, "export")
	meta := exporter.ReportMeta{
		Title:       config.AppTitle,
		DatasetName: ds.Name,
		DatasetID:   ds.ID,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.exporter.Export(w, format, results, meta); err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("export %s: %w", format, err)
	}

	s.logger.InfoContext(ctx, "Charts exported",
		slog.String("format", string(format)),
		slog.String("dataset_id", ds.ID))
	return nil
}

// render runs the pipeline and records its cost
func (s *DashboardService) render(ctx context.Context, ds *domain.Dataset, sel domain.FilterSelection, trigger string) domain.ChartResults {
	start := time.Now()
	results := dataprocessing.Render(ds.Records, sel)
	s.metrics.RecordRender(ctx, trigger, time.Since(start), results.RecordCount)
	return results
}

func (s *DashboardService) publish(ctx context.Context, msgType events.MessageType, data interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(ctx, msgType, data)
}

// normalize replaces nil sets with empty ones so JSON shows [] not null
func normalize(sel domain.FilterSelection) domain.FilterSelection {
	if sel.Years == nil {
		sel.Years = []int{}
	}
	if sel.Seasons == nil {
		sel.Seasons = []int{}
	}
	return sel
}
