package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bikedash/internal/errors"
	"bikedash/internal/exporter"
	"bikedash/internal/middleware"
	api "bikedash/pkg/contracts/api/v1"
)

// defaultUploadName names raw-body uploads that carry no ?name=
const defaultUploadName = "upload.csv"

// DashboardHandler exposes the dashboard session over HTTP
type DashboardHandler struct {
	service        DashboardService
	validator      *middleware.ValidationMiddleware
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		validator:      middleware.NewValidationMiddleware(logger, errorHandler),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Routes returns the dashboard routes, to be mounted under /api
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dashboard", h.GetSnapshot)
	r.Post("/dataset", h.UploadDataset)

	r.Route("/filters", func(r chi.Router) {
		r.Get("/", h.GetFilters)
		r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Put("/", h.UpdateFilters)
	})

	r.Get("/charts", h.GetCharts)
	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Post("/charts/preview", h.PreviewCharts)

	r.Get("/export/{format}", h.Export)

	return r
}

// GetSnapshot handles GET /api/dashboard
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, h.service.Snapshot(r.Context()))
}

// UploadDataset handles POST /api/dataset. The file arrives either as the
// multipart field "file" or as a raw text/csv body.
func (h *DashboardHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.ContentLength > h.maxUploadBytes {
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	name, body, err := h.datasetSource(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer body.Close()

	snap, err := h.service.LoadDataset(ctx, name, body)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "Dataset uploaded",
		slog.String("name", name),
		slog.Int("records", snap.Dataset.RecordCount))

	render.Status(r, http.StatusCreated)
	render.Render(w, r, snap)
}

func (h *DashboardHandler) datasetSource(r *http.Request) (string, io.ReadCloser, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "", nil, apierrors.ErrValidation("Content-Type", "upload a multipart form or a text/csv body")
	}

	switch mediaType {
	case "multipart/form-data":
		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return "", nil, err
			}
			return "", nil, apierrors.ErrValidation("file", `multipart field "file" is required`)
		}
		if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
			file.Close()
			return "", nil, apierrors.ErrValidation("file", "dataset must be a .csv file")
		}
		return filepath.Base(header.Filename), file, nil

	case "text/csv", "text/plain":
		name := r.URL.Query().Get("name")
		if name == "" {
			name = defaultUploadName
		}
		return filepath.Base(name), r.Body, nil

	default:
		return "", nil, apierrors.NewWithDetails(
			http.StatusUnsupportedMediaType,
			apierrors.CodeUnsupportedMedia,
			"Unsupported content type",
			map[string]interface{}{
				"content_type": mediaType,
				"allowed":      []string{"multipart/form-data", "text/csv"},
			},
		)
	}
}

// GetFilters handles GET /api/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.service.Filters(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Render(w, r, filters)
}

// UpdateFilters handles PUT /api/filters
func (h *DashboardHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	charts, err := h.service.ApplySelection(r.Context(), req.ToSelection())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Render(w, r, charts)
}

// GetCharts handles GET /api/charts
func (h *DashboardHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.service.Charts(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Render(w, r, charts)
}

// PreviewCharts handles POST /api/charts/preview
func (h *DashboardHandler) PreviewCharts(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	charts, err := h.service.Preview(r.Context(), req.ToSelection())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Render(w, r, charts)
}

// Export handles GET /api/export/{format}. The file is built in memory so
// a failure can still be reported as a problem response.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "Export download interrupted",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}
