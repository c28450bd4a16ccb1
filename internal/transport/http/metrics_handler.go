package http

import (
	"net/http"

	apierrors "bikedash/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	prom         http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter's handler. prom is nil when metrics
// are disabled; the endpoint then answers 503.
func NewMetricsHandler(prom http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{prom: prom, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prom == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusServiceUnavailable,
			apierrors.CodeUnavailable,
			"Metrics are disabled",
			"set BIKEDASH_TELEMETRY_METRICS_ENABLED=true",
		))
		return
	}
	h.prom.ServeHTTP(w, r)
}
