package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "bikedash/internal/errors"
	"bikedash/internal/middleware"
)

// ClientLogHandler forwards browser-side log lines into the server log
type ClientLogHandler struct {
	validator *middleware.ValidationMiddleware
	logger    *slog.Logger
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ClientLogHandler {
	return &ClientLogHandler{
		validator: middleware.NewValidationMiddleware(logger, errorHandler),
		logger:    logger.With(slog.String("handler", "client_log")),
	}
}

// LogRequest represents a client log entry
type LogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"max=200"`
}

var clientLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Handle handles POST /api/logs
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	level, ok := clientLogLevels[req.Level]
	if !ok {
		level = slog.LevelInfo
	}

	attrs := []slog.Attr{slog.String("client_source", req.Source)}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}
	h.logger.LogAttrs(r.Context(), level, req.Message, attrs...)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{"success": true})
}
