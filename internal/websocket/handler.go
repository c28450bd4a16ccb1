package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"bikedash/internal/config"
	"bikedash/internal/infrastructure"
)

// Handler upgrades HTTP requests and attaches the connection to the hub
type Handler struct {
	hub            *Hub
	upgrader       websocket.Upgrader
	opts           ClientOptions
	allowedOrigins []string
	logger         *slog.Logger
}

// NewHandler creates the upgrade endpoint
func NewHandler(hub *Hub, wsCfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Handler{
		hub:            hub,
		opts:           ClientOptionsFrom(wsCfg),
		allowedOrigins: allowedOrigins,
		logger:         logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  wsCfg.ReadBufferSize,
		WriteBufferSize: wsCfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin allows requests without an Origin header, same-host requests
// and configured origins ("*" allows any).
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	if slices.Contains(h.allowedOrigins, "*") || slices.Contains(h.allowedOrigins, origin) {
		return true
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.allowedOrigins))
	return false
}

// ServeHTTP handles websocket requests from the peer
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	traceID := infrastructure.GetTraceID(ctx)
	if traceID == "" {
		traceID = middleware.GetReqID(ctx)
	}

	client := NewClient(h.hub, WrapConn(conn), traceID, h.opts, h.logger)
	h.hub.Register(client)

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines
	go client.WritePump()
	go client.ReadPump()
}
