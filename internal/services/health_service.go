package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"bikedash/pkg/contracts"
)

// HubStatus is the part of the websocket hub the health checks read
type HubStatus interface {
	Running() bool
	ClientCount() int
}

// SessionStatus is the part of the dashboard session the health checks read
type SessionStatus interface {
	State() string
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	hub       HubStatus
	session   SessionStatus
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. hub and session may be nil;
// a nil dependency reports not_ready.
func NewHealthService(version string, hub HubStatus, session SessionStatus, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		hub:       hub,
		session:   session,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status. Having no dataset loaded is a
// valid state and does not make the service unready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"websocket": hs.checkWebSocketHealth(),
			"dashboard": hs.checkDashboardHealth(),
		},
	}

	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// Ready reports whether every dependency is ready
func (hs *HealthService) Ready(ctx context.Context) bool {
	return hs.ReadinessCheck(ctx).Status == "ready"
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":      hs.version,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	// Include build info if available
	if info.BuildTime != "" {
		result["build_time"] = info.BuildTime
	}
	if info.GitCommit != "" {
		result["git_commit"] = info.GitCommit
	}

	return result
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil || !hs.hub.Running() {
		return ServiceHealth{Status: "not_ready", Message: "WebSocket hub not running"}
	}
	return ServiceHealth{Status: "ready", Message: "WebSocket hub is running"}
}

func (hs *HealthService) checkDashboardHealth() ServiceHealth {
	if hs.session == nil {
		return ServiceHealth{Status: "not_ready", Message: "dashboard session not initialized"}
	}
	return ServiceHealth{Status: "ready", Message: "session state: " + hs.session.State()}
}
