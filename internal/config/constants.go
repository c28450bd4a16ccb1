package config

import "bikedash/pkg/contracts"

// Application constants
const (
	AppName    = "bikedash"
	AppTitle   = "Bike Rentals Dashboard"
	AppVersion = contracts.Version

	// DefaultMaxUploadBytes caps a single dataset upload at 32 MiB
	DefaultMaxUploadBytes = 32 << 20

	// UploadFormField is the multipart field carrying the dataset
	UploadFormField = "file"

	// API Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
