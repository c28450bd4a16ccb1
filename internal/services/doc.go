// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the pure data pipeline.
//
// # Available Services
//
//	- DashboardService: the single dashboard session (dataset, selection,
//	  chart rendering, export) and its no_data / loaded state machine
//	- HealthService: health, readiness, liveness and version reports
//
// Services take an injected *slog.Logger and push session changes through
// the Broadcaster interface, which the websocket hub satisfies.
//
// # Error Handling
//
// Loader failures are returned unchanged as *errors.AppError values of type
// FORMAT or PARSING so the central error handler can map them to 422.
// Operations that need data while none is loaded return ErrNoDataset.
package services
