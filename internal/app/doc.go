// Package app wires the dashboard together: configuration, logging,
// OpenTelemetry, the WebSocket hub, the dashboard session and the chi
// router.
//
// # Routing
//
// RequestID and RealIP run for every request. The WebSocket endpoint and
// the Prometheus scrape endpoint sit outside the main group so their
// ResponseWriter is never wrapped. Everything else passes through
// OTel → StructuredLogger → Recoverer → SecurityHeaders → CORS → rate
// limit, and /api additionally gets Timeout and Compress.
//
// # Lifecycle
//
// Run serves until its context is cancelled or SIGINT/SIGTERM arrives, then
// drains HTTP, closes every WebSocket client and flushes telemetry. It never
// calls os.Exit; main decides the exit code.
package app
