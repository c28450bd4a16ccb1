// Package http implements the HTTP handlers of the dashboard service.
// Handlers stay thin: they parse and validate the request, delegate to the
// dashboard or health service, and render the result with go-chi/render.
//
// # Routes
//
//	GET  /api/dashboard           session snapshot
//	POST /api/dataset             upload (multipart "file" or text/csv body)
//	GET  /api/filters             filter options and active selection
//	PUT  /api/filters             apply a selection
//	GET  /api/charts              charts for the active selection
//	POST /api/charts/preview      charts for a selection, not stored
//	GET  /api/export/{format}     csv or xlsx download
//	POST /api/logs                browser log forwarding
//	GET  /api/health[/ready|/live], /api/version
//	GET  /metrics                 Prometheus scrape
//	GET  /                        status page
//
// # Errors
//
// Every failure goes through errors.ErrorHandler, which writes an RFC 7807
// problem document. Dataset format and parse failures answer 422, calls that
// need a dataset answer 409 while none is loaded.
package http
