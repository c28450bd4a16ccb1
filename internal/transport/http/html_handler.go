package http

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"bikedash/pkg/contracts"
	api "bikedash/pkg/contracts/api/v1"
)

// SnapshotSource is the read side of the dashboard session
type SnapshotSource interface {
	Snapshot(ctx context.Context) *api.SnapshotResponse
}

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Bike Rentals Dashboard</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .status { padding: 10px; margin: 10px 0; border-radius: 4px; }
        .loaded { background-color: #d4edda; color: #155724; }
        .empty { background-color: #fff3cd; color: #856404; }
        table { border-collapse: collapse; }
        td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
    </style>
</head>
<body>
    <h1>Bike Rentals Dashboard</h1>
    {{if .Snapshot.Loaded}}
    <div class="status loaded">
        <strong>DataLoaded</strong>: {{.Snapshot.Dataset.Name}} ({{.Snapshot.Dataset.RecordCount}} records)
    </div>
    <p>Matching records: {{.Snapshot.Charts.RecordCount}}</p>
    <table>
        <tr><th>Chart</th><th>Groups</th></tr>
        {{range .Snapshot.Charts.Charts}}<tr><td>{{.Title}}</td><td>{{len .Points}}</td></tr>
        {{end}}
    </table>
    <ul>
        <li><a href="/api/export/xlsx">Download workbook</a></li>
        <li><a href="/api/export/csv">Download CSV</a></li>
    </ul>
    {{else}}
    <div class="status empty">
        <strong>NoDataLoaded</strong>: Please upload a CSV file to begin.
    </div>
    <p>Required columns: {{range $i, $c := .Columns}}{{if $i}}, {{end}}<code>{{$c}}</code>{{end}}</p>
    {{end}}
    <h2>API</h2>
    <ul>
        <li><a href="/api/dashboard">Snapshot</a></li>
        <li><a href="/api/health">Health Check</a></li>
        <li><a href="/api/version">Version Info</a></li>
    </ul>
    <footer>{{.Version}}</footer>
</body>
</html>
`))

type statusPageData struct {
	Snapshot *api.SnapshotResponse
	Columns  []string
	Version  string
}

// ServeStatusPage renders the session state as a minimal HTML page
func ServeStatusPage(source SnapshotSource, columns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := statusPageData{
			Snapshot: source.Snapshot(r.Context()),
			Columns:  columns,
			Version:  contracts.GetVersionString(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := statusPage.Execute(w, data); err != nil {
			logger.ErrorContext(r.Context(), "Error rendering status page", slog.String("error", err.Error()))
		}
	}
}
