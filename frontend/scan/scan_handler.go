package scan

import (
	"log/slog"
	"net/http"

	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/collections"
)

type PageData struct {
	Code     string
	Searched bool
	Result   Result
}

// ScanPageQueryHandler renders the scan box and, when ?code= is present, the
// bale it resolves to.
func ScanPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := PageData{Code: r.URL.Query().Get("code")}
		if page.Code != "" {
			page.Searched = true
			page.Result = Lookup(r.Context(), data.Bales, page.Code)
			slog.Debug("scan lookup", slog.String("code", page.Code), slog.String("match", string(page.Result.Kind)))
		}
		html.Render(w, r, ScanPage(page), "scan page")
	}
}
