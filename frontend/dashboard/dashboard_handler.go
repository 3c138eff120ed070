package dashboard

import (
	"log/slog"
	"net/http"

	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/collections"
)

const activityCount = 10

func DashboardPageQueryHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		bales, berr := data.Bales.GetAll(ctx)
		farmers, ferr := data.Farmers.GetAll(ctx)
		boxes, xerr := data.Boxes.GetAll(ctx)

		stats, recent := BuildStats(bales, farmers, boxes)
		page := PageData{
			Stats:       stats,
			RecentBales: recent,
			LoadFailed:  berr != nil || ferr != nil || xerr != nil,
		}
		if auditSvc != nil {
			activity, err := auditSvc.Recent(ctx, activityCount)
			if err != nil {
				slog.Error("load recent activity", slog.Any("err", err))
			}
			page.Activity = activity
		}
		html.Render(w, r, DashboardPage(page), "dashboard page")
	}
}
