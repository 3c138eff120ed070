package exports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"baletrack/frontend/search"
	sessioncontext "baletrack/frontend/shared/context"
	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/collections"
)

func ExportsPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := PageData{Filter: search.ParseBaleFilter(r.URL.Query())}
		list, err := data.Shipments.GetAll(r.Context())
		if err != nil {
			slog.Warn("load shipments for exports page", slog.Any("err", err))
		}
		for _, s := range list {
			page.Shipments = append(page.Shipments, ShipmentOption{
				ID:    s.ID.String(),
				Label: fmt.Sprintf("#%s %s (%d bales)", s.ID, html.OrDash(s.Filters), len(s.Bales)),
			})
		}
		html.Render(w, r, ExportsPage(page), "exports page")
	}
}

func BalesExportCSVHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := data.Bales.GetAll(r.Context())
		if err != nil {
			slog.Error("export bales", slog.Any("err", err))
			http.Error(w, "failed to load bales from the server", http.StatusBadGateway)
			return
		}
		filter := search.ParseBaleFilter(r.URL.Query())
		rows := search.Bales(all, filter)
		body, err := buildCSV(baleHeader, rows, baleRecord)
		if err != nil {
			http.Error(w, "failed to export csv", http.StatusInternalServerError)
			return
		}
		writeCSV(w, "bales.csv", body)
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionExport, collections.BalesCollection, "",
			map[string]any{"rows": len(rows), "filter": filter.Values().Encode()})
	}
}

func FarmersExportCSVHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := data.Farmers.GetAll(r.Context())
		if err != nil {
			slog.Error("export farmers", slog.Any("err", err))
			http.Error(w, "failed to load farmers from the server", http.StatusBadGateway)
			return
		}
		rows := search.Farmers(all, r.URL.Query().Get("q"))
		body, err := buildCSV(farmerHeader, rows, farmerRecord)
		if err != nil {
			http.Error(w, "failed to export csv", http.StatusInternalServerError)
			return
		}
		writeCSV(w, "farmers.csv", body)
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionExport, collections.FarmersCollection, "",
			map[string]any{"rows": len(rows)})
	}
}

func ShipmentBalesExportCSVHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		shipment, err := data.Shipments.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "failed to load shipment from the server", http.StatusBadGateway)
			return
		}
		if shipment == nil {
			http.Error(w, "shipment not found", http.StatusNotFound)
			return
		}
		all, err := data.Bales.GetAll(r.Context())
		if err != nil {
			slog.Error("export shipment bales", slog.String("shipment_id", id), slog.Any("err", err))
			http.Error(w, "failed to load bales from the server", http.StatusBadGateway)
			return
		}
		rows := shipmentBales(shipment.Bales, all)
		body, err := buildCSV(baleHeader, rows, baleRecord)
		if err != nil {
			http.Error(w, "failed to export csv", http.StatusInternalServerError)
			return
		}
		writeCSV(w, "shipment-"+safeName(shipment.ID.String())+"-bales.csv", body)
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionExport, collections.ShipmentsCollection, shipment.ID.String(),
			map[string]any{"rows": len(rows)})
	}
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if _, err := w.Write(body); err != nil {
		slog.Warn("write csv", slog.String("file", filename), slog.Any("err", err))
	}
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, s)
}
