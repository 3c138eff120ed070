package shipments

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"baletrack/frontend/search"
	sessioncontext "baletrack/frontend/shared/context"
	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/collections"
	"baletrack/models"
)

func ShipmentsPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := data.Shipments.GetAll(r.Context())
		q := r.URL.Query()
		status := models.RecordStatus(q.Get("record_status"))
		html.Render(w, r, ShipmentsPage(ListPageData{
			Query:        q.Get("q"),
			RecordStatus: status,
			Status:       q.Get("status"),
			LoadFailed:   err != nil,
			Total:        len(all),
			Rows:         search.Shipments(all, q.Get("q"), status),
		}), "shipments page")
	}
}

func ShipmentDetailPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipment, err := data.Shipments.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			html.Unavailable(w, r, "shipment", "/shipments")
			return
		}
		if shipment == nil {
			html.NotFound(w, r, "Shipment", "/shipments")
			return
		}
		all, err := data.Bales.GetAll(r.Context())
		bales, missing := shippedBales(shipment.Bales, all)
		html.Render(w, r, ShipmentDetailPage(DetailPageData{
			Shipment:   *shipment,
			Bales:      bales,
			Missing:    missing,
			LoadFailed: err != nil,
			Status:     r.URL.Query().Get("status"),
		}), "shipment detail page")
	}
}

func formPage(ctx context.Context, data *collections.Client, page FormPageData) FormPageData {
	bales, err := data.Bales.GetAll(ctx)
	page.Bales = baleOptions(bales)
	page.LoadFailed = err != nil
	return page
}

func NewShipmentPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := FormPageData{Values: FormValues{Status: string(models.StatusDraft)}}
		html.Render(w, r, ShipmentFormPage(formPage(r.Context(), data, page)), "shipment form")
	}
}

func EditShipmentPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		shipment, err := data.Shipments.GetByID(r.Context(), id)
		if err != nil {
			html.Unavailable(w, r, "shipment", "/shipments")
			return
		}
		if shipment == nil {
			html.NotFound(w, r, "Shipment", "/shipments")
			return
		}
		page := FormPageData{ID: id, Values: valuesOf(*shipment)}
		html.Render(w, r, ShipmentFormPage(formPage(r.Context(), data, page)), "shipment form")
	}
}

func CreateShipmentCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/shipments?status="+url.QueryEscape("Invalid form data"), http.StatusSeeOther)
			return
		}
		values := readForm(r.PostForm)
		patch, err := toPatch(values)
		if err != nil {
			page := formPage(r.Context(), data, FormPageData{Values: values, Error: err.Error()})
			html.RenderStatus(w, r, http.StatusUnprocessableEntity, ShipmentFormPage(page), "shipment form")
			return
		}
		created, err := data.Shipments.Create(r.Context(), patch)
		if err != nil {
			page := formPage(r.Context(), data, FormPageData{Values: values, Error: "Could not save shipment: " + err.Error()})
			html.RenderStatus(w, r, http.StatusBadGateway, ShipmentFormPage(page), "shipment form")
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionCreate, collections.ShipmentsCollection, created.ID.String(), patch)
		http.Redirect(w, r, "/shipments/"+url.PathEscape(created.ID.String())+"?status="+url.QueryEscape("Shipment created"), http.StatusSeeOther)
	}
}

func UpdateShipmentCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/shipments/"+url.PathEscape(id)+"?status="+url.QueryEscape("Invalid form data"), http.StatusSeeOther)
			return
		}
		values := readForm(r.PostForm)
		patch, err := toPatch(values)
		if err != nil {
			page := formPage(r.Context(), data, FormPageData{ID: id, Values: values, Error: err.Error()})
			html.RenderStatus(w, r, http.StatusUnprocessableEntity, ShipmentFormPage(page), "shipment form")
			return
		}
		if _, err := data.Shipments.Update(r.Context(), id, patch); err != nil {
			page := formPage(r.Context(), data, FormPageData{ID: id, Values: values, Error: "Could not save shipment: " + err.Error()})
			html.RenderStatus(w, r, http.StatusBadGateway, ShipmentFormPage(page), "shipment form")
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionUpdate, collections.ShipmentsCollection, id, patch)
		http.Redirect(w, r, "/shipments/"+url.PathEscape(id)+"?status="+url.QueryEscape("Shipment updated"), http.StatusSeeOther)
	}
}

func DeleteShipmentCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := data.Shipments.Delete(r.Context(), id); err != nil {
			http.Redirect(w, r, "/shipments/"+url.PathEscape(id)+"?status="+url.QueryEscape("Could not delete shipment: "+err.Error()), http.StatusSeeOther)
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionDelete, collections.ShipmentsCollection, id, nil)
		http.Redirect(w, r, "/shipments?status="+url.QueryEscape("Shipment deleted"), http.StatusSeeOther)
	}
}
