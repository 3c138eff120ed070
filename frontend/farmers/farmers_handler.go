package farmers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"baletrack/frontend/search"
	sessioncontext "baletrack/frontend/shared/context"
	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/collections"
)

func FarmersPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := data.Farmers.GetAll(r.Context())
		q := r.URL.Query().Get("q")
		page := ListPageData{
			Query:      q,
			Status:     r.URL.Query().Get("status"),
			LoadFailed: err != nil,
			Total:      len(all),
			Rows:       search.Farmers(all, q),
		}
		html.Render(w, r, FarmersPage(page), "farmers page")
	}
}

func FarmerDetailPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		farmer, err := data.Farmers.GetByID(r.Context(), id)
		if err != nil {
			html.Unavailable(w, r, "farmer", "/farmers")
			return
		}
		if farmer == nil {
			html.NotFound(w, r, "Farmer", "/farmers")
			return
		}
		bales, err := data.Bales.GetAllForFarmer(r.Context(), id)
		html.Render(w, r, FarmerDetailPage(DetailPageData{
			Farmer:     *farmer,
			Bales:      bales,
			LoadFailed: err != nil,
			Status:     r.URL.Query().Get("status"),
		}), "farmer detail page")
	}
}

func NewFarmerPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html.Render(w, r, FarmerFormPage(FormPageData{}), "farmer form")
	}
}

func EditFarmerPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		farmer, err := data.Farmers.GetByID(r.Context(), id)
		if err != nil {
			html.Unavailable(w, r, "farmer", "/farmers")
			return
		}
		if farmer == nil {
			html.NotFound(w, r, "Farmer", "/farmers")
			return
		}
		html.Render(w, r, FarmerFormPage(FormPageData{ID: id, Values: valuesOf(*farmer)}), "farmer form")
	}
}

func CreateFarmerCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/farmers?status="+url.QueryEscape("Invalid form data"), http.StatusSeeOther)
			return
		}
		values := readForm(r.PostForm)
		patch, err := toPatch(values)
		if err != nil {
			html.RenderStatus(w, r, http.StatusUnprocessableEntity, FarmerFormPage(FormPageData{Values: values, Error: err.Error()}), "farmer form")
			return
		}
		created, err := data.Farmers.Create(r.Context(), patch)
		if err != nil {
			html.RenderStatus(w, r, http.StatusBadGateway, FarmerFormPage(FormPageData{Values: values, Error: "Could not save farmer: " + err.Error()}), "farmer form")
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionCreate, collections.FarmersCollection, created.ID.String(), patch)
		http.Redirect(w, r, "/farmers/"+url.PathEscape(created.ID.String())+"?status="+url.QueryEscape("Farmer created"), http.StatusSeeOther)
	}
}

func UpdateFarmerCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/farmers/"+url.PathEscape(id)+"?status="+url.QueryEscape("Invalid form data"), http.StatusSeeOther)
			return
		}
		values := readForm(r.PostForm)
		patch, err := toPatch(values)
		if err != nil {
			html.RenderStatus(w, r, http.StatusUnprocessableEntity, FarmerFormPage(FormPageData{ID: id, Values: values, Error: err.Error()}), "farmer form")
			return
		}
		if _, err := data.Farmers.Update(r.Context(), id, patch); err != nil {
			html.RenderStatus(w, r, http.StatusBadGateway, FarmerFormPage(FormPageData{ID: id, Values: values, Error: "Could not save farmer: " + err.Error()}), "farmer form")
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionUpdate, collections.FarmersCollection, id, patch)
		http.Redirect(w, r, "/farmers/"+url.PathEscape(id)+"?status="+url.QueryEscape("Farmer updated"), http.StatusSeeOther)
	}
}

func DeleteFarmerCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := data.Farmers.Delete(r.Context(), id); err != nil {
			http.Redirect(w, r, "/farmers/"+url.PathEscape(id)+"?status="+url.QueryEscape("Could not delete farmer: "+err.Error()), http.StatusSeeOther)
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionDelete, collections.FarmersCollection, id, nil)
		http.Redirect(w, r, "/farmers?status="+url.QueryEscape("Farmer deleted"), http.StatusSeeOther)
	}
}
