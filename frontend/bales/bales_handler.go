package bales

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"baletrack/frontend/search"
	sessioncontext "baletrack/frontend/shared/context"
	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/collections"
	"baletrack/models"
)

func BalesPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := data.Bales.GetAll(r.Context())
		q := r.URL.Query()
		filter := search.ParseBaleFilter(q)
		html.Render(w, r, BalesPage(ListPageData{
			Filter:     filter,
			Status:     q.Get("status"),
			LoadFailed: err != nil,
			Total:      len(all),
			Rows:       search.Bales(all, filter),
		}), "bales page")
	}
}

// loadBale answers the not-found and unavailable pages itself and returns
// false when the caller should stop.
func loadBale(w http.ResponseWriter, r *http.Request, data *collections.Client) (models.Bale, bool) {
	bale, err := data.Bales.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		html.Unavailable(w, r, "bale", "/bales")
		return models.Bale{}, false
	}
	if bale == nil {
		html.NotFound(w, r, "Bale", "/bales")
		return models.Bale{}, false
	}
	return *bale, true
}

func BaleDetailPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bale, ok := loadBale(w, r, data)
		if !ok {
			return
		}
		html.Render(w, r, BaleDetailPage(DetailPageData{Bale: bale, Status: r.URL.Query().Get("status")}), "bale detail page")
	}
}

// BaleLabelPDFQueryHandler streams a printable barcode tag for one bale.
func BaleLabelPDFQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bale, ok := loadBale(w, r, data)
		if !ok {
			return
		}
		pdfBytes, err := renderBaleLabelPDF(labelDataOf(bale), time.Now())
		if err != nil {
			slog.Error("render bale label", slog.String("bale_id", bale.ID.String()), slog.Any("err", err))
			http.Error(w, "failed to build label pdf: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=bale-%s-label.pdf", url.PathEscape(bale.BarCode)))
		_, _ = w.Write(pdfBytes)
	}
}

// formPage loads the farmer and box pickers. A failed picker load still
// renders the form with whatever came back.
func formPage(ctx context.Context, data *collections.Client, page FormPageData) FormPageData {
	farmers, ferr := data.Farmers.GetAll(ctx)
	boxes, berr := data.Boxes.GetAll(ctx)
	page.Farmers = farmerOptions(farmers)
	page.Boxes = boxOptions(boxes)
	page.LoadFailed = ferr != nil || berr != nil
	return page
}

func NewBalePageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := FormValues{
			BoxID:    r.URL.Query().Get("box"),
			FarmerID: r.URL.Query().Get("farmer"),
		}
		html.Render(w, r, BaleFormPage(formPage(r.Context(), data, FormPageData{Values: values})), "bale form")
	}
}

func EditBalePageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bale, ok := loadBale(w, r, data)
		if !ok {
			return
		}
		page := FormPageData{ID: bale.ID.String(), Values: valuesOf(bale)}
		html.Render(w, r, BaleFormPage(formPage(r.Context(), data, page)), "bale form")
	}
}

func CreateBaleCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/bales?status="+url.QueryEscape("Invalid form data"), http.StatusSeeOther)
			return
		}
		values := readForm(r.PostForm)
		patch, err := toPatch(values)
		if err != nil {
			page := formPage(r.Context(), data, FormPageData{Values: values, Error: err.Error()})
			html.RenderStatus(w, r, http.StatusUnprocessableEntity, BaleFormPage(page), "bale form")
			return
		}
		created, err := data.Bales.Create(r.Context(), patch)
		if err != nil {
			page := formPage(r.Context(), data, FormPageData{Values: values, Error: "Could not save bale: " + err.Error()})
			html.RenderStatus(w, r, http.StatusBadGateway, BaleFormPage(page), "bale form")
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionCreate, collections.BalesCollection, created.ID.String(), patch)
		http.Redirect(w, r, "/bales/"+url.PathEscape(created.ID.String())+"?status="+url.QueryEscape("Bale "+values.BarCode+" created"), http.StatusSeeOther)
	}
}

func UpdateBaleCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/bales/"+url.PathEscape(id)+"?status="+url.QueryEscape("Invalid form data"), http.StatusSeeOther)
			return
		}
		values := readForm(r.PostForm)
		patch, err := toPatch(values)
		if err != nil {
			page := formPage(r.Context(), data, FormPageData{ID: id, Values: values, Error: err.Error()})
			html.RenderStatus(w, r, http.StatusUnprocessableEntity, BaleFormPage(page), "bale form")
			return
		}
		if _, err := data.Bales.Update(r.Context(), id, patch); err != nil {
			page := formPage(r.Context(), data, FormPageData{ID: id, Values: values, Error: "Could not save bale: " + err.Error()})
			html.RenderStatus(w, r, http.StatusBadGateway, BaleFormPage(page), "bale form")
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionUpdate, collections.BalesCollection, id, patch)
		http.Redirect(w, r, "/bales/"+url.PathEscape(id)+"?status="+url.QueryEscape("Bale "+values.BarCode+" updated"), http.StatusSeeOther)
	}
}

func DeleteBaleCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := data.Bales.Delete(r.Context(), id); err != nil {
			http.Redirect(w, r, "/bales/"+url.PathEscape(id)+"?status="+url.QueryEscape("Could not delete bale: "+err.Error()), http.StatusSeeOther)
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionDelete, collections.BalesCollection, id, nil)
		http.Redirect(w, r, "/bales?status="+url.QueryEscape("Bale deleted"), http.StatusSeeOther)
	}
}
