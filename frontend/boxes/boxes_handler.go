package boxes

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"baletrack/frontend/search"
	sessioncontext "baletrack/frontend/shared/context"
	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/collections"
	"baletrack/models"
)

func BoxesPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := data.Boxes.GetAll(r.Context())
		q := r.URL.Query()
		status, _ := models.ParseBoxStatus(q.Get("box_status"))
		html.Render(w, r, BoxesPage(ListPageData{
			Query:      q.Get("q"),
			BoxStatus:  status,
			Status:     q.Get("status"),
			LoadFailed: err != nil,
			Total:      len(all),
			Rows:       search.Boxes(all, q.Get("q"), status),
		}), "boxes page")
	}
}

func BoxDetailPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		box, err := data.Boxes.GetByID(r.Context(), id)
		if err != nil {
			html.Unavailable(w, r, "box", "/boxes")
			return
		}
		if box == nil {
			html.NotFound(w, r, "Box", "/boxes")
			return
		}
		bales, err := data.Bales.GetAllInBox(r.Context(), id)
		html.Render(w, r, BoxDetailPage(DetailPageData{
			Box:        *box,
			Bales:      bales,
			TotalMass:  totalMass(bales),
			LoadFailed: err != nil,
			Status:     r.URL.Query().Get("status"),
		}), "box detail page")
	}
}

func NewBoxPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html.Render(w, r, BoxFormPage(FormPageData{BoxStatus: string(models.BoxStatusOpen)}), "box form")
	}
}

func EditBoxPageQueryHandler(data *collections.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		box, err := data.Boxes.GetByID(r.Context(), id)
		if err != nil {
			html.Unavailable(w, r, "box", "/boxes")
			return
		}
		if box == nil {
			html.NotFound(w, r, "Box", "/boxes")
			return
		}
		html.Render(w, r, BoxFormPage(FormPageData{
			ID:          id,
			BoxNumber:   box.BoxNumber,
			Description: box.Description,
			BoxStatus:   string(box.BoxStatus),
		}), "box form")
	}
}

func CreateBoxCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/boxes?status="+url.QueryEscape("Invalid form data"), http.StatusSeeOther)
			return
		}
		form := formFrom(r.PostForm, "")
		patch, err := parseBoxForm(form)
		if err != nil {
			form.Error = err.Error()
			html.RenderStatus(w, r, http.StatusUnprocessableEntity, BoxFormPage(form), "box form")
			return
		}
		created, err := data.Boxes.Create(r.Context(), patch)
		if err != nil {
			form.Error = "Could not save box: " + err.Error()
			html.RenderStatus(w, r, http.StatusBadGateway, BoxFormPage(form), "box form")
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionCreate, collections.BoxesCollection, created.ID.String(), patch)
		http.Redirect(w, r, "/boxes/"+url.PathEscape(created.ID.String())+"?status="+url.QueryEscape("Box created"), http.StatusSeeOther)
	}
}

func UpdateBoxCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/boxes/"+url.PathEscape(id)+"?status="+url.QueryEscape("Invalid form data"), http.StatusSeeOther)
			return
		}
		form := formFrom(r.PostForm, id)
		patch, err := parseBoxForm(form)
		if err != nil {
			form.Error = err.Error()
			html.RenderStatus(w, r, http.StatusUnprocessableEntity, BoxFormPage(form), "box form")
			return
		}
		if _, err := data.Boxes.Update(r.Context(), id, patch); err != nil {
			form.Error = "Could not save box: " + err.Error()
			html.RenderStatus(w, r, http.StatusBadGateway, BoxFormPage(form), "box form")
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionUpdate, collections.BoxesCollection, id, patch)
		http.Redirect(w, r, "/boxes/"+url.PathEscape(id)+"?status="+url.QueryEscape("Box updated"), http.StatusSeeOther)
	}
}

func DeleteBoxCommandHandler(data *collections.Client, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := data.Boxes.Delete(r.Context(), id); err != nil {
			http.Redirect(w, r, "/boxes/"+url.PathEscape(id)+"?status="+url.QueryEscape("Could not delete box: "+err.Error()), http.StatusSeeOther)
			return
		}
		auditSvc.Track(r.Context(), sessioncontext.User(r.Context()), audit.ActionDelete, collections.BoxesCollection, id, nil)
		http.Redirect(w, r, "/boxes?status="+url.QueryEscape("Box deleted"), http.StatusSeeOther)
	}
}

func formFrom(form url.Values, id string) FormPageData {
	return FormPageData{
		ID:          id,
		BoxNumber:   strings.TrimSpace(form.Get("box_number")),
		Description: strings.TrimSpace(form.Get("description")),
		BoxStatus:   strings.TrimSpace(form.Get("box_status")),
	}
}

func parseBoxForm(form FormPageData) (models.BoxPatch, error) {
	if form.BoxNumber == "" {
		return models.BoxPatch{}, errors.New("box number required")
	}
	status, err := models.ParseBoxStatus(form.BoxStatus)
	if err != nil {
		return models.BoxPatch{}, err
	}
	return models.BoxPatch{
		Status:      models.Ptr(models.StatusPublished),
		BoxNumber:   models.Ptr(form.BoxNumber),
		Description: models.Ptr(form.Description),
		BoxStatus:   &status,
	}, nil
}
