package boxes

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/shared/html"
	"baletrack/models"
)

func statusOptions() []html.Option {
	opts := make([]html.Option, 0, len(models.BoxStatuses))
	for _, s := range models.BoxStatuses {
		opts = append(opts, html.Option{Value: string(s), Label: s.Label()})
	}
	return opts
}

func BoxesPage(data ListPageData) templ.Component {
	return html.Page("Boxes", func(ctx context.Context, b *strings.Builder) {
		b.WriteString(`<header class="page-head"><h1>Boxes</h1><a class="button" href="/boxes/new">New box</a></header>`)
		b.WriteString(html.Flash(data.Status, ""))
		b.WriteString(html.LoadFailedBanner(data.LoadFailed))
		fmt.Fprintf(b, `<form method="get" action="/boxes" class="filters"><input type="search" name="q" value="%s" placeholder="Box number or description">`, html.Esc(data.Query))
		b.WriteString(html.Select("Status", "box_status", statusOptions(), string(data.BoxStatus), "All statuses"))
		b.WriteString(`<button type="submit">Filter</button></form>`)
		fmt.Fprintf(b, `<p class="muted">Showing %d of %d boxes</p>`, len(data.Rows), data.Total)
		if len(data.Rows) == 0 {
			b.WriteString(`<p class="empty">No boxes found.</p>`)
			return
		}
		b.WriteString(`<table><thead><tr><th>Box #</th><th>Description</th><th>Status</th><th>Bales</th></tr></thead><tbody>`)
		for _, box := range data.Rows {
			fmt.Fprintf(b, `<tr><td><a href="/boxes/%s">%s</a></td><td>%s</td><td><span class="badge %s">%s</span></td><td>%d</td></tr>`,
				html.Esc(url.PathEscape(box.ID.String())), html.Esc(html.OrDash(box.BoxNumber)), html.Esc(html.OrDash(box.Description)),
				html.Esc(string(box.BoxStatus)), html.Esc(box.BoxStatus.Label()), len(box.Bales))
		}
		b.WriteString(`</tbody></table>`)
	})
}

func BoxDetailPage(data DetailPageData) templ.Component {
	box := data.Box
	return html.Page("Box "+box.BoxNumber, func(ctx context.Context, b *strings.Builder) {
		id := url.PathEscape(box.ID.String())
		fmt.Fprintf(b, `<header class="page-head"><h1>Box %s</h1><a class="button" href="/boxes/%s/edit">Edit</a>`, html.Esc(box.BoxNumber), html.Esc(id))
		b.WriteString(html.DeleteButton(ctx, "/boxes/"+id+"/delete", "box"))
		b.WriteString(`</header>`)
		b.WriteString(html.Flash(data.Status, ""))
		fmt.Fprintf(b, `<dl class="details"><dt>Status</dt><dd>%s</dd><dt>Description</dt><dd>%s</dd><dt>Total mass</dt><dd>%s kg</dd></dl>`,
			html.Esc(box.BoxStatus.Label()), html.Esc(html.OrDash(box.Description)), strconv.FormatFloat(data.TotalMass, 'f', -1, 64))
		fmt.Fprintf(b, `<h2>Bales in this box (%d)</h2>`, len(data.Bales))
		b.WriteString(html.LoadFailedBanner(data.LoadFailed))
		if len(data.Bales) == 0 {
			b.WriteString(`<p class="empty">This box is empty.</p>`)
			return
		}
		b.WriteString(`<table><thead><tr><th>Barcode</th><th>Farmer</th><th>Mass (kg)</th><th>Class</th><th>Fault</th></tr></thead><tbody>`)
		for _, bale := range data.Bales {
			fault := "No"
			if bale.HasFault {
				fault = "Yes"
			}
			fmt.Fprintf(b, `<tr><td><a href="/bales/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				html.Esc(url.PathEscape(bale.ID.String())), html.Esc(html.OrDash(bale.BarCode)), html.Esc(bale.FarmerName()),
				html.Esc(html.FormatFloat(bale.Mass)), html.Esc(bale.Classification.Label()), fault)
		}
		b.WriteString(`</tbody></table>`)
	})
}

func BoxFormPage(data FormPageData) templ.Component {
	title, action := "New box", "/boxes"
	if data.IsEdit() {
		title, action = "Edit box", "/boxes/"+url.PathEscape(data.ID)
	}
	return html.Page(title, func(ctx context.Context, b *strings.Builder) {
		fmt.Fprintf(b, `<h1>%s</h1>`, html.Esc(title))
		b.WriteString(html.Flash("", data.Error))
		b.WriteString(html.PostForm(ctx, action, "stack"))
		b.WriteString(html.TextInput("Box number", "box_number", data.BoxNumber, true))
		b.WriteString(html.TextArea("Description", "description", data.Description))
		b.WriteString(html.Select("Box status", "box_status", statusOptions(), data.BoxStatus, ""))
		b.WriteString(`<div class="actions"><button type="submit">Save</button><a href="/boxes">Cancel</a></div></form>`)
	})
}
