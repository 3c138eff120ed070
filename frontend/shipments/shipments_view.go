package shipments

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/shared/html"
	"baletrack/models"
)

var statusOptions = []html.Option{
	{Value: string(models.StatusDraft), Label: "Draft"},
	{Value: string(models.StatusPublished), Label: "Published"},
	{Value: string(models.StatusArchived), Label: "Archived"},
}

func ShipmentsPage(data ListPageData) templ.Component {
	return html.Page("Shipments", func(ctx context.Context, b *strings.Builder) {
		b.WriteString(`<header class="page-head"><h1>Bale shipments</h1><a class="button" href="/shipments/new">New shipment</a></header>`)
		b.WriteString(html.Flash(data.Status, ""))
		b.WriteString(html.LoadFailedBanner(data.LoadFailed))
		fmt.Fprintf(b, `<form method="get" action="/shipments" class="filters"><input type="search" name="q" value="%s" placeholder="Id, filters or status">`, html.Esc(data.Query))
		b.WriteString(html.Select("Status", "record_status", statusOptions, string(data.RecordStatus), "All"))
		b.WriteString(`<button type="submit">Filter</button></form>`)
		fmt.Fprintf(b, `<p class="muted">Showing %d of %d shipments</p>`, len(data.Rows), data.Total)
		if len(data.Rows) == 0 {
			b.WriteString(`<p class="empty">No shipments found.</p>`)
			return
		}
		b.WriteString(`<table><thead><tr><th>#</th><th>Filters</th><th>Departure</th><th>Arrival</th><th>Bales</th><th>Status</th></tr></thead><tbody>`)
		for _, s := range data.Rows {
			fmt.Fprintf(b, `<tr><td><a href="/shipments/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>`,
				html.Esc(url.PathEscape(s.ID.String())), html.Esc(s.ID.String()), html.Esc(html.OrDash(s.Filters)),
				html.Esc(html.OrDash(dateValue(s.DepartureDate))), html.Esc(html.OrDash(dateValue(s.ArrivalDate))), len(s.Bales), html.Esc(string(s.Status)))
		}
		b.WriteString(`</tbody></table>`)
	})
}

func ShipmentDetailPage(data DetailPageData) templ.Component {
	s := data.Shipment
	return html.Page("Shipment "+s.ID.String(), func(ctx context.Context, b *strings.Builder) {
		id := url.PathEscape(s.ID.String())
		fmt.Fprintf(b, `<header class="page-head"><h1>Shipment %s</h1><a class="button" href="/shipments/%s/edit">Edit</a><a class="button secondary" href="/exports/shipments/%s/bales.csv">Export CSV</a>`, html.Esc(s.ID.String()), html.Esc(id), html.Esc(id))
		b.WriteString(html.DeleteButton(ctx, "/shipments/"+id+"/delete", "shipment"))
		b.WriteString(`</header>`)
		b.WriteString(html.Flash(data.Status, ""))
		fmt.Fprintf(b, `<dl class="details"><dt>Status</dt><dd>%s</dd><dt>Filters</dt><dd>%s</dd><dt>Departure</dt><dd>%s</dd><dt>Arrival</dt><dd>%s</dd></dl>`,
			html.Esc(string(s.Status)), html.Esc(html.OrDash(s.Filters)), html.Esc(html.OrDash(dateValue(s.DepartureDate))), html.Esc(html.OrDash(dateValue(s.ArrivalDate))))
		fmt.Fprintf(b, `<h2>Bales (%d)</h2>`, len(s.Bales))
		b.WriteString(html.LoadFailedBanner(data.LoadFailed))
		if data.Missing > 0 && !data.LoadFailed {
			fmt.Fprintf(b, `<p class="muted">%d bale(s) on this shipment no longer exist.</p>`, data.Missing)
		}
		if len(data.Bales) == 0 {
			b.WriteString(`<p class="empty">No bales on this shipment.</p>`)
			return
		}
		b.WriteString(`<table><thead><tr><th>Barcode</th><th>Farmer</th><th>Mass (kg)</th><th>Class</th></tr></thead><tbody>`)
		for _, bale := range data.Bales {
			fmt.Fprintf(b, `<tr><td><a href="/bales/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				html.Esc(url.PathEscape(bale.ID.String())), html.Esc(html.OrDash(bale.BarCode)), html.Esc(bale.FarmerName()),
				html.Esc(html.FormatFloat(bale.Mass)), html.Esc(bale.Classification.Label()))
		}
		b.WriteString(`</tbody></table>`)
	})
}

func ShipmentFormPage(data FormPageData) templ.Component {
	title, action, cancel := "New shipment", "/shipments", "/shipments"
	if data.IsEdit() {
		id := url.PathEscape(data.ID)
		title, action, cancel = "Edit shipment", "/shipments/"+id, "/shipments/"+id
	}
	return html.Page(title, func(ctx context.Context, b *strings.Builder) {
		v := data.Values
		fmt.Fprintf(b, `<h1>%s</h1>`, html.Esc(title))
		b.WriteString(html.Flash("", data.Error))
		if data.LoadFailed {
			b.WriteString(`<p class="flash error">Bales could not be loaded. The list below may be incomplete.</p>`)
		}
		b.WriteString(html.PostForm(ctx, action, "stack"))
		b.WriteString(html.Select("Status", "status", statusOptions, v.Status, ""))
		b.WriteString(html.TextInput("Filters", "filters", v.Filters, false))
		b.WriteString(html.DateInput("Departure date", "departure_date", v.DepartureDate))
		b.WriteString(html.DateInput("Arrival date", "arrival_date", v.ArrivalDate))
		b.WriteString(html.MultiSelect("Bales", "bales", data.Bales, v.selected()))
		fmt.Fprintf(b, `<div class="actions"><button type="submit">Save</button><a href="%s">Cancel</a></div></form>`, html.Esc(cancel))
	})
}
