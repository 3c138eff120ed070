package bales

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/search"
	"baletrack/frontend/shared/html"
	"baletrack/models"
)

func gradeOptions() []html.Option {
	opts := make([]html.Option, 0, len(models.Grades))
	for _, g := range models.Grades {
		opts = append(opts, html.Option{Value: string(g), Label: g.Label()})
	}
	return opts
}

var faultOptions = []html.Option{
	{Value: string(search.FaultFaulty), Label: "With fault"},
	{Value: string(search.FaultNormal), Label: "No fault"},
}

// FilterFields renders the bale list controls shared with the exports page.
func FilterFields(f search.BaleFilter) string {
	return fmt.Sprintf(`<input type="search" name="q" value="%s" placeholder="Barcode, lot or farmer">`, html.Esc(f.Query)) +
		html.Select("Class", "classification", gradeOptions(), string(f.Classification), "All classes") +
		html.Select("Fault", "fault", faultOptions, string(f.Fault), "Any")
}

func BalesPage(data ListPageData) templ.Component {
	return html.Page("Bales", func(ctx context.Context, b *strings.Builder) {
		fmt.Fprintf(b, `<header class="page-head"><h1>Bales</h1><a class="button" href="/bales/new">New bale</a><a class="button secondary" href="/exports/bales.csv?%s">Export CSV</a></header>`, html.Esc(data.Filter.Values().Encode()))
		b.WriteString(html.Flash(data.Status, ""))
		b.WriteString(html.LoadFailedBanner(data.LoadFailed))
		b.WriteString(`<form method="get" action="/bales" class="filters">` + FilterFields(data.Filter))
		b.WriteString(`<button type="submit">Filter</button></form>`)
		fmt.Fprintf(b, `<p class="muted">Showing %d of %d bales</p>`, len(data.Rows), data.Total)
		if len(data.Rows) == 0 {
			b.WriteString(`<p class="empty">No bales found.</p>`)
			return
		}
		b.WriteString(`<table><thead><tr><th>Barcode</th><th>Lot</th><th>Farmer</th><th>Box</th><th>Mass (kg)</th><th>Class</th><th>Fault</th></tr></thead><tbody>`)
		for _, bale := range data.Rows {
			fault := ""
			if bale.HasFault {
				fault = `<span class="badge fault">Fault</span>`
			}
			fmt.Fprintf(b, `<tr><td><a href="/bales/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				html.Esc(url.PathEscape(bale.ID.String())), html.Esc(html.OrDash(bale.BarCode)), html.Esc(html.OrDash(bale.LotNumber)),
				html.Esc(bale.FarmerName()), html.Esc(html.OrDash(bale.BoxNumber())), html.Esc(html.FormatFloat(bale.Mass)),
				html.Esc(bale.Classification.Label()), fault)
		}
		b.WriteString(`</tbody></table>`)
	})
}

func BaleDetailPage(data DetailPageData) templ.Component {
	bale := data.Bale
	return html.Page("Bale "+bale.BarCode, func(ctx context.Context, b *strings.Builder) {
		id := url.PathEscape(bale.ID.String())
		fmt.Fprintf(b, `<header class="page-head"><h1>Bale %s</h1>`, html.Esc(html.OrDash(bale.BarCode)))
		fmt.Fprintf(b, `<a class="button" href="/bales/%s/edit">Edit</a><a class="button" href="/bales/%s/label.pdf" target="_blank">Print label</a>`, html.Esc(id), html.Esc(id))
		b.WriteString(html.DeleteButton(ctx, "/bales/"+id+"/delete", "bale"))
		b.WriteString(`</header>`)
		b.WriteString(html.Flash(data.Status, ""))

		farmer := html.Esc(bale.FarmerName())
		if fid := bale.Grower.ID(); fid != "" {
			farmer = fmt.Sprintf(`<a href="/farmers/%s">%s</a>`, html.Esc(url.PathEscape(fid.String())), farmer)
		}
		box := "-"
		if bid := bale.Box.ID(); bid != "" {
			box = fmt.Sprintf(`<a href="/boxes/%s">%s</a>`, html.Esc(url.PathEscape(bid.String())), html.Esc(html.OrDash(bale.BoxNumber())))
		}
		fmt.Fprintf(b, `<dl class="details"><dt>Farmer</dt><dd>%s</dd><dt>Box</dt><dd>%s</dd>`, farmer, box)
		for _, row := range [][2]string{
			{"Lot number", bale.LotNumber},
			{"Classification", bale.Classification.Label()},
			{"Group number", bale.GroupNumber},
			{"Mass", html.FormatFloat(bale.Mass) + " kg"},
			{"Price", html.FormatMoney(bale.Price)},
			{"Trade", bale.Trade},
			{"Buyer", bale.Buyer},
			{"Buyer's mark", bale.BuyersMark},
			{"SEQ", bale.SEQ},
			{"Appeal", bale.Appeal},
			{"Date", bale.Date},
			{"Created", html.FormatDate(bale.DateCreated)},
			{"Updated", html.FormatDate(bale.DateUpdated)},
		} {
			fmt.Fprintf(b, `<dt>%s</dt><dd>%s</dd>`, html.Esc(row[0]), html.Esc(html.OrDash(row[1])))
		}
		b.WriteString(`</dl>`)

		b.WriteString(`<h2>Grading</h2><table class="technical"><tr>`)
		values := valuesOf(bale).Technical
		for _, f := range technicalFields {
			fmt.Fprintf(b, `<th>%s</th>`, html.Esc(strings.ToUpper(f)))
		}
		b.WriteString(`</tr><tr>`)
		for _, f := range technicalFields {
			fmt.Fprintf(b, `<td>%s</td>`, html.Esc(html.OrDash(values[f])))
		}
		b.WriteString(`</tr></table>`)

		if bale.HasFault {
			fmt.Fprintf(b, `<section class="fault"><h2>Fault</h2><p>%s</p></section>`, html.Esc(html.OrDash(bale.FaultDescription)))
		}
	})
}

func BaleFormPage(data FormPageData) templ.Component {
	title, action, cancel := "New bale", "/bales", "/bales"
	if data.IsEdit() {
		id := url.PathEscape(data.ID)
		title, action, cancel = "Edit bale", "/bales/"+id, "/bales/"+id
	}
	return html.Page(title, func(ctx context.Context, b *strings.Builder) {
		v := data.Values
		fmt.Fprintf(b, `<h1>%s</h1>`, html.Esc(title))
		b.WriteString(html.Flash("", data.Error))
		if data.LoadFailed {
			b.WriteString(`<p class="flash error">Farmers or boxes could not be loaded. The pickers may be incomplete.</p>`)
		}
		b.WriteString(html.PostForm(ctx, action, "stack"))

		b.WriteString(`<fieldset><legend>Basic information</legend>`)
		b.WriteString(html.TextInput("Barcode", "bar_code", v.BarCode, true))
		b.WriteString(html.TextInput("Lot number", "lot_number", v.LotNumber, false))
		b.WriteString(html.Select("Farmer", "grower_number", data.Farmers, v.FarmerID, "No farmer"))
		b.WriteString(html.Select("Box", "box", data.Boxes, v.BoxID, "No box"))
		b.WriteString(`</fieldset>`)

		b.WriteString(`<fieldset><legend>Grading and sale</legend>`)
		b.WriteString(html.Select("Classification", "classification", gradeOptions(), v.Classification, "Unclassified"))
		b.WriteString(html.TextInput("Group number", "group_number", v.GroupNumber, false))
		b.WriteString(html.NumberInput("Mass (kg)", "mass", v.Mass))
		b.WriteString(html.NumberInput("Price", "price", v.Price))
		b.WriteString(html.TextInput("Trade", "trade", v.Trade, false))
		b.WriteString(html.TextInput("Buyer", "buyer", v.Buyer, false))
		b.WriteString(html.TextInput("Buyer's mark", "buyers_mark", v.BuyersMark, false))
		b.WriteString(html.TextInput("SEQ", "SEQ", v.SEQ, false))
		b.WriteString(html.TextInput("Appeal", "appeal", v.Appeal, false))
		b.WriteString(html.DateInput("Date", "date", v.Date))
		b.WriteString(`</fieldset>`)

		b.WriteString(`<fieldset class="grid"><legend>Technical</legend>`)
		for _, f := range technicalFields {
			b.WriteString(html.TextInput(strings.ToUpper(f), f, v.Technical[f], false))
		}
		b.WriteString(`</fieldset>`)

		b.WriteString(`<fieldset><legend>Quality</legend>`)
		b.WriteString(html.Checkbox("Has fault", "has_fault", v.HasFault))
		b.WriteString(html.TextArea("Fault description (saved only when the bale has a fault)", "fault_description", v.FaultDescription))
		b.WriteString(`</fieldset>`)

		fmt.Fprintf(b, `<div class="actions"><button type="submit">Save</button><a href="%s">Cancel</a></div></form>`, html.Esc(cancel))
	})
}
