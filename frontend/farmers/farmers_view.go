package farmers

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
	{Value: string(models.StatusPublished), Label: "Published"},
	{Value: string(models.StatusDraft), Label: "Draft"},
	{Value: string(models.StatusArchived), Label: "Archived"},
}

func FarmersPage(data ListPageData) templ.Component {
	return html.Page("Farmers", func(ctx context.Context, b *strings.Builder) {
		b.WriteString(`<header class="page-head"><h1>Farmers</h1><a class="button" href="/farmers/new">New farmer</a></header>`)
		b.WriteString(html.Flash(data.Status, ""))
		b.WriteString(html.LoadFailedBanner(data.LoadFailed))
		fmt.Fprintf(b, `<form method="get" action="/farmers" class="filters"><input type="search" name="q" value="%s" placeholder="Name, grower number, phone or email"><button type="submit">Search</button></form>`, html.Esc(data.Query))
		fmt.Fprintf(b, `<p class="muted">Showing %d of %d farmers</p>`, len(data.Rows), data.Total)
		if len(data.Rows) == 0 {
			b.WriteString(`<p class="empty">No farmers found.</p>`)
			return
		}
		b.WriteString(`<table><thead><tr><th>Grower #</th><th>Name</th><th>Phone</th><th>Location</th><th>Status</th></tr></thead><tbody>`)
		for _, f := range data.Rows {
			fmt.Fprintf(b, `<tr><td><a href="/farmers/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				html.Esc(url.PathEscape(f.ID.String())), html.Esc(html.OrDash(f.GrowerNumber)), html.Esc(html.OrDash(f.FullName())),
				html.Esc(html.OrDash(f.PhoneNumber)), html.Esc(html.OrDash(f.FarmLocation)), html.Esc(string(f.Status)))
		}
		b.WriteString(`</tbody></table>`)
	})
}

func FarmerDetailPage(data DetailPageData) templ.Component {
	f := data.Farmer
	return html.Page(f.FullName(), func(ctx context.Context, b *strings.Builder) {
		id := url.PathEscape(f.ID.String())
		fmt.Fprintf(b, `<header class="page-head"><h1>%s</h1><a class="button" href="/farmers/%s/edit">Edit</a>`, html.Esc(html.OrDash(f.FullName())), html.Esc(id))
		b.WriteString(html.DeleteButton(ctx, "/farmers/"+id+"/delete", "farmer"))
		b.WriteString(`</header>`)
		b.WriteString(html.Flash(data.Status, ""))
		b.WriteString(`<dl class="details">`)
		for _, row := range [][2]string{
			{"Grower number", f.GrowerNumber},
			{"National ID", f.NationalID},
			{"Phone", f.PhoneNumber},
			{"Email", f.Email},
			{"Farm location", f.FarmLocation},
			{"Status", string(f.Status)},
			{"Created", html.FormatDate(f.DateCreated)},
		} {
			fmt.Fprintf(b, `<dt>%s</dt><dd>%s</dd>`, html.Esc(row[0]), html.Esc(html.OrDash(row[1])))
		}
		b.WriteString(`</dl>`)
		fmt.Fprintf(b, `<h2>Bales (%d)</h2>`, len(data.Bales))
		b.WriteString(html.LoadFailedBanner(data.LoadFailed))
		if len(data.Bales) == 0 {
			b.WriteString(`<p class="empty">No bales recorded for this farmer.</p>`)
			return
		}
		b.WriteString(`<table><thead><tr><th>Barcode</th><th>Lot</th><th>Mass (kg)</th><th>Class</th></tr></thead><tbody>`)
		for _, bale := range data.Bales {
			fmt.Fprintf(b, `<tr><td><a href="/bales/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				html.Esc(url.PathEscape(bale.ID.String())), html.Esc(html.OrDash(bale.BarCode)), html.Esc(html.OrDash(bale.LotNumber)),
				html.Esc(html.FormatFloat(bale.Mass)), html.Esc(bale.Classification.Label()))
		}
		b.WriteString(`</tbody></table>`)
	})
}

func FarmerFormPage(data FormPageData) templ.Component {
	title, action := "New farmer", "/farmers"
	if data.IsEdit() {
		title, action = "Edit farmer", "/farmers/"+url.PathEscape(data.ID)
	}
	return html.Page(title, func(ctx context.Context, b *strings.Builder) {
		v := data.Values
		fmt.Fprintf(b, `<h1>%s</h1>`, html.Esc(title))
		b.WriteString(html.Flash("", data.Error))
		b.WriteString(html.PostForm(ctx, action, "stack"))
		b.WriteString(html.TextInput("Grower number", "grower_number", v.GrowerNumber, true))
		b.WriteString(html.TextInput("First name", "first_name", v.FirstName, true))
		b.WriteString(html.TextInput("Last name", "last_name", v.LastName, true))
		b.WriteString(html.TextInput("National ID", "national_id", v.NationalID, false))
		b.WriteString(html.TextInput("Phone", "phone_number", v.PhoneNumber, false))
		b.WriteString(html.TextInput("Email", "email", v.Email, false))
		b.WriteString(html.TextInput("Farm location", "farm_location", v.FarmLocation, false))
		status := v.Status
		if status == "" {
			status = string(models.StatusPublished)
		}
		b.WriteString(html.Select("Status", "status", statusOptions, status, ""))
		cancel := "/farmers"
		if data.IsEdit() {
			cancel += "/" + url.PathEscape(data.ID)
		}
		fmt.Fprintf(b, `<div class="actions"><button type="submit">Save</button><a href="%s">Cancel</a></div></form>`, html.Esc(cancel))
	})
}
