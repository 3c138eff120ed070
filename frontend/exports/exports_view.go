package exports

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/bales"
	"baletrack/frontend/shared/html"
)

func ExportsPage(data PageData) templ.Component {
	return html.Page("Exports", func(_ context.Context, b *strings.Builder) {
		b.WriteString(`<header class="page-head"><h1>Exports</h1></header>`)

		b.WriteString(`<section class="card"><h2>Bales</h2><p>Download bales as CSV. Leave the filters empty to export every bale.</p>`)
		b.WriteString(`<form method="get" action="/exports/bales.csv" class="filters">` + bales.FilterFields(data.Filter))
		b.WriteString(`<button type="submit">Download</button></form></section>`)

		b.WriteString(`<section class="card"><h2>Farmers</h2><p><a class="button" href="/exports/farmers.csv">Download farmers CSV</a></p></section>`)

		b.WriteString(`<section class="card"><h2>Shipments</h2>`)
		if len(data.Shipments) == 0 {
			b.WriteString(`<p class="empty">No shipments to export.</p></section>`)
			return
		}
		b.WriteString(`<ul>`)
		for _, s := range data.Shipments {
			fmt.Fprintf(b, `<li><a href="/exports/shipments/%s/bales.csv">%s</a></li>`, html.Esc(url.PathEscape(s.ID)), html.Esc(s.Label))
		}
		b.WriteString(`</ul></section>`)
	})
}
