package scan

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/shared/html"
)

func ScanPage(data PageData) templ.Component {
	return html.Page("Scan", func(ctx context.Context, b *strings.Builder) {
		b.WriteString(`<h1>Scan bale</h1><p class="muted">Scan or enter a barcode, lot number or bale id.</p>`)
		fmt.Fprintf(b, `<form method="get" action="/scan" class="filters scan"><input type="search" name="code" value="%s" autofocus autocomplete="off" placeholder="Barcode, lot number or id"><button type="submit">Look up</button></form>`, html.Esc(data.Code))
		if !data.Searched {
			return
		}
		res := data.Result
		if res.Bale == nil {
			if res.Incomplete {
				b.WriteString(`<p class="flash error">The server could not be reached, so the bale may exist. Try again shortly.</p>`)
				return
			}
			fmt.Fprintf(b, `<p class="flash error">No bale found for %s.</p>`, html.Esc(data.Code))
			return
		}
		bale := res.Bale
		id := url.PathEscape(bale.ID.String())
		name := bale.BarCode
		if name == "" {
			name = "Bale #" + bale.ID.String()
		}
		fmt.Fprintf(b, `<section class="card found"><h2>%s</h2><p class="muted">Matched by %s</p>`, html.Esc(name), html.Esc(string(res.Kind)))
		fmt.Fprintf(b, `<dl class="details"><dt>Lot</dt><dd>%s</dd><dt>Farmer</dt><dd>%s</dd><dt>Box</dt><dd>%s</dd><dt>Mass</dt><dd>%s kg</dd><dt>Class</dt><dd>%s</dd></dl>`,
			html.Esc(html.OrDash(bale.LotNumber)), html.Esc(bale.FarmerName()), html.Esc(html.OrDash(bale.BoxNumber())),
			html.Esc(html.FormatFloat(bale.Mass)), html.Esc(bale.Classification.Label()))
		if bale.HasFault {
			fmt.Fprintf(b, `<p class="flash error">Fault: %s</p>`, html.Esc(html.OrDash(bale.FaultDescription)))
		}
		fmt.Fprintf(b, `<p><a class="button" href="/bales/%s">Open</a><a class="button" href="/bales/%s/edit">Edit</a><a class="button" href="/bales/%s/label.pdf" target="_blank">Print label</a></p></section>`,
			html.Esc(id), html.Esc(id), html.Esc(id))
	})
}
