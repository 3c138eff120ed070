package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/audit"
)

func DashboardPage(data PageData) templ.Component {
	return html.Page("Dashboard", func(ctx context.Context, b *strings.Builder) {
		s := data.Stats
		b.WriteString(`<header class="page-head"><h1>Dashboard</h1><a class="button" href="/scan">Scan bale</a><a class="button" href="/bales/new">New bale</a></header>`)
		b.WriteString(html.LoadFailedBanner(data.LoadFailed))
		b.WriteString(`<section class="stats">`)
		stat(b, "Bales", strconv.Itoa(s.TotalBales), fmt.Sprintf("%s kg recorded", strconv.FormatFloat(s.TotalMass, 'f', -1, 64)), "/bales")
		stat(b, "Faulty bales", strconv.Itoa(s.FaultyBales), "need attention", "/bales?fault=faulty")
		stat(b, "Farmers", strconv.Itoa(s.TotalFarmers), "registered", "/farmers")
		stat(b, "Boxes", strconv.Itoa(s.TotalBoxes), fmt.Sprintf("%d open", s.OpenBoxes), "/boxes")
		b.WriteString(`</section>`)

		b.WriteString(`<section><h2>Recent bales</h2>`)
		if len(data.RecentBales) == 0 {
			b.WriteString(`<p class="empty">No bales recorded yet.</p>`)
		} else {
			b.WriteString(`<table><thead><tr><th>Barcode</th><th>Farmer</th><th>Mass (kg)</th><th>Class</th><th>Recorded</th></tr></thead><tbody>`)
			for _, bale := range data.RecentBales {
				fmt.Fprintf(b, `<tr><td><a href="/bales/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
					html.Esc(url.PathEscape(bale.ID.String())), html.Esc(html.OrDash(bale.BarCode)), html.Esc(bale.FarmerName()),
					html.Esc(html.FormatFloat(bale.Mass)), html.Esc(bale.Classification.Label()), html.Esc(html.FormatDate(bale.DateCreated)))
			}
			b.WriteString(`</tbody></table>`)
		}
		b.WriteString(`</section>`)

		b.WriteString(`<section><h2>Activity on this station</h2>`)
		if len(data.Activity) == 0 {
			b.WriteString(`<p class="empty">Nothing yet.</p></section>`)
			return
		}
		b.WriteString(`<ul class="activity">`)
		for _, a := range data.Activity {
			target := a.Collection
			if a.EntityID != "" {
				target += " #" + a.EntityID
			}
			fmt.Fprintf(b, `<li><time>%s</time> %s %s %s</li>`,
				html.Esc(a.CreatedAt.Local().Format("02/01 15:04")), html.Esc(html.OrDash(a.UserEmail)),
				html.Esc(audit.Verb(a.Action)), html.Esc(target))
		}
		b.WriteString(`</ul></section>`)
	})
}

func stat(b *strings.Builder, label, value, note, href string) {
	fmt.Fprintf(b, `<a class="stat card" href="%s"><span class="label">%s</span><span class="value">%s</span><span class="note">%s</span></a>`,
		html.Esc(href), html.Esc(label), html.Esc(value), html.Esc(note))
}
