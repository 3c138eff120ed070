package help

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/shared/html"
)

type PageData struct {
	DisplayName string
	ExpiresAt   string
}

type topic struct {
	title string
	steps []string
}

var topics = []topic{
	{title: "Receiving a bale", steps: []string{
		"Open Bales and choose New bale, or use New bale from a box page to preselect the box.",
		"Scan or type the barcode. It is the only required field.",
		"Pick the farmer and box, enter the mass in kg and the class, then save.",
		"Print the label from the bale page and stick it on the bale.",
	}},
	{title: "Finding a bale", steps: []string{
		"Scan the barcode on the Scan page. A lot number or record id also works.",
		"On the Bales list, search matches barcode, lot number and farmer name. Narrow further by class or fault.",
	}},
	{title: "Recording a fault", steps: []string{
		"Edit the bale and tick Has fault. Describe the fault so the grading desk can follow up.",
		"Unticking Has fault clears the description.",
	}},
	{title: "Boxes and shipments", steps: []string{
		"A box page lists its bales and their total weighed mass.",
		"A shipment holds an ordered list of bales. The arrival date cannot be before departure.",
		"Exports downloads bales, farmers or one shipment's bales as CSV.",
	}},
	{title: "Your session", steps: []string{
		"The station stays signed in for one shift. The countdown in the top bar shows what is left.",
		"When it runs out you are sent back to the sign in page. Nothing you saved is lost.",
		"Signing in from another browser takes the station over.",
	}},
}

func HelpPage(data PageData) templ.Component {
	return html.Page("Help", func(_ context.Context, b *strings.Builder) {
		b.WriteString(`<header class="page-head"><h1>Help</h1></header>`)
		fmt.Fprintf(b, `<p>Signed in as %s. This session ends at %s.</p>`, html.Esc(data.DisplayName), html.Esc(data.ExpiresAt))
		for _, t := range topics {
			fmt.Fprintf(b, `<section class="card"><h2>%s</h2><ol>`, html.Esc(t.title))
			for _, s := range t.steps {
				fmt.Fprintf(b, `<li>%s</li>`, html.Esc(s))
			}
			b.WriteString(`</ol></section>`)
		}
	})
}
