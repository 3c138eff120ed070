package html

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/shared/nav"
)

// Esc escapes text for HTML bodies and attribute values.
func Esc(s string) string {
	return templ.EscapeString(s)
}

// Raw renders pre-built markup as a component.
func Raw(markup string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

// Layout wraps body in the page chrome and top navigation.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<title>%s | Baletrack</title>`, Esc(title))
		b.WriteString(`<link rel="stylesheet" href="/assets/app.css"></head><body>`)
		writeTopNav(&b, nav.BuildTopNavData(ctx), CSRFField(ctx))
		b.WriteString(`<main class="page">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func writeTopNav(b *strings.Builder, data nav.TopNavData, csrfField string) {
	if !data.SignedIn {
		return
	}
	b.WriteString(`<nav class="topnav"><span class="brand">Baletrack</span><ul>`)
	for _, l := range data.Links {
		fmt.Fprintf(b, `<li><a href="%s">%s</a></li>`, Esc(l.Href), Esc(l.Label))
	}
	b.WriteString(`</ul><div class="who">`)
	fmt.Fprintf(b, `<span class="user" title="%s">%s</span>`, Esc(data.Email), Esc(data.DisplayName))
	cls := "countdown"
	if data.Countdown == "Expired" {
		cls += " expired"
	}
	fmt.Fprintf(b, `<span class="%s" data-countdown data-remaining-ms="%d">Session: %s</span>`, cls, data.RemainingMS, Esc(data.Countdown))
	b.WriteString(`<form method="post" action="/logout" class="inline">` + csrfField)
	b.WriteString(`<button type="submit">Log out</button></form></div></nav>`)
	b.WriteString(countdownScript)
}

// countdownScript refreshes the top-bar countdown once a minute. The deadline
// is taken relative to page load so the browser clock does not matter.
const countdownScript = `<script>(function(){
var el=document.querySelector("[data-countdown]");
if(!el)return;
var end=Date.now()+Number(el.getAttribute("data-remaining-ms")||0);
function tick(){
var ms=end-Date.now();
if(ms<=0){el.textContent="Session: Expired";el.classList.add("expired");return false;}
var s=Math.floor(ms/1000);
el.textContent="Session: "+Math.floor(s/3600)+"h "+Math.floor(s%3600/60)+"m";
return true;
}
var id=setInterval(function(){if(!tick())clearInterval(id);},60000);
})();</script>`

// Flash renders the status and error messages carried on redirects.
func Flash(status, errMsg string) string {
	var b strings.Builder
	if s := strings.TrimSpace(status); s != "" {
		fmt.Fprintf(&b, `<p class="flash ok">%s</p>`, Esc(s))
	}
	if e := strings.TrimSpace(errMsg); e != "" {
		fmt.Fprintf(&b, `<p class="flash error">%s</p>`, Esc(e))
	}
	return b.String()
}

// LoadFailedBanner tells the operator a list may be incomplete.
func LoadFailedBanner(failed bool) string {
	if !failed {
		return ""
	}
	return `<p class="flash error">Some data could not be loaded from the server. What is shown may be incomplete.</p>`
}

// Render writes c as the response, answering 500 when rendering fails.
func Render(w http.ResponseWriter, r *http.Request, c templ.Component, what string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render failed", slog.String("page", what), slog.String("path", r.URL.Path), slog.Any("err", err))
		http.Error(w, "failed to render "+what, http.StatusInternalServerError)
	}
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, c templ.Component, what string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render failed", slog.String("page", what), slog.String("path", r.URL.Path), slog.Any("err", err))
	}
}

// NotFound renders the page for a record that does not exist.
func NotFound(w http.ResponseWriter, r *http.Request, what, backHref string) {
	page := Page("Not found", func(_ context.Context, b *strings.Builder) {
		fmt.Fprintf(b, `<h1>%s not found</h1><p>It may have been deleted.</p><p><a href="%s">Back</a></p>`, Esc(what), Esc(backHref))
	})
	RenderStatus(w, r, http.StatusNotFound, page, "not found")
}

// Unavailable renders the page shown when a record could not be loaded.
func Unavailable(w http.ResponseWriter, r *http.Request, what, backHref string) {
	page := Page("Unavailable", func(_ context.Context, b *strings.Builder) {
		fmt.Fprintf(b, `<h1>Could not load %s</h1><p>The server did not answer. Try again shortly.</p><p><a href="%s">Back</a></p>`, Esc(what), Esc(backHref))
	})
	RenderStatus(w, r, http.StatusBadGateway, page, "unavailable")
}
