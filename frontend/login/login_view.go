package login

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"baletrack/frontend/shared/html"
)

type ScreenData struct {
	Error   string
	Status  string
	Email   string
	Expired bool
}

func LoginScreen(data ScreenData) templ.Component {
	return html.Page("Sign in", func(ctx context.Context, b *strings.Builder) {
		b.WriteString(`<section class="login card"><h1>Baletrack</h1><p>Sign in to manage bales, farmers and boxes.</p>`)
		if data.Expired {
			b.WriteString(`<p class="flash error">Your session expired. Please sign in again.</p>`)
		}
		b.WriteString(html.Flash(data.Status, data.Error))
		b.WriteString(html.PostForm(ctx, "/login", "stack"))
		fmt.Fprintf(b, `<label>Email<input type="email" name="email" value="%s" autocomplete="username" required autofocus></label>`, html.Esc(data.Email))
		b.WriteString(`<label>Password<input type="password" name="password" autocomplete="current-password" required></label>`)
		b.WriteString(`<button type="submit">Sign in</button></form></section>`)
	})
}
