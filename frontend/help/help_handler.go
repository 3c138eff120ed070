package help

import (
	"net/http"

	sessioncontext "baletrack/frontend/shared/context"
	"baletrack/frontend/shared/html"
)

func HelpPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		html.Render(w, r, HelpPage(PageData{
			DisplayName: session.User.DisplayName(),
			ExpiresAt:   session.ExpiresAt.Local().Format("15:04"),
		}), "help page")
	}
}
