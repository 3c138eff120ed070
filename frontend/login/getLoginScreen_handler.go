package login

import (
	"net/http"

	"baletrack/frontend/shared/html"
	"baletrack/infrastructure/session"
)

// GetLoginScreenHandler renders the login screen, or skips it when this
// browser already holds the live session.
func GetLoginScreenHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(session.CookieName); err == nil {
			if _, ok := mgr.Authorize(c.Value); ok {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
		}
		data := ScreenData{
			Error:   r.URL.Query().Get("error"),
			Status:  r.URL.Query().Get("status"),
			Email:   r.URL.Query().Get("email"),
			Expired: mgr.LastExpired(),
		}
		html.Render(w, r, LoginScreen(data), "login screen")
	}
}
