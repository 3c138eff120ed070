package login

import (
	"net/http"

	"baletrack/infrastructure/session"
)

// LogoutHandler ends the station session and clears the browser binding.
// A browser that does not hold the session only loses its own cookie.
func LogoutHandler(mgr *session.Manager, secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(session.CookieName); err == nil {
			if _, ok := mgr.Authorize(c.Value); ok {
				mgr.Logout(r.Context())
			}
		}
		http.SetCookie(w, session.ClearCookie(secureCookies))
		http.Redirect(w, r, "/login?status=signed+out", http.StatusSeeOther)
	}
}
