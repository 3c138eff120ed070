package login

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"baletrack/infrastructure/session"
)

// CreateLoginHandler signs the station in and binds this browser to the session.
func CreateLoginHandler(mgr *session.Manager, secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if err := validateCredentials(email, password); err != nil {
			redirectWithError(w, r, email, err.Error())
			return
		}

		if !mgr.Login(r.Context(), email, password) {
			redirectWithError(w, r, email, "invalid email or password")
			return
		}
		current, ok := mgr.Current()
		if !ok {
			redirectWithError(w, r, email, "session could not be started")
			return
		}

		http.SetCookie(w, session.BindingCookie(current.BindingToken, mgr.Remaining(), secureCookies))
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

func validateCredentials(email, password string) error {
	if email == "" || strings.TrimSpace(password) == "" {
		return errors.New("email and password are required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return errors.New("enter a valid email address")
	}
	return nil
}

func redirectWithError(w http.ResponseWriter, r *http.Request, email, msg string) {
	q := url.Values{"error": {msg}}
	if email != "" {
		q.Set("email", email)
	}
	http.Redirect(w, r, "/login?"+q.Encode(), http.StatusSeeOther)
}
