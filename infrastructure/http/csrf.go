package http

import (
	"crypto/rand"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	sessioncontext "baletrack/frontend/shared/context"
	"baletrack/infrastructure/metrics"
)

const (
	csrfCookieName = "X-CSRF-Token"
	csrfHeaderName = "X-CSRF-Token"
	csrfFieldName  = "_csrf"
)

// CSRFMiddleware guards unsafe methods with a double-submit token: the value
// in the csrf cookie must come back in the header or the _csrf form field.
// Every request gets the token on its context so forms can embed it.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, issued := s.csrfToken(w, r)
		r = r.WithContext(sessioncontext.NewContextWithCSRF(r.Context(), token))
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		reason := ""
		switch provided := submittedCSRF(r); {
		case issued:
			// A token minted on this request was never seen by a form.
			reason = "no_cookie"
		case provided == "":
			reason = "missing"
		case subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1:
			reason = "mismatch"
		}
		if reason != "" {
			metrics.CSRFRejected(reason)
			slog.Warn("csrf check failed", slog.String("reason", reason), slog.String("method", r.Method), slog.String("path", r.URL.Path))
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// csrfToken returns the browser's token, minting and setting a new one when
// the cookie is absent or malformed. issued reports a fresh mint.
func (s *Server) csrfToken(w http.ResponseWriter, r *http.Request) (token string, issued bool) {
	if c, err := r.Cookie(csrfCookieName); err == nil && wellFormedCSRF(c.Value) {
		return c.Value, false
	}
	token = rand.Text()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return token, true
}

func submittedCSRF(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(csrfHeaderName)); v != "" {
		return v
	}
	return strings.TrimSpace(r.PostFormValue(csrfFieldName))
}

// wellFormedCSRF accepts the base32 text rand.Text produces.
func wellFormedCSRF(v string) bool {
	if len(v) < 26 {
		return false
	}
	for _, c := range v {
		if !(c >= 'A' && c <= 'Z' || c >= '2' && c <= '7') {
			return false
		}
	}
	return true
}
