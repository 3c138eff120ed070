package session

import (
	"net/http"
	"strconv"
	"time"
)

const CookieName = "baletrack_session"

// DefaultTTL is the fixed lifetime of a login. It is never extended by activity.
const DefaultTTL = 3 * time.Hour

// DefaultCheckInterval is how often a live session is checked for expiry.
const DefaultCheckInterval = time.Minute

// BindingCookie ties a browser to the station session. The cookie dies with
// the session it was issued for. Its lifetime is relative so a skewed
// browser clock cannot drop it early.
func BindingCookie(value string, remaining time.Duration, secure bool) *http.Cookie {
	maxAge := int((remaining + time.Second - 1) / time.Second)
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// FormatRemaining renders a countdown as "2h 59m", or "Expired" once it runs out.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "Expired"
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return formatHM(h, m)
}

func formatHM(h, m int) string {
	return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m"
}
