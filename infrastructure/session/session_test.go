package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"
	"time"
)

func TestBindingCookieUsesRelativeLifetime(t *testing.T) {
	c := BindingCookie("bind", 3*time.Hour, false)
	if c.MaxAge != 3*60*60 {
		t.Fatalf("MaxAge = %d", c.MaxAge)
	}
	if !c.Expires.IsZero() {
		t.Fatalf("absolute expiry set: %v", c.Expires)
	}
	if !c.HttpOnly || c.Path != "/" {
		t.Fatalf("unexpected cookie %+v", c)
	}

	// Partial seconds round up so a live session never gets an expired cookie.
	if got := BindingCookie("bind", 500*time.Millisecond, false).MaxAge; got != 1 {
		t.Fatalf("MaxAge for half a second = %d", got)
	}
	if got := BindingCookie("bind", 0, false).MaxAge; got != -1 {
		t.Fatalf("MaxAge for no time left = %d", got)
	}
}

func TestJarKeepsBindingCookie(t *testing.T) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("jar: %v", err)
	}
	u, _ := url.Parse("http://station.local/")
	jar.SetCookies(u, []*http.Cookie{BindingCookie("bind", DefaultTTL, false)})

	got := jar.Cookies(u)
	if len(got) != 1 || got[0].Value != "bind" {
		t.Fatalf("jar dropped the binding cookie: %+v", got)
	}
}
