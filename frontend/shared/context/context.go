package context

import (
	"context"
	"time"

	"baletrack/models"
)

type sessionKey struct{}
type csrfKey struct{}
type countdownKey struct{}

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// User returns the signed-in user, or the zero user outside the auth gate.
func User(ctx context.Context) models.User {
	s, _ := GetSessionFromContext(ctx)
	return s.User
}

func NewContextWithCSRF(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfKey{}, token)
}

func CSRFToken(ctx context.Context) string {
	t, _ := ctx.Value(csrfKey{}).(string)
	return t
}

type countdown struct {
	text      string
	remaining time.Duration
}

// NewContextWithCountdown stores the session countdown computed for this request.
func NewContextWithCountdown(ctx context.Context, text string, remaining time.Duration) context.Context {
	return context.WithValue(ctx, countdownKey{}, countdown{text: text, remaining: remaining})
}

func Countdown(ctx context.Context) string {
	c, _ := ctx.Value(countdownKey{}).(countdown)
	return c.text
}

// Remaining is the session time left when the request was admitted.
func Remaining(ctx context.Context) time.Duration {
	c, _ := ctx.Value(countdownKey{}).(countdown)
	return c.remaining
}
