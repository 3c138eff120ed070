package directus

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"baletrack/models"
)

type authPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Expires      int64  `json:"expires"`
}

func (p authPayload) token(now time.Time) Token {
	t := Token{Access: p.AccessToken, Refresh: p.RefreshToken}
	if p.Expires > 0 {
		t.Expires = now.Add(time.Duration(p.Expires) * time.Millisecond)
	}
	return t
}

// Login exchanges credentials for tokens and installs them on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	body := map[string]string{"email": email, "password": password, "mode": "json"}
	var payload authPayload
	if err := c.send(ctx, http.MethodPost, "auth", "/auth/login", nil, body, &payload, false); err != nil {
		return Token{}, err
	}
	if payload.AccessToken == "" {
		return Token{}, fmt.Errorf("directus: login returned no access token")
	}
	t := payload.token(time.Now())
	c.SetToken(t)
	return t, nil
}

// Refresh trades the refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refresh(ctx, "")
}

// refresh rotates the pair unless the access token has already moved on from
// stale, which means a concurrent request refreshed first.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.Token()
	if stale != "" && current.Access != "" && current.Access != stale {
		return nil
	}
	if current.Refresh == "" {
		return fmt.Errorf("directus: no refresh token")
	}
	body := map[string]string{"refresh_token": current.Refresh, "mode": "json"}
	var payload authPayload
	if err := c.send(ctx, http.MethodPost, "auth", "/auth/refresh", nil, body, &payload, false); err != nil {
		return err
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("directus: refresh returned no access token")
	}
	c.SetToken(payload.token(time.Now()))
	return nil
}

// Logout invalidates the refresh token remotely. Local credentials are cleared
// whatever the outcome.
func (c *Client) Logout(ctx context.Context) error {
	current := c.Token()
	defer c.ClearToken()
	if current.Refresh == "" {
		return nil
	}
	body := map[string]string{"refresh_token": current.Refresh}
	return c.send(ctx, http.MethodPost, "auth", "/auth/logout", nil, body, nil, true)
}

// Me returns the profile of the current credentials.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	params, err := Query{Fields: []string{"id", "email", "first_name", "last_name", "role"}}.Values()
	if err != nil {
		return models.User{}, err
	}
	if err := c.do(ctx, http.MethodGet, "users", "/users/me", params, nil, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}
