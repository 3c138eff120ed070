package directus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"baletrack/infrastructure/metrics"
)

// DefaultTimeout bounds every request to the service.
var DefaultTimeout = 15 * time.Second

// Token is the bearer credential pair issued at login.
type Token struct {
	Access  string
	Refresh string
	Expires time.Time
}

// Client talks to the item-collection REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	mu    sync.RWMutex
	token Token

	refreshMu sync.Mutex
}

// NewClient builds a client for baseURL. A nil httpClient gets DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

// HTTPClient exposes the underlying transport client.
func (c *Client) HTTPClient() *http.Client { return c.http }

// SetToken installs credentials restored from a persisted session.
func (c *Client) SetToken(t Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

func (c *Client) Token() Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) ClearToken() {
	c.SetToken(Token{})
}

// List reads a collection into out, which must point to a slice.
func (c *Client) List(ctx context.Context, collection string, q Query, out any) error {
	params, err := q.Values()
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	return c.do(ctx, http.MethodGet, collection, itemsPath(collection), params, nil, out)
}

// Get reads one item by id into out.
func (c *Client) Get(ctx context.Context, collection, id string, fields []string, out any) error {
	params, err := Query{Fields: fields}.Values()
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	return c.do(ctx, http.MethodGet, collection, itemsPath(collection, id), params, nil, out)
}

// Create posts payload and decodes the created item into out.
func (c *Client) Create(ctx context.Context, collection string, payload, out any) error {
	return c.do(ctx, http.MethodPost, collection, itemsPath(collection), nil, payload, out)
}

// Update patches the item and decodes the updated item into out.
func (c *Client) Update(ctx context.Context, collection, id string, payload, out any) error {
	return c.do(ctx, http.MethodPatch, collection, itemsPath(collection, id), nil, payload, out)
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, collection, itemsPath(collection, id), nil, nil, nil)
}

func itemsPath(collection string, id ...string) string {
	p := "/items/" + url.PathEscape(collection)
	for _, part := range id {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, collection, path string, params url.Values, body, out any) error {
	seen := c.Token().Access
	err := c.send(ctx, method, collection, path, params, body, out, true)
	if err == nil || !errors.Is(err, ErrUnauthorized) {
		return err
	}
	if c.Token().Refresh == "" {
		return err
	}
	if rerr := c.refresh(ctx, seen); rerr != nil {
		slog.Warn("token refresh failed", slog.String("path", path), slog.Any("err", rerr))
		return err
	}
	return c.send(ctx, method, collection, path, params, body, out, true)
}

func (c *Client) send(ctx context.Context, method, collection, path string, params url.Values, body, out any, authed bool) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if access := c.Token().Access; access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRemote(method, collection, "error", time.Since(started))
		return fmt.Errorf("directus: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemote(method, collection, outcome(resp.StatusCode), time.Since(started))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("directus: read %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil && len(env.Errors) > 0 {
			apiErr.Message = env.Errors[0].Message
			apiErr.Code = env.Errors[0].Extensions.Code
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("directus: decode %s %s: %w", method, path, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("directus: decode %s %s data: %w", method, path, err)
	}
	return nil
}

func outcome(status int) string {
	switch {
	case status < 300:
		return "ok"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
