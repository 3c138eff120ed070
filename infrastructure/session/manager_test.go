package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"baletrack/infrastructure/directus"
	"baletrack/infrastructure/directus/directustest"
	"baletrack/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingRemote records calls and never touches the network.
type countingRemote struct {
	calls    atomic.Int32
	loginErr error
	token    directus.Token
	mu       sync.Mutex
}

func (r *countingRemote) Login(context.Context, string, string) (directus.Token, error) {
	r.calls.Add(1)
	if r.loginErr != nil {
		return directus.Token{}, r.loginErr
	}
	t := directus.Token{Access: "acc", Refresh: "ref"}
	r.SetToken(t)
	return t, nil
}

func (r *countingRemote) Me(context.Context) (models.User, error) {
	r.calls.Add(1)
	return models.User{ID: "u1", Email: "ops@example.com"}, nil
}

func (r *countingRemote) Logout(context.Context) error {
	r.calls.Add(1)
	r.ClearToken()
	return errors.New("network down")
}

func (r *countingRemote) Token() directus.Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

func (r *countingRemote) SetToken(t directus.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = t
}

func (r *countingRemote) ClearToken() { r.SetToken(directus.Token{}) }

func TestRestoreLiveSessionWithoutNetwork(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	_ = store.Save(context.Background(), models.Session{
		User:         models.User{ID: "u1", Email: "ops@example.com"},
		AccessToken:  "acc",
		RefreshToken: "ref",
		BindingToken: "bind",
		ExpiresAt:    clock.Now().Add(time.Hour),
	})
	remote := &countingRemote{}
	m := NewManager(remote, Options{Clock: clock, Store: store})
	defer m.Close()

	if !m.Restore(context.Background()) {
		t.Fatalf("expected restore to succeed")
	}
	if m.State() != StateAuthenticated || !m.IsAuthenticated() {
		t.Fatalf("expected authenticated, got %s", m.State())
	}
	if remote.calls.Load() != 0 {
		t.Fatalf("restore made %d remote calls", remote.calls.Load())
	}
	if remote.Token().Access != "acc" {
		t.Fatalf("restored token not installed on the remote client")
	}
	if _, ok := m.Authorize("bind"); !ok {
		t.Fatalf("binding token from the persisted record should authorize")
	}
}

func TestRestorePastSessionDiscardsRecord(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	_ = store.Save(context.Background(), models.Session{
		User:      models.User{ID: "u1"},
		ExpiresAt: clock.Now().Add(-time.Second),
	})
	m := NewManager(&countingRemote{}, Options{Clock: clock, Store: store})
	defer m.Close()

	if m.Restore(context.Background()) {
		t.Fatalf("expected restore to fail for an expired record")
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", m.State())
	}
	if rec, _ := store.Load(context.Background()); rec != nil {
		t.Fatalf("expired record should have been removed")
	}
}

func TestRestoreExactlyAtExpiryIsNotLive(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	_ = store.Save(context.Background(), models.Session{ExpiresAt: clock.Now()})
	m := NewManager(&countingRemote{}, Options{Clock: clock, Store: store})
	defer m.Close()

	if m.Restore(context.Background()) {
		t.Fatalf("a session is live only while now is before its expiry")
	}
}

func TestExpiryOnPollTick(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	resets := atomic.Int32{}
	m := NewManager(&countingRemote{}, Options{
		Clock:         clock,
		Store:         store,
		TTL:           time.Millisecond,
		CheckInterval: 5 * time.Millisecond,
		OnReset:       func() { resets.Add(1) },
	})
	defer m.Close()

	if !m.Login(context.Background(), "ops@example.com", "secret1") {
		t.Fatalf("login failed")
	}
	clock.Advance(2 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for m.State() != StateUnauthenticated && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("expected watcher to expire the session, state %s", m.State())
	}
	if rec, _ := store.Load(context.Background()); rec != nil {
		t.Fatalf("persisted record should be cleared on expiry")
	}
	if !m.LastExpired() {
		t.Fatalf("expected LastExpired after expiry")
	}
	if resets.Load() == 0 {
		t.Fatalf("expected cached data to be reset on expiry")
	}
}

func TestLoginAgainAfterWatcherExpiry(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(&countingRemote{}, Options{
		Clock:         clock,
		TTL:           time.Minute,
		CheckInterval: 5 * time.Millisecond,
	})
	defer m.Close()

	if !m.Login(context.Background(), "ops@example.com", "secret1") {
		t.Fatalf("login failed")
	}
	clock.Advance(2 * time.Minute)

	deadline := time.Now().Add(2 * time.Second)
	for !(m.LastExpired() && m.State() == StateUnauthenticated) && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("watcher left the session in state %s", m.State())
	}
	if !m.Login(context.Background(), "ops@example.com", "secret1") {
		t.Fatalf("login after expiry failed")
	}
	if m.State() != StateAuthenticated || !m.IsAuthenticated() {
		t.Fatalf("expected authenticated after second login, got %s", m.State())
	}
}

func TestCheckExpiryWithCanceledContextStillClears(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	m := NewManager(&countingRemote{}, Options{Clock: clock, Store: store, CheckInterval: time.Hour})
	defer m.Close()

	if !m.Login(context.Background(), "ops@example.com", "secret1") {
		t.Fatalf("login failed")
	}
	clock.Advance(DefaultTTL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if !m.CheckExpiry(ctx) {
		t.Fatalf("expected the session to expire")
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", m.State())
	}
	if rec, _ := store.Load(context.Background()); rec != nil {
		t.Fatalf("persisted record should be cleared on expiry")
	}
}

func TestCheckExpiryBeforeDeadlineKeepsSession(t *testing.T) {
	clock := newFakeClock()
	m := NewManager(&countingRemote{}, Options{Clock: clock, CheckInterval: time.Hour})
	defer m.Close()

	if !m.Login(context.Background(), "ops@example.com", "secret1") {
		t.Fatalf("login failed")
	}
	clock.Advance(2*time.Hour + 59*time.Minute)
	if m.CheckExpiry(context.Background()) {
		t.Fatalf("session expired early")
	}
	if got := m.FormatRemaining(); got != "0h 1m" {
		t.Fatalf("countdown = %q", got)
	}
	clock.Advance(time.Minute)
	if !m.CheckExpiry(context.Background()) {
		t.Fatalf("session should expire at its deadline")
	}
	if m.IsAuthenticated() {
		t.Fatalf("expired session still authenticated")
	}
	if got := m.FormatRemaining(); got != "Expired" {
		t.Fatalf("countdown after expiry = %q", got)
	}
}

func TestFailedLoginReturnsFalse(t *testing.T) {
	store := NewMemoryStore()
	remote := &countingRemote{loginErr: &directus.APIError{Status: 401, Code: "INVALID_CREDENTIALS"}}
	m := NewManager(remote, Options{Store: store})
	defer m.Close()

	if m.Login(context.Background(), "ops@example.com", "wrong") {
		t.Fatalf("expected login to fail")
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", m.State())
	}
	if rec, _ := store.Load(context.Background()); rec != nil {
		t.Fatalf("failed login must not persist a session")
	}
}

func TestLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	store := NewMemoryStore()
	remote := &countingRemote{}
	m := NewManager(remote, Options{Store: store})
	defer m.Close()

	if !m.Login(context.Background(), "ops@example.com", "secret1") {
		t.Fatalf("login failed")
	}
	m.Logout(context.Background())

	if m.State() != StateUnauthenticated || m.IsAuthenticated() {
		t.Fatalf("expected unauthenticated after logout, got %s", m.State())
	}
	if rec, _ := store.Load(context.Background()); rec != nil {
		t.Fatalf("logout left the persisted record behind")
	}
	if remote.Token().Access != "" {
		t.Fatalf("logout left credentials on the remote client")
	}
	if m.LastExpired() {
		t.Fatalf("logout is not an expiry")
	}
}

func TestLoginReloadLogoutScenario(t *testing.T) {
	srv := directustest.NewServer()
	defer srv.Close()
	srv.AddUser("ops@example.com", "secret1", map[string]any{"first_name": "Ops", "last_name": "Desk"})

	store := NewMemoryStore()
	newRemote := func() *directus.Client {
		c, err := directus.NewClient(srv.URL, nil)
		if err != nil {
			t.Fatalf("client: %v", err)
		}
		return c
	}

	before := time.Now()
	first := NewManager(newRemote(), Options{Store: store})
	if !first.Login(context.Background(), "ops@example.com", "secret1") {
		t.Fatalf("login failed")
	}
	rec, _ := store.Load(context.Background())
	if rec == nil {
		t.Fatalf("login did not persist the session")
	}
	if rec.ExpiresAt.Before(before.Add(DefaultTTL)) || rec.ExpiresAt.After(time.Now().Add(DefaultTTL)) {
		t.Fatalf("expiry %v not about three hours from login", rec.ExpiresAt)
	}
	if rec.User.DisplayName() != "Ops Desk" {
		t.Fatalf("unexpected persisted user %+v", rec.User)
	}
	first.Close()

	// A fresh process restores without credentials or network.
	calls := srv.TotalCalls()
	second := NewManager(newRemote(), Options{Store: store})
	defer second.Close()
	if !second.Restore(context.Background()) {
		t.Fatalf("reload did not restore the session")
	}
	if srv.TotalCalls() != calls {
		t.Fatalf("restore contacted the remote service")
	}
	s, ok := second.Current()
	if !ok || s.User.Email != "ops@example.com" {
		t.Fatalf("restored identity missing: %+v", s)
	}

	second.Logout(context.Background())
	if rec, _ := store.Load(context.Background()); rec != nil {
		t.Fatalf("logout did not clear the persisted session")
	}
	if second.IsAuthenticated() {
		t.Fatalf("still authenticated after logout")
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{in: 3 * time.Hour, want: "3h 0m"},
		{in: 2*time.Hour + 59*time.Minute + 59*time.Second, want: "2h 59m"},
		{in: 30 * time.Second, want: "0h 0m"},
		{in: 0, want: "Expired"},
		{in: -time.Minute, want: "Expired"},
	}
	for _, tc := range cases {
		if got := FormatRemaining(tc.in); got != tc.want {
			t.Fatalf("FormatRemaining(%v) = %q want %q", tc.in, got, tc.want)
		}
	}
}
