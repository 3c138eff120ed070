package session

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"baletrack/infrastructure/directus"
	"baletrack/infrastructure/metrics"
	"baletrack/models"
)

// Session states.
const (
	StateUnauthenticated = "unauthenticated"
	StateAuthenticating  = "authenticating"
	StateAuthenticated   = "authenticated"
	StateExpired         = "expired"
)

const (
	eventLogin   = "login"
	eventAccept  = "accept"
	eventReject  = "reject"
	eventRestore = "restore"
	eventExpire  = "expire"
	eventClear   = "clear"
)

// Remote is the authentication side of the remote service.
type Remote interface {
	Login(ctx context.Context, email, password string) (directus.Token, error)
	Me(ctx context.Context) (models.User, error)
	Logout(ctx context.Context) error
	Token() directus.Token
	SetToken(directus.Token)
	ClearToken()
}

type Options struct {
	Clock         Clock
	Store         Store
	TTL           time.Duration
	CheckInterval time.Duration
	// OnReset runs whenever the identity is dropped or replaced, so cached
	// data from one login never leaks into the next.
	OnReset func()
}

// Manager owns the one client session of this process.
type Manager struct {
	remote  Remote
	clock   Clock
	store   Store
	ttl     time.Duration
	every   time.Duration
	onReset func()

	// op serialises state changes; mu guards the fields read by handlers.
	op          sync.Mutex
	mu          sync.RWMutex
	fsm         *fsm.FSM
	current     *models.Session
	lastExpired bool

	stopWatch context.CancelFunc
	watchers  sync.WaitGroup
}

func NewManager(remote Remote, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	m := &Manager{
		remote:  remote,
		clock:   opts.Clock,
		store:   opts.Store,
		ttl:     opts.TTL,
		every:   opts.CheckInterval,
		onReset: opts.OnReset,
	}
	m.fsm = fsm.NewFSM(
		StateUnauthenticated,
		fsm.Events{
			{Name: eventLogin, Src: []string{StateUnauthenticated, StateAuthenticated}, Dst: StateAuthenticating},
			{Name: eventAccept, Src: []string{StateAuthenticating}, Dst: StateAuthenticated},
			{Name: eventReject, Src: []string{StateAuthenticating}, Dst: StateUnauthenticated},
			{Name: eventRestore, Src: []string{StateUnauthenticated}, Dst: StateAuthenticated},
			{Name: eventExpire, Src: []string{StateAuthenticated}, Dst: StateExpired},
			{Name: eventClear, Src: []string{StateAuthenticated, StateExpired}, Dst: StateUnauthenticated},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				metrics.SessionEntered(e.Dst)
				slog.Debug("session state", slog.String("from", e.Src), slog.String("to", e.Dst), slog.String("event", e.Event))
			},
		},
	)
	return m
}

// State returns the current state name.
func (m *Manager) State() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current()
}

// Restore loads a persisted session at startup. A record that is still live
// is installed without contacting the remote service; anything else is
// discarded.
func (m *Manager) Restore(ctx context.Context) bool {
	m.op.Lock()
	defer m.op.Unlock()

	if m.State() != StateUnauthenticated {
		return m.IsAuthenticated()
	}
	rec, err := m.store.Load(ctx)
	if err != nil {
		slog.Error("load persisted session", slog.Any("err", err))
		m.deletePersisted(ctx)
		return false
	}
	if rec == nil {
		return false
	}
	if rec.ExpiredAt(m.clock.Now()) {
		slog.Info("persisted session already expired", slog.Time("expires_at", rec.ExpiresAt))
		m.deletePersisted(ctx)
		return false
	}

	m.remote.SetToken(directus.Token{Access: rec.AccessToken, Refresh: rec.RefreshToken})
	if err := m.transition(ctx, eventRestore); err != nil {
		slog.Error("restore session", slog.Any("err", err))
		m.remote.ClearToken()
		return false
	}
	m.mu.Lock()
	m.current = rec
	m.mu.Unlock()
	m.startWatcher()
	slog.Info("session restored", slog.String("user", rec.User.Email), slog.Time("expires_at", rec.ExpiresAt))
	return true
}

// Login authenticates against the remote service. It never returns an
// error; the cause of a failure is logged.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	m.op.Lock()
	defer m.op.Unlock()

	if m.State() == StateAuthenticated {
		m.stopWatcher()
		m.reset()
	}
	if err := m.transition(ctx, eventLogin); err != nil {
		slog.Error("begin login", slog.Any("err", err))
		return false
	}

	token, err := m.remote.Login(ctx, email, password)
	if err != nil {
		slog.Warn("login rejected", slog.String("email", email), slog.Any("err", err))
		m.fail(ctx)
		return false
	}
	user, err := m.remote.Me(ctx)
	if err != nil {
		slog.Error("load profile after login", slog.String("email", email), slog.Any("err", err))
		m.fail(ctx)
		return false
	}

	rec := models.Session{
		User:         user,
		AccessToken:  token.Access,
		RefreshToken: token.Refresh,
		BindingToken: uuid.NewString(),
		ExpiresAt:    m.clock.Now().Add(m.ttl),
	}
	if err := m.store.Save(ctx, rec); err != nil {
		// The login still stands for this process; it just won't survive a restart.
		slog.Error("persist session", slog.Any("err", err))
	}

	m.mu.Lock()
	m.current = &rec
	m.lastExpired = false
	m.mu.Unlock()
	if err := m.transition(ctx, eventAccept); err != nil {
		slog.Error("accept login", slog.Any("err", err))
	}
	m.startWatcher()
	slog.Info("login succeeded", slog.String("user", user.Email), slog.Time("expires_at", rec.ExpiresAt))
	return true
}

// fail returns an aborted login to unauthenticated with nothing left behind.
func (m *Manager) fail(ctx context.Context) {
	m.remote.ClearToken()
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	m.deletePersisted(ctx)
	if err := m.transition(ctx, eventReject); err != nil {
		slog.Error("reject login", slog.Any("err", err))
	}
}

// Logout ends the session. Local state is cleared even when the remote call fails.
func (m *Manager) Logout(ctx context.Context) {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.remote.Logout(ctx); err != nil {
		slog.Warn("remote logout failed", slog.Any("err", err))
	}
	m.stopWatcher()
	m.clearLocal(ctx)
	if m.State() != StateUnauthenticated {
		if err := m.transition(ctx, eventClear); err != nil {
			slog.Error("logout", slog.Any("err", err))
		}
	}
}

// CheckExpiry expires the session once its deadline has passed and reports
// whether it did. A live session has its rotated tokens persisted instead.
func (m *Manager) CheckExpiry(ctx context.Context) bool {
	m.op.Lock()
	defer m.op.Unlock()

	m.mu.RLock()
	rec := m.current
	m.mu.RUnlock()
	if m.State() != StateAuthenticated || rec == nil {
		return false
	}
	if !rec.ExpiredAt(m.clock.Now()) {
		m.syncTokens(ctx, rec)
		return false
	}

	// The watcher's ctx is canceled by stopWatcher below; the expire and
	// clear steps must still run to completion.
	ctx = context.WithoutCancel(ctx)
	if err := m.transition(ctx, eventExpire); err != nil {
		slog.Error("expire session", slog.Any("err", err))
		return false
	}
	slog.Info("session expired", slog.String("user", rec.User.Email), slog.Time("expires_at", rec.ExpiresAt))
	if err := m.remote.Logout(ctx); err != nil {
		slog.Debug("remote logout after expiry", slog.Any("err", err))
	}
	m.stopWatcher()
	m.clearLocal(ctx)
	m.mu.Lock()
	m.lastExpired = true
	m.mu.Unlock()
	if err := m.transition(ctx, eventClear); err != nil {
		slog.Error("clear expired session", slog.Any("err", err))
	}
	return true
}

// syncTokens re-saves the record when the remote client rotated its tokens.
func (m *Manager) syncTokens(ctx context.Context, rec *models.Session) {
	t := m.remote.Token()
	if t.Access == "" || (t.Access == rec.AccessToken && t.Refresh == rec.RefreshToken) {
		return
	}
	next := *rec
	next.AccessToken, next.RefreshToken = t.Access, t.Refresh
	if err := m.store.Save(ctx, next); err != nil {
		slog.Error("persist rotated tokens", slog.Any("err", err))
		return
	}
	m.mu.Lock()
	m.current = &next
	m.mu.Unlock()
}

func (m *Manager) clearLocal(ctx context.Context) {
	m.remote.ClearToken()
	m.deletePersisted(ctx)
	m.reset()
}

func (m *Manager) reset() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	if m.onReset != nil {
		m.onReset()
	}
}

func (m *Manager) deletePersisted(ctx context.Context) {
	if err := m.store.Delete(ctx); err != nil {
		slog.Error("delete persisted session", slog.Any("err", err))
	}
}

func (m *Manager) transition(ctx context.Context, event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fsm.Event(ctx, event)
}

// startWatcher polls for expiry while the session is live. Callers hold op.
func (m *Manager) startWatcher() {
	m.stopWatcher()
	ctx, cancel := context.WithCancel(context.Background())
	m.stopWatch = cancel
	m.watchers.Add(1)
	go func() {
		defer m.watchers.Done()
		ticker := time.NewTicker(m.every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if m.CheckExpiry(ctx) {
					return
				}
			}
		}
	}()
}

// stopWatcher cancels the poller without waiting, since the poller itself
// may be the caller.
func (m *Manager) stopWatcher() {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
}

// Close stops the expiry watcher and waits for it to exit. The session
// record stays persisted for the next start.
func (m *Manager) Close() {
	m.op.Lock()
	m.stopWatcher()
	m.op.Unlock()
	m.watchers.Wait()
}

// IsAuthenticated reports whether a live session exists right now.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current() == StateAuthenticated && m.current != nil && !m.current.ExpiredAt(m.clock.Now())
}

// Current returns a copy of the live session.
func (m *Manager) Current() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.fsm.Current() != StateAuthenticated {
		return models.Session{}, false
	}
	return *m.current, true
}

// Authorize reports whether binding belongs to the live session.
func (m *Manager) Authorize(binding string) (models.User, bool) {
	s, ok := m.Current()
	if !ok || binding == "" || s.ExpiredAt(m.clock.Now()) {
		return models.User{}, false
	}
	if subtle.ConstantTimeCompare([]byte(binding), []byte(s.BindingToken)) != 1 {
		return models.User{}, false
	}
	return s.User, true
}

// Remaining is the time left before expiry, zero when there is no session.
func (m *Manager) Remaining() time.Duration {
	s, ok := m.Current()
	if !ok {
		return 0
	}
	d := s.ExpiresAt.Sub(m.clock.Now())
	if d < 0 {
		return 0
	}
	return d
}

func (m *Manager) FormatRemaining() string {
	return FormatRemaining(m.Remaining())
}

// LastExpired reports whether the most recent session ended by expiry
// rather than by logout.
func (m *Manager) LastExpired() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastExpired
}
