package session

import (
	"context"
	"sync"
	"time"

	"baletrack/models"
)

// Clock supplies the current time so expiry can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Store persists the single session record across restarts. Load returns
// nil, nil when nothing is stored.
type Store interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Delete(ctx context.Context) error
}

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	rec *models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return nil, nil
	}
	cp := *m.rec
	return &cp, nil
}

func (m *MemoryStore) Save(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &s
	return nil
}

func (m *MemoryStore) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	return nil
}
