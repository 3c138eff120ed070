package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"baletrack/infrastructure/metrics"
)

// DefaultTTL is the freshness window for cached reads.
const DefaultTTL = 30 * time.Second

// Key identifies one cached read: a collection list, a single record, or a
// list filtered on one field.
type Key struct {
	Collection string
	ID         string
	Field      string
	Value      string
}

func ListKey(collection string) Key { return Key{Collection: collection} }

func ItemKey(collection, id string) Key { return Key{Collection: collection, ID: id} }

func FieldKey(collection, field, value string) Key {
	return Key{Collection: collection, Field: field, Value: value}
}

func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.Collection)
	if k.ID != "" {
		b.WriteString("|id=")
		b.WriteString(k.ID)
	}
	if k.Field != "" {
		b.WriteString("|")
		b.WriteString(k.Field)
		b.WriteString("=")
		b.WriteString(k.Value)
	}
	return b.String()
}

// QueryCache serves reads within a freshness window and coalesces identical
// in-flight loads. Writes bump a per-collection generation: loads that began
// under an older generation are returned to their callers but never stored.
type QueryCache struct {
	store  *gocache.Cache
	flight singleflight.Group

	mu          sync.Mutex
	epoch       uint64
	generations map[string]uint64
}

type stamp struct {
	epoch, gen uint64
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{
		store:       gocache.New(ttl, 2*ttl),
		generations: make(map[string]uint64),
	}
}

func (c *QueryCache) stampFor(collection string) stamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stampLocked(collection)
}

func (c *QueryCache) stampLocked(collection string) stamp {
	return stamp{epoch: c.epoch, gen: c.generations[collection]}
}

// Fetch returns the cached value for key or runs load once for all concurrent
// callers of the same key. Errors are never cached.
func Fetch[T any](ctx context.Context, c *QueryCache, key Key, load func(context.Context) (T, error)) (T, error) {
	var zero T
	ks := key.String()
	if v, ok := c.store.Get(ks); ok {
		if typed, ok := v.(T); ok {
			metrics.CacheHit(key.Collection)
			return typed, nil
		}
		c.store.Delete(ks)
	}

	st := c.stampFor(key.Collection)
	v, err, shared := c.flight.Do(fmt.Sprintf("%s#%d.%d", ks, st.epoch, st.gen), func() (any, error) {
		metrics.CacheMiss(key.Collection)
		loaded, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.stampLocked(key.Collection) == st {
			c.store.SetDefault(ks, loaded)
		}
		c.mu.Unlock()
		return loaded, nil
	})
	if shared {
		metrics.CacheShared(key.Collection)
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached read of collection.
func (c *QueryCache) Invalidate(collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[collection]++
	prefix := collection + "|"
	for k := range c.store.Items() {
		if k == collection || strings.HasPrefix(k, prefix) {
			c.store.Delete(k)
		}
	}
	metrics.CacheInvalidated(collection)
}

// Flush empties the cache, e.g. when the session ends.
func (c *QueryCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.store.Flush()
}

// Len reports the number of live entries.
func (c *QueryCache) Len() int {
	return c.store.ItemCount()
}
