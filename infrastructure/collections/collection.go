package collections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"baletrack/infrastructure/cache"
	"baletrack/infrastructure/directus"
	"baletrack/models"
)

// Remote is the part of the item API the collection clients need.
type Remote interface {
	List(ctx context.Context, collection string, q directus.Query, out any) error
	Get(ctx context.Context, collection, id string, fields []string, out any) error
	Create(ctx context.Context, collection string, payload, out any) error
	Update(ctx context.Context, collection, id string, payload, out any) error
	Delete(ctx context.Context, collection, id string) error
}

// ReadError reports a failed read. Reads that fail still hand back an empty
// result, so callers that only render data degrade to "nothing found".
type ReadError struct {
	Collection string
	Op         string
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s (%s): %v", e.Collection, e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// IsReadError reports whether err came from a failed read.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}

var newestFirst = []string{"-date_created"}

// Collection is the typed client for one remote collection. T is the record
// shape, P the partial shape sent on create and update.
type Collection[T any, P any] struct {
	name    string
	remote  Remote
	cache   *cache.QueryCache
	fields  []string
	related []string
	prepare func(*P)
}

func newCollection[T any, P any](name string, remote Remote, qc *cache.QueryCache) *Collection[T, P] {
	return &Collection[T, P]{name: name, remote: remote, cache: qc}
}

func (c *Collection[T, P]) Name() string { return c.name }

// GetAll returns every record, newest first.
func (c *Collection[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return c.list(ctx, cache.ListKey(c.name), "getAll", nil)
}

// GetAllWhere returns the records whose field equals value, newest first.
func (c *Collection[T, P]) GetAllWhere(ctx context.Context, field, value string) ([]T, error) {
	return c.list(ctx, cache.FieldKey(c.name, field, value), "getAllWhere", directus.Eq(field, value))
}

func (c *Collection[T, P]) list(ctx context.Context, key cache.Key, op string, filter directus.Filter) ([]T, error) {
	items, err := cache.Fetch(ctx, c.cache, key, func(ctx context.Context) ([]T, error) {
		var out []T
		q := directus.Query{Limit: -1, Sort: newestFirst, Fields: c.fields, Filter: filter}
		if err := c.remote.List(ctx, c.name, q, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		slog.Error("collection read failed", slog.String("collection", c.name), slog.String("op", op), slog.String("key", key.String()), slog.Any("err", err))
		return []T{}, &ReadError{Collection: c.name, Op: op, Err: err}
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = models.CloneValue(item)
	}
	return out, nil
}

// GetByID returns the record, or nil when it does not exist.
func (c *Collection[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	item, err := cache.Fetch(ctx, c.cache, cache.ItemKey(c.name, id), func(ctx context.Context) (*T, error) {
		var out T
		err := c.remote.Get(ctx, c.name, id, c.fields, &out)
		if errors.Is(err, directus.ErrNotFound) || errors.Is(err, directus.ErrForbidden) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		slog.Error("collection read failed", slog.String("collection", c.name), slog.String("op", "getById"), slog.String("id", id), slog.Any("err", err))
		return nil, &ReadError{Collection: c.name, Op: "getById", Err: err}
	}
	return clone(item), nil
}

// GetByField returns the first record whose field equals value, or nil.
func (c *Collection[T, P]) GetByField(ctx context.Context, field, value string) (*T, error) {
	if value == "" {
		return nil, nil
	}
	item, err := cache.Fetch(ctx, c.cache, cache.FieldKey(c.name, "first:"+field, value), func(ctx context.Context) (*T, error) {
		var out []T
		q := directus.Query{Limit: 1, Fields: c.fields, Filter: directus.Eq(field, value)}
		if err := c.remote.List(ctx, c.name, q, &out); err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return nil, nil
		}
		return &out[0], nil
	})
	if err != nil {
		slog.Error("collection read failed", slog.String("collection", c.name), slog.String("op", "getByField"), slog.String("field", field), slog.Any("err", err))
		return nil, &ReadError{Collection: c.name, Op: "getByField", Err: err}
	}
	return clone(item), nil
}

// Create stores a new record. Errors are returned to the caller.
func (c *Collection[T, P]) Create(ctx context.Context, patch P) (*T, error) {
	if c.prepare != nil {
		c.prepare(&patch)
	}
	var out T
	if err := c.remote.Create(ctx, c.name, patch, &out); err != nil {
		slog.Error("collection write failed", slog.String("collection", c.name), slog.String("op", "create"), slog.Any("err", err))
		return nil, fmt.Errorf("create %s: %w", c.name, err)
	}
	c.invalidate()
	return &out, nil
}

// Update patches a record. Errors are returned to the caller.
func (c *Collection[T, P]) Update(ctx context.Context, id string, patch P) (*T, error) {
	if c.prepare != nil {
		c.prepare(&patch)
	}
	var out T
	if err := c.remote.Update(ctx, c.name, id, patch, &out); err != nil {
		slog.Error("collection write failed", slog.String("collection", c.name), slog.String("op", "update"), slog.String("id", id), slog.Any("err", err))
		return nil, fmt.Errorf("update %s %s: %w", c.name, id, err)
	}
	c.invalidate()
	return &out, nil
}

// Delete removes a record. Errors are returned to the caller.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	if err := c.remote.Delete(ctx, c.name, id); err != nil {
		slog.Error("collection write failed", slog.String("collection", c.name), slog.String("op", "delete"), slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("delete %s %s: %w", c.name, id, err)
	}
	c.invalidate()
	return nil
}

// invalidate drops this collection's reads and those of collections that
// embed its records.
func (c *Collection[T, P]) invalidate() {
	c.cache.Invalidate(c.name)
	for _, other := range c.related {
		c.cache.Invalidate(other)
	}
}

// clone hands out a private copy so callers cannot reach the cached record.
func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	cp := models.CloneValue(*p)
	return &cp
}
