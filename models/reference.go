package models

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// ID is a remote primary key. The service may send it as a string or a number.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*id = ID(n.String())
		return nil
	case b[0] == '{':
		// Expanded relation where a bare key was expected.
		var head struct {
			ID ID `json:"id"`
		}
		if err := json.Unmarshal(b, &head); err != nil {
			return err
		}
		*id = head.ID
		return nil
	}
	return fmt.Errorf("models: cannot decode id from %s", string(b))
}

// Reference is a foreign key that arrives either as a bare id or as the
// embedded related record, depending on the fields requested.
type Reference[T any] struct {
	id       ID
	embedded *T
}

// RefID builds an id-only reference. An empty id is the null reference.
func RefID[T any](id ID) Reference[T] {
	return Reference[T]{id: id}
}

// RefEmbedded builds a reference carrying the related record.
func RefEmbedded[T any](id ID, v T) Reference[T] {
	return Reference[T]{id: id, embedded: &v}
}

// ID returns the referenced key in both shapes.
func (r Reference[T]) ID() ID { return r.id }

// Embedded returns the related record when the service expanded it.
func (r Reference[T]) Embedded() (*T, bool) {
	return r.embedded, r.embedded != nil
}

// IsZero reports whether the reference is null.
func (r Reference[T]) IsZero() bool { return r.id == "" && r.embedded == nil }

// MarshalJSON always writes the bare key; writes never send embedded records.
func (r Reference[T]) MarshalJSON() ([]byte, error) {
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r.id))
}

func (r *Reference[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Reference[T]{}
		return nil
	}
	if b[0] != '{' {
		var id ID
		if err := id.UnmarshalJSON(b); err != nil {
			return err
		}
		*r = Reference[T]{id: id}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("models: decode embedded reference: %w", err)
	}
	var head struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	*r = Reference[T]{id: head.ID, embedded: &v}
	return nil
}

// Null is a patch value that can explicitly clear a field.
type Null[T any] struct {
	V     T
	Valid bool
}

// Some wraps a present value.
func Some[T any](v T) *Null[T] { return &Null[T]{V: v, Valid: true} }

// None clears the field on the remote record.
func None[T any]() *Null[T] { return &Null[T]{} }

func (n Null[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.V)
}
