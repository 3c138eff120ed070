package models

import "slices"

// Clone returns a copy that shares no memory with f.
func (f Farmer) Clone() Farmer {
	f.DateCreated = clonePtr(f.DateCreated)
	f.DateUpdated = clonePtr(f.DateUpdated)
	return f
}

// Clone returns a copy that shares no memory with b.
func (b Box) Clone() Box {
	b.Bales = slices.Clone(b.Bales)
	b.DateCreated = clonePtr(b.DateCreated)
	b.DateUpdated = clonePtr(b.DateUpdated)
	return b
}

// Clone returns a copy that shares no memory with b, embedded records included.
func (b Bale) Clone() Bale {
	b.Mass = clonePtr(b.Mass)
	b.Price = clonePtr(b.Price)
	b.Grower = b.Grower.Clone()
	b.Box = b.Box.Clone()
	b.DateCreated = clonePtr(b.DateCreated)
	b.DateUpdated = clonePtr(b.DateUpdated)
	return b
}

// Clone returns a copy that shares no memory with s.
func (s BaleShipment) Clone() BaleShipment {
	s.Bales = slices.Clone(s.Bales)
	s.DateCreated = clonePtr(s.DateCreated)
	s.DateUpdated = clonePtr(s.DateUpdated)
	return s
}

// Clone copies the embedded record so the copy can be changed freely.
func (r Reference[T]) Clone() Reference[T] {
	if r.embedded == nil {
		return r
	}
	return Reference[T]{id: r.id, embedded: Ptr(CloneValue(*r.embedded))}
}

// CloneValue deep-copies v when its type knows how, and returns it as is otherwise.
func CloneValue[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
