package store

import (
	"context"
	"fmt"
)

// Backend holds the id -> event mapping. The EventStore serialises every call
// into it, so implementations don't need their own locking for writes.
type Backend interface {
	// NextID reports the id the next created event should receive.
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, e Event) error
	// Get returns ErrNotFound (wrapped or not) for unknown ids.
	Get(ctx context.Context, id int64) (Event, error)
	// Update returns ErrNotFound (wrapped or not) for unknown ids.
	Update(ctx context.Context, e Event) error
}

type MemoryBackend struct {
	events map[int64]Event
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{events: make(map[int64]Event)}
}

func (m *MemoryBackend) NextID(context.Context) (int64, error) {
	var next int64
	for id := range m.events {
		if id >= next {
			next = id + 1
		}
	}
	return next, nil
}

func (m *MemoryBackend) Insert(_ context.Context, e Event) error {
	if _, ok := m.events[e.ID]; ok {
		return fmt.Errorf("(*MemoryBackend).Insert: id %d already taken", e.ID)
	}
	m.events[e.ID] = e
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, id int64) (Event, error) {
	e, ok := m.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryBackend) Update(_ context.Context, e Event) error {
	if _, ok := m.events[e.ID]; !ok {
		return ErrNotFound
	}
	m.events[e.ID] = e
	return nil
}
