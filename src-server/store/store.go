package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type Options struct {
	// EnforceOwner rejects updates from callers other than the event owner.
	EnforceOwner bool
}

// EventStore owns every event record and the counter handing out their ids.
// All mutations run under one lock; notifications go out before it's released.
type EventStore struct {
	mu       sync.RWMutex
	backend  Backend
	notifier Notifier
	nextID   int64
	opts     Options
}

// New resumes the id counter from the backend. A nil notifier drops notifications.
func New(ctx context.Context, backend Backend, notifier Notifier, opts Options) (*EventStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("store.New: backend is nil")
	}
	nextID, err := backend.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.New: %w", err)
	}
	if notifier == nil {
		notifier = NotifierFunc(func(context.Context, Notification) {})
	}
	return &EventStore{
		backend:  backend,
		notifier: notifier,
		nextID:   nextID,
		opts:     opts,
	}, nil
}

func validate(method, name string, maxAttendance int64) (string, error) {
	name = CleanupName(name)
	switch {
	case name == "":
		return "", fmt.Errorf("(*EventStore).%s: name is blank: %w", method, ErrInvalidArgument)
	case maxAttendance < 0:
		return "", fmt.Errorf("(*EventStore).%s: max attendance %d is negative: %w", method, maxAttendance, ErrInvalidArgument)
	}
	return name, nil
}

func (s *EventStore) CreateEvent(ctx context.Context, name string, maxAttendance int64) (Event, error) {
	name, err := validate("CreateEvent", name, maxAttendance)
	if err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := Event{
		ID:            s.nextID,
		Name:          name,
		MaxAttendance: maxAttendance,
		Owner:         CallerFrom(ctx),
	}
	if err := s.backend.Insert(ctx, e); err != nil {
		return Event{}, fmt.Errorf("(*EventStore).CreateEvent: %w", err)
	}
	s.nextID++

	s.notifier.Notify(ctx, NewNotification(EventCreated, e))
	return e, nil
}

func (s *EventStore) GetEvent(ctx context.Context, id int64) (Event, error) {
	if id < 0 {
		return Event{}, fmt.Errorf("(*EventStore).GetEvent: id %d: %w", id, ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.backend.Get(ctx, id)
	if err != nil {
		return Event{}, fmt.Errorf("(*EventStore).GetEvent: id %d: %w", id, notFoundOr(err))
	}
	return e, nil
}

func (s *EventStore) UpdateEvent(ctx context.Context, id int64, name string, maxAttendance int64) (Event, error) {
	if id < 0 {
		return Event{}, fmt.Errorf("(*EventStore).UpdateEvent: id %d: %w", id, ErrNotFound)
	}
	name, err := validate("UpdateEvent", name, maxAttendance)
	if err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.backend.Get(ctx, id)
	if err != nil {
		return Event{}, fmt.Errorf("(*EventStore).UpdateEvent: id %d: %w", id, notFoundOr(err))
	}
	if s.opts.EnforceOwner && e.Owner != "" && e.Owner != CallerFrom(ctx) {
		return Event{}, fmt.Errorf("(*EventStore).UpdateEvent: id %d is owned by %q: %w", id, e.Owner, ErrPermissionDenied)
	}

	e.Name = name
	e.MaxAttendance = maxAttendance
	if err := s.backend.Update(ctx, e); err != nil {
		return Event{}, fmt.Errorf("(*EventStore).UpdateEvent: id %d: %w", id, notFoundOr(err))
	}

	s.notifier.Notify(ctx, NewNotification(EventUpdated, e))
	return e, nil
}

// Count is the number of events created so far.
func (s *EventStore) Count() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

func notFoundOr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return err
}
