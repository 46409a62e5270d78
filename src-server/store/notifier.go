package store

import (
	"context"
	"sync"
)

type NotificationKind string

const (
	EventCreated NotificationKind = "EventCreated"
	EventUpdated NotificationKind = "EventUpdated"
)

// Notification carries the field values an event has after a mutation.
type Notification struct {
	Kind          NotificationKind `json:"kind"`
	EventID       int64            `json:"id"`
	Name          string           `json:"name"`
	MaxAttendance int64            `json:"maxAttendance"`
	Owner         string           `json:"owner"`
}

// NewNotification builds the notification reporting e after a mutation of the given kind.
func NewNotification(kind NotificationKind, e Event) Notification {
	return Notification{
		Kind:          kind,
		EventID:       e.ID,
		Name:          e.Name,
		MaxAttendance: e.MaxAttendance,
		Owner:         e.Owner,
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc lets a plain function act as a Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Bus fans a notification out to every subscriber, synchronously and in
// subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

type subscription struct {
	id uint64
	fn func(ctx context.Context, n Notification)
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a func that removes it again.
func (b *Bus) Subscribe(fn func(ctx context.Context, n Notification)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, sub := range b.subs {
				if sub.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscribeNotifier is Subscribe for anything implementing Notifier.
func (b *Bus) SubscribeNotifier(n Notifier) func() {
	return b.Subscribe(n.Notify)
}

func (b *Bus) Notify(ctx context.Context, n Notification) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(ctx, n)
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
