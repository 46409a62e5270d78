package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"evtd/src-server/store"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	Key           string `bun:"key,pk"`                  // required
	EventID       int64  `bun:"event_id,notnull,unique"` // required
	Name          string `bun:"name,notnull"`            // required
	MaxAttendance int64  `bun:"max_attendance,notnull"`  // required
	Owner         string `bun:"owner"`
	CreatedAt     int64  `bun:"created_at,notnull"`
	UpdatedAt     int64  `bun:"updated_at"`
}

func (e *Event) ToStore() store.Event {
	return store.Event{
		ID:            e.EventID,
		Name:          e.Name,
		MaxAttendance: e.MaxAttendance,
		Owner:         e.Owner,
	}
}

// EventRepo persists store events with bun.
type EventRepo struct {
	db      bun.IDB
	journal bool
}

var _ store.Backend = (*EventRepo)(nil)

func NewEventRepo(db bun.IDB) *EventRepo {
	return &EventRepo{db: db}
}

// NewJournaledEventRepo returns an EventRepo that writes the matching
// notifications row in the same transaction as every insert and update.
func NewJournaledEventRepo(db bun.IDB) *EventRepo {
	return &EventRepo{db: db, journal: true}
}

func (r *EventRepo) write(ctx context.Context, kind store.NotificationKind, e store.Event, f func(ctx context.Context, db bun.IDB) error) error {
	if !r.journal {
		return f(ctx, r.db)
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := f(ctx, tx); err != nil {
			return err
		}
		_, err := insertNotification(ctx, tx, store.NewNotification(kind, e))
		return err
	})
}

func (r *EventRepo) NextID(ctx context.Context) (int64, error) {
	var next int64
	if err := r.db.NewSelect().
		Model((*Event)(nil)).
		ColumnExpr("COALESCE(MAX(event_id) + 1, 0)").
		Scan(ctx, &next); err != nil {
		return 0, fmt.Errorf("(*EventRepo).NextID: %w", err)
	}
	return next, nil
}

func (r *EventRepo) Insert(ctx context.Context, e store.Event) error {
	eventModel := &Event{
		Key:           uuid.NewString(),
		EventID:       e.ID,
		Name:          e.Name,
		MaxAttendance: e.MaxAttendance,
		Owner:         e.Owner,
		CreatedAt:     time.Now().UTC().Unix(),
	}
	err := r.write(ctx, store.EventCreated, e, func(ctx context.Context, db bun.IDB) error {
		_, err := db.NewInsert().
			Model(eventModel).
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("(*EventRepo).Insert: %w", err)
	}
	return nil
}

func (r *EventRepo) Get(ctx context.Context, id int64) (store.Event, error) {
	eventModel := new(Event)
	if err := r.db.NewSelect().
		Model(eventModel).
		Where("event_id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Event{}, store.ErrNotFound
		}
		return store.Event{}, fmt.Errorf("(*EventRepo).Get: %w", err)
	}
	return eventModel.ToStore(), nil
}

func (r *EventRepo) Update(ctx context.Context, e store.Event) error {
	err := r.write(ctx, store.EventUpdated, e, func(ctx context.Context, db bun.IDB) error {
		res, err := db.NewUpdate().
			Model((*Event)(nil)).
			Set("name = ?", e.Name).
			Set("max_attendance = ?", e.MaxAttendance).
			Set("updated_at = ?", time.Now().UTC().Unix()).
			Where("event_id = ?", e.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("(*EventRepo).Update: %w", err)
	}
	return nil
}
