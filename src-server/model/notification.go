package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"evtd/src-server/store"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// A persisted store.Notification, one row per successful mutation
type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	Seq           int64  `bun:"seq,pk,autoincrement"`
	ID            string `bun:"id,notnull,unique"`         // required
	Kind          string `bun:"kind,notnull,type:varchar"` // required
	EventID       int64  `bun:"event_id,notnull"`          // required
	Name          string `bun:"name,notnull"`              // required
	MaxAttendance int64  `bun:"max_attendance,notnull"`    // required
	Owner         string `bun:"owner"`
	CreatedAt     int64  `bun:"created_at,notnull"`
}

// Journal writes every notification it receives to the notifications table.
type Journal struct {
	db bun.IDB
}

var _ store.Notifier = (*Journal)(nil)

func NewJournal(db bun.IDB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Append(ctx context.Context, n store.Notification) (*Notification, error) {
	notificationModel, err := insertNotification(ctx, j.db, n)
	if err != nil {
		return nil, fmt.Errorf("(*Journal).Append: %w", err)
	}
	return notificationModel, nil
}

func insertNotification(ctx context.Context, db bun.IDB, n store.Notification) (*Notification, error) {
	notificationModel := &Notification{
		ID:            uuid.NewString(),
		Kind:          string(n.Kind),
		EventID:       n.EventID,
		Name:          n.Name,
		MaxAttendance: n.MaxAttendance,
		Owner:         n.Owner,
		CreatedAt:     time.Now().UTC().Unix(),
	}
	if _, err := db.NewInsert().
		Model(notificationModel).
		Exec(ctx); err != nil {
		return nil, err
	}
	return notificationModel, nil
}

// Notify never fails the mutation it reports on; a failed write is logged.
func (j *Journal) Notify(ctx context.Context, n store.Notification) {
	if _, err := j.Append(context.WithoutCancel(ctx), n); err != nil {
		slog.Error("can't write notification to journal", "kind", n.Kind, "event_id", n.EventID, "error", err)
	}
}

// List returns up to limit notifications with seq greater than afterSeq, oldest first.
func (j *Journal) List(ctx context.Context, afterSeq int64, limit int) ([]Notification, error) {
	notificationModels := make([]Notification, 0)
	if err := j.db.NewSelect().
		Model(&notificationModels).
		Where("seq > ?", afterSeq).
		Order("seq ASC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("(*Journal).List: %w", err)
	}
	return notificationModels, nil
}

func (j *Journal) ListByEvent(ctx context.Context, eventID int64) ([]Notification, error) {
	notificationModels := make([]Notification, 0)
	if err := j.db.NewSelect().
		Model(&notificationModels).
		Where("event_id = ?", eventID).
		Order("seq ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("(*Journal).ListByEvent: %w", err)
	}
	return notificationModels, nil
}
