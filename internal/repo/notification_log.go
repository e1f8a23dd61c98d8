package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

var notificationLogColumns = columnNames(migrate.NotificationLogsColumns)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// NotificationLogStore is append-only.
type NotificationLogStore struct{ q querier }

type CreateNotificationLog struct {
	EventKind    string
	SubjectID    uuid.UUID
	RecipientID  uuid.UUID
	Channel      string
	Destination  string
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
}

func (s *NotificationLogStore) Create(ctx context.Context, in CreateNotificationLog) (*NotificationLog, error) {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	l := &NotificationLog{
		ID:           NewID(),
		EventKind:    in.EventKind,
		SubjectID:    in.SubjectID,
		RecipientID:  in.RecipientID,
		Channel:      in.Channel,
		Destination:  in.Destination,
		Status:       in.Status,
		ErrorMessage: in.ErrorMessage,
		CreatedAt:    Timestamp(in.CreatedAt),
	}
	ins := s.q.builder().Insert(migrate.NotificationLogsTable.Name).
		Columns(notificationLogColumns...).
		Values(l.ID, l.EventKind, l.SubjectID, l.RecipientID, l.Channel, l.Destination, l.Status, nullable(l.ErrorMessage), l.CreatedAt)
	if _, err := s.q.exec(ctx, ins); err != nil {
		return nil, classify("notification log", err)
	}
	return l, nil
}

type LogFilter struct {
	SubjectID *uuid.UUID
	Status    string
	Limit     int
}

// List returns newest rows first.
func (s *NotificationLogStore) List(ctx context.Context, f LogFilter) ([]*NotificationLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}

	preds := []*entsql.Predicate{}
	if f.SubjectID != nil {
		preds = append(preds, entsql.EQ("subject_id", *f.SubjectID))
	}
	if f.Status != "" {
		preds = append(preds, entsql.EQ("status", f.Status))
	}

	sel := s.q.selectFrom(migrate.NotificationLogsTable.Name, notificationLogColumns).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(limit)
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}

	var out []*NotificationLog
	if err := s.q.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}
