package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

var shareLinkColumns = columnNames(migrate.ShareLinksColumns)

// ShareLinkStore owns share link rows. Token values are never rewritten;
// rotation inserts a new row.
type ShareLinkStore struct{ q querier }

func (s *ShareLinkStore) Create(ctx context.Context, examID uuid.UUID, token string, createdAt time.Time, expiresAt *time.Time) (*ShareLink, error) {
	l := &ShareLink{
		ID:        NewID(),
		ExamID:    examID,
		Token:     token,
		CreatedAt: Timestamp(createdAt),
	}
	if expiresAt != nil {
		t := Timestamp(*expiresAt)
		l.ExpiresAt = &t
	}
	ins := s.q.builder().Insert(migrate.ShareLinksTable.Name).
		Columns("id", "exam_id", "token", "created_at", "expires_at", "view_count").
		Values(l.ID, l.ExamID, l.Token, l.CreatedAt, nullable(l.ExpiresAt), 0)
	if _, err := s.q.exec(ctx, ins); err != nil {
		return nil, classify("share link", err)
	}
	return l, nil
}

func (s *ShareLinkStore) Get(ctx context.Context, id uuid.UUID) (*ShareLink, error) {
	sel := s.q.selectFrom(migrate.ShareLinksTable.Name, shareLinkColumns).
		Where(entsql.EQ("id", id))
	l, err := first[ShareLink](ctx, s.q, sel)
	return l, classify("share link", err)
}

func (s *ShareLinkStore) GetByToken(ctx context.Context, token string) (*ShareLink, error) {
	sel := s.q.selectFrom(migrate.ShareLinksTable.Name, shareLinkColumns).
		Where(entsql.EQ("token", token))
	l, err := first[ShareLink](ctx, s.q, sel)
	return l, classify("share link", err)
}

func activeAt(at time.Time) *entsql.Predicate {
	return entsql.And(
		entsql.IsNull("revoked_at"),
		entsql.Or(
			entsql.IsNull("expires_at"),
			entsql.GTE("expires_at", at),
		),
	)
}

// ActiveForExam returns the newest link of the exam that resolves at the given time.
func (s *ShareLinkStore) ActiveForExam(ctx context.Context, examID uuid.UUID, at time.Time) (*ShareLink, error) {
	sel := s.q.selectFrom(migrate.ShareLinksTable.Name, shareLinkColumns).
		Where(entsql.And(entsql.EQ("exam_id", examID), activeAt(Timestamp(at)))).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(1)
	l, err := first[ShareLink](ctx, s.q, sel)
	return l, classify("share link", err)
}

func (s *ShareLinkStore) ListForExam(ctx context.Context, examID uuid.UUID) ([]*ShareLink, error) {
	sel := s.q.selectFrom(migrate.ShareLinksTable.Name, shareLinkColumns).
		Where(entsql.EQ("exam_id", examID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	var out []*ShareLink
	if err := s.q.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type viewedLink struct {
	ID        uuid.UUID `json:"id"`
	ExamID    uuid.UUID `json:"exam_id"`
	ViewCount int       `json:"view_count"`
}

// View is the state of a link right after a recorded view.
type View struct {
	LinkID    uuid.UUID
	ExamID    uuid.UUID
	ViewCount int
	ViewedAt  time.Time
}

// RecordView increments view_count and sets last_viewed_at in one conditional
// UPDATE, only while the link resolves. A NotFoundError means no row qualified.
func (s *ShareLinkStore) RecordView(ctx context.Context, token string, at time.Time) (*View, error) {
	at = Timestamp(at)
	upd := s.q.builder().Update(migrate.ShareLinksTable.Name).
		Add("view_count", 1).
		Set("last_viewed_at", at).
		Where(entsql.And(entsql.EQ("token", token), activeAt(at))).
		Returning("id", "exam_id", "view_count")
	v, err := first[viewedLink](ctx, s.q, upd)
	if err != nil {
		return nil, classify("share link", err)
	}
	return &View{LinkID: v.ID, ExamID: v.ExamID, ViewCount: v.ViewCount, ViewedAt: at}, nil
}

// Revoke sets revoked_at when it is unset. It reports whether this call
// revoked the link; a missing link is a NotFoundError.
func (s *ShareLinkStore) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	upd := s.q.builder().Update(migrate.ShareLinksTable.Name).
		Set("revoked_at", Timestamp(at)).
		Where(entsql.And(entsql.EQ("id", id), entsql.IsNull("revoked_at")))
	n, err := s.q.exec(ctx, upd)
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// RevokeActiveForExam revokes every link of the exam that is not yet revoked.
func (s *ShareLinkStore) RevokeActiveForExam(ctx context.Context, examID uuid.UUID, at time.Time) (int64, error) {
	upd := s.q.builder().Update(migrate.ShareLinksTable.Name).
		Set("revoked_at", Timestamp(at)).
		Where(entsql.And(entsql.EQ("exam_id", examID), entsql.IsNull("revoked_at")))
	return s.q.exec(ctx, upd)
}
