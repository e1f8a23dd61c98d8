package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

var newsColumns = columnNames(migrate.NewsColumns)

type NewsStore struct{ q querier }

func (s *NewsStore) Create(ctx context.Context, title, body string) (*News, error) {
	n := &News{
		ID:        NewID(),
		Title:     title,
		Body:      body,
		CreatedAt: Now(),
	}
	ins := s.q.builder().Insert(migrate.NewsTable.Name).
		Columns("id", "title", "body", "created_at").
		Values(n.ID, n.Title, n.Body, n.CreatedAt)
	if _, err := s.q.exec(ctx, ins); err != nil {
		return nil, classify("news", err)
	}
	return n, nil
}

func (s *NewsStore) Get(ctx context.Context, id uuid.UUID) (*News, error) {
	sel := s.q.selectFrom(migrate.NewsTable.Name, newsColumns).Where(entsql.EQ("id", id))
	n, err := first[News](ctx, s.q, sel)
	return n, classify("news", err)
}

func (s *NewsStore) Publish(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return publish(ctx, s.q, migrate.NewsTable.Name, "news", id, at)
}
