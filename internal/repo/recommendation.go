package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

var recommendationColumns = columnNames(migrate.RecommendationsColumns)

type RecommendationStore struct{ q querier }

func (s *RecommendationStore) Create(ctx context.Context, patientID uuid.UUID, title, body string) (*Recommendation, error) {
	r := &Recommendation{
		ID:        NewID(),
		PatientID: patientID,
		Title:     title,
		Body:      body,
		CreatedAt: Now(),
	}
	ins := s.q.builder().Insert(migrate.RecommendationsTable.Name).
		Columns("id", "patient_id", "title", "body", "created_at").
		Values(r.ID, r.PatientID, r.Title, r.Body, r.CreatedAt)
	if _, err := s.q.exec(ctx, ins); err != nil {
		return nil, classify("recommendation", err)
	}
	return r, nil
}

func (s *RecommendationStore) Get(ctx context.Context, id uuid.UUID) (*Recommendation, error) {
	sel := s.q.selectFrom(migrate.RecommendationsTable.Name, recommendationColumns).Where(entsql.EQ("id", id))
	r, err := first[Recommendation](ctx, s.q, sel)
	return r, classify("recommendation", err)
}

func (s *RecommendationStore) Publish(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return publish(ctx, s.q, migrate.RecommendationsTable.Name, "recommendation", id, at)
}
