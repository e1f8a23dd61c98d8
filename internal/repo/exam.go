package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

var examColumns = columnNames(migrate.ExamsColumns)

type ExamStore struct{ q querier }

type CreateExam struct {
	PatientID uuid.UUID
	Title     string
	FileKey   string
	ExamDate  *time.Time
}

func (s *ExamStore) Create(ctx context.Context, in CreateExam) (*Exam, error) {
	e := &Exam{
		ID:        NewID(),
		PatientID: in.PatientID,
		Title:     in.Title,
		FileKey:   in.FileKey,
		CreatedAt: Now(),
	}
	if in.ExamDate != nil {
		d := Timestamp(*in.ExamDate)
		e.ExamDate = &d
	}
	ins := s.q.builder().Insert(migrate.ExamsTable.Name).
		Columns("id", "patient_id", "title", "file_key", "exam_date", "created_at").
		Values(e.ID, e.PatientID, e.Title, e.FileKey, nullable(e.ExamDate), e.CreatedAt)
	if _, err := s.q.exec(ctx, ins); err != nil {
		return nil, classify("exam", err)
	}
	return e, nil
}

func (s *ExamStore) Get(ctx context.Context, id uuid.UUID) (*Exam, error) {
	sel := s.q.selectFrom(migrate.ExamsTable.Name, examColumns).Where(entsql.EQ("id", id))
	e, err := first[Exam](ctx, s.q, sel)
	return e, classify("exam", err)
}

// Publish sets published_at on a draft exam; false means it was already published.
func (s *ExamStore) Publish(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return publish(ctx, s.q, migrate.ExamsTable.Name, "exam", id, at)
}
