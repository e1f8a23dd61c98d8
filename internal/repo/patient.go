package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

var patientColumns = columnNames(migrate.PatientsColumns)

type PatientStore struct{ q querier }

type CreatePatient struct {
	Email       string
	DisplayName string
	Phone       *string
	OptInNews   bool
}

func (s *PatientStore) Create(ctx context.Context, in CreatePatient) (*Patient, error) {
	p := &Patient{
		ID:          NewID(),
		Email:       normalizeEmail(in.Email),
		DisplayName: in.DisplayName,
		Phone:       in.Phone,
		OptInNews:   in.OptInNews,
		CreatedAt:   Now(),
	}
	ins := s.q.builder().Insert(migrate.PatientsTable.Name).
		Columns("id", "email", "display_name", "phone", "opt_in_news", "created_at").
		Values(p.ID, p.Email, p.DisplayName, nullable(p.Phone), p.OptInNews, p.CreatedAt)
	if _, err := s.q.exec(ctx, ins); err != nil {
		return nil, classify("patient", err)
	}
	return p, nil
}

func (s *PatientStore) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	sel := s.q.selectFrom(migrate.PatientsTable.Name, patientColumns).
		Where(entsql.EQ("id", id))
	p, err := first[Patient](ctx, s.q, sel)
	return p, classify("patient", err)
}

// LinkIdentity sets login_identity_id and activated_at only while the patient
// is still unlinked. It reports whether this call made the link.
func (s *PatientStore) LinkIdentity(ctx context.Context, patientID, identityID uuid.UUID, at time.Time) (bool, error) {
	upd := s.q.builder().Update(migrate.PatientsTable.Name).
		Set("login_identity_id", identityID).
		Set("activated_at", Timestamp(at)).
		Where(entsql.And(
			entsql.EQ("id", patientID),
			entsql.IsNull("login_identity_id"),
		))
	n, err := s.q.exec(ctx, upd)
	if err != nil {
		return false, classify("patient", err)
	}
	return n == 1, nil
}

func (s *PatientStore) MarkInviteSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	upd := s.q.builder().Update(migrate.PatientsTable.Name).
		Set("invite_sent_at", Timestamp(at)).
		Where(entsql.EQ("id", id))
	n, err := s.q.exec(ctx, upd)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("patient")
	}
	return nil
}

// ListNewsRecipients returns opted-in patients that can log in.
func (s *PatientStore) ListNewsRecipients(ctx context.Context) ([]*Patient, error) {
	sel := s.q.selectFrom(migrate.PatientsTable.Name, patientColumns).
		Where(entsql.And(
			entsql.IsTrue("opt_in_news"),
			entsql.NotNull("login_identity_id"),
		)).
		OrderBy("created_at")
	var out []*Patient
	if err := s.q.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}
