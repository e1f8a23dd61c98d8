package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

var activationTokenColumns = columnNames(migrate.ActivationTokensColumns)

// ActivationTokenStore owns activation token rows. Rows are never deleted.
type ActivationTokenStore struct{ q querier }

func (s *ActivationTokenStore) Create(ctx context.Context, patientID uuid.UUID, tokenHash string, issuedAt, expiresAt time.Time) (*ActivationToken, error) {
	t := &ActivationToken{
		ID:        NewID(),
		PatientID: patientID,
		TokenHash: tokenHash,
		IssuedAt:  Timestamp(issuedAt),
		ExpiresAt: Timestamp(expiresAt),
	}
	ins := s.q.builder().Insert(migrate.ActivationTokensTable.Name).
		Columns("id", "patient_id", "token_hash", "issued_at", "expires_at", "used").
		Values(t.ID, t.PatientID, t.TokenHash, t.IssuedAt, t.ExpiresAt, false)
	if _, err := s.q.exec(ctx, ins); err != nil {
		return nil, classify("activation token", err)
	}
	return t, nil
}

func (s *ActivationTokenStore) GetByHash(ctx context.Context, tokenHash string) (*ActivationToken, error) {
	sel := s.q.selectFrom(migrate.ActivationTokensTable.Name, activationTokenColumns).
		Where(entsql.EQ("token_hash", tokenHash))
	t, err := first[ActivationToken](ctx, s.q, sel)
	return t, classify("activation token", err)
}

// Consumed is what a successful consume returns.
type Consumed struct {
	ID      uuid.UUID
	ScopeID uuid.UUID
}

type consumedActivation struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
}

// Consume flips used to true for an unused, unexpired token in a single
// conditional UPDATE. A NotFoundError means no row qualified; the caller
// decides why by reading the row back.
func (s *ActivationTokenStore) Consume(ctx context.Context, tokenHash string, at time.Time) (*Consumed, error) {
	at = Timestamp(at)
	upd := s.q.builder().Update(migrate.ActivationTokensTable.Name).
		Set("used", true).
		Set("used_at", at).
		Where(entsql.And(
			entsql.EQ("token_hash", tokenHash),
			entsql.IsFalse("used"),
			entsql.GTE("expires_at", at),
		)).
		Returning("id", "patient_id")
	c, err := first[consumedActivation](ctx, s.q, upd)
	if err != nil {
		return nil, classify("activation token", err)
	}
	return &Consumed{ID: c.ID, ScopeID: c.PatientID}, nil
}

func (s *ActivationTokenStore) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*ActivationToken, error) {
	sel := s.q.selectFrom(migrate.ActivationTokensTable.Name, activationTokenColumns).
		Where(entsql.EQ("patient_id", patientID)).
		OrderBy(entsql.Desc("issued_at"))
	var out []*ActivationToken
	if err := s.q.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}
