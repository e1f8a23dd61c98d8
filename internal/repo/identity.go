package repo

import (
	"context"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

var identityColumns = columnNames(migrate.LoginIdentitiesColumns)

// IdentityStore persists login identities. Emails are stored lower-cased.
type IdentityStore struct{ q querier }

// Create inserts a new identity. A taken email returns ErrDuplicate.
func (s *IdentityStore) Create(ctx context.Context, email, passwordHash, role string) (*LoginIdentity, error) {
	now := Now()
	li := &LoginIdentity{
		ID:           NewID(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ins := s.q.builder().Insert(migrate.LoginIdentitiesTable.Name).
		Columns("id", "email", "password_hash", "role", "created_at", "updated_at").
		Values(li.ID, li.Email, li.PasswordHash, li.Role, li.CreatedAt, li.UpdatedAt)
	if _, err := s.q.exec(ctx, ins); err != nil {
		return nil, classify("login identity", err)
	}
	return li, nil
}

func (s *IdentityStore) Get(ctx context.Context, id uuid.UUID) (*LoginIdentity, error) {
	sel := s.q.selectFrom(migrate.LoginIdentitiesTable.Name, identityColumns).
		Where(entsql.EQ("id", id))
	li, err := first[LoginIdentity](ctx, s.q, sel)
	return li, classify("login identity", err)
}

func (s *IdentityStore) GetByEmail(ctx context.Context, email string) (*LoginIdentity, error) {
	sel := s.q.selectFrom(migrate.LoginIdentitiesTable.Name, identityColumns).
		Where(entsql.EQ("email", normalizeEmail(email)))
	li, err := first[LoginIdentity](ctx, s.q, sel)
	return li, classify("login identity", err)
}

// UpdatePasswordHash replaces the credential of an existing identity.
func (s *IdentityStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	upd := s.q.builder().Update(migrate.LoginIdentitiesTable.Name).
		Set("password_hash", passwordHash).
		Set("updated_at", Now()).
		Where(entsql.EQ("id", id))
	n, err := s.q.exec(ctx, upd)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("login identity")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
