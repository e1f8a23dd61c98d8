package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
	"github.com/Alijeyrad/simorq_portal/pkg/util/password"
)

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// Service is the login identity and password store.
type Service interface {
	// Create returns ErrIdentityExists when the email is taken.
	Create(ctx context.Context, email, password, role string) (uuid.UUID, error)
	FindByEmail(ctx context.Context, email string) (*repo.LoginIdentity, error)
	Get(ctx context.Context, id uuid.UUID) (*repo.LoginIdentity, error)
	UpdateCredential(ctx context.Context, id uuid.UUID, password string) error
	Authenticate(ctx context.Context, email, password string) (*repo.LoginIdentity, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type identityService struct {
	db     *repo.Client
	hasher password.Hasher
}

func New(db *repo.Client, hasher password.Hasher) Service {
	return &identityService{db: db, hasher: hasher}
}

func (s *identityService) Create(ctx context.Context, email, pass, role string) (uuid.UUID, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return uuid.Nil, err
	}
	if !validRole(role) {
		return uuid.Nil, ErrInvalidRole
	}
	if pass == "" {
		return uuid.Nil, ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	li, err := s.db.Identities.Create(ctx, email, hash, role)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return uuid.Nil, ErrIdentityExists
		}
		return uuid.Nil, fmt.Errorf("create identity: %w", err)
	}
	return li.ID, nil
}

func (s *identityService) FindByEmail(ctx context.Context, email string) (*repo.LoginIdentity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	li, err := s.db.Identities.GetByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return li, nil
}

func (s *identityService) Get(ctx context.Context, id uuid.UUID) (*repo.LoginIdentity, error) {
	li, err := s.db.Identities.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return li, nil
}

func (s *identityService) UpdateCredential(ctx context.Context, id uuid.UUID, pass string) error {
	if pass == "" {
		return ErrEmptyPassword
	}
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Identities.UpdatePasswordHash(ctx, id, hash); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update credential: %w", err)
	}
	return nil
}

func (s *identityService) Authenticate(ctx context.Context, email, pass string) (*repo.LoginIdentity, error) {
	li, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidEmail) {
			// Burn a hash so unknown emails cost the same as wrong passwords.
			_, _ = s.hasher.Hash(pass)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Verify(li.PasswordHash, pass); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Upgrade hashes made before the argon2 parameters changed. A failure
	// here must not fail the login.
	if s.hasher.NeedsRehash(li.PasswordHash) {
		if err := s.UpdateCredential(ctx, li.ID, pass); err != nil {
			slog.WarnContext(ctx, "identity: rehash on login failed", "identity_id", li.ID, "err", err)
		}
	}
	return li, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func normalizeEmail(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	return raw, nil
}

func validRole(role string) bool {
	switch role {
	case authorize.IdentityRolePatient, authorize.IdentityRoleStaff, authorize.IdentityRoleAdmin:
		return true
	}
	return false
}
