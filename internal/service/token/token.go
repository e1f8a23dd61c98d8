package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/pkg/crypto"
	"github.com/Alijeyrad/simorq_portal/pkg/observability"
	"github.com/Alijeyrad/simorq_portal/pkg/util/codes"
)

// issueAttempts bounds retries on a (practically impossible) token collision.
const issueAttempts = 3

type Kind string

const (
	// KindActivation tokens are single-use, always expire, and are stored as a digest.
	KindActivation Kind = "activation"
	// KindShare tokens are multi-use and may be non-expiring.
	KindShare Kind = "share"
)

// Policy controls what a successful validation does to the token.
// SingleUse consumes it. CheckOnly leaves it untouched. Otherwise an
// activation token is only checked and a share token records a view.
type Policy struct {
	SingleUse bool
	CheckOnly bool
}

// DefaultPolicy is single-use for activation and view-recording for share tokens.
func DefaultPolicy(kind Kind) Policy {
	return Policy{SingleUse: kind == KindActivation}
}

// Clock is injected so expiry can be tested without sleeping.
type Clock func() time.Time

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Issued carries the raw value exactly once. Do not log Value.
type Issued struct {
	ID        uuid.UUID
	Kind      Kind
	ScopeID   uuid.UUID
	Value     string
	IssuedAt  time.Time
	ExpiresAt *time.Time
}

// Validated describes the token after a successful validation.
type Validated struct {
	ID      uuid.UUID
	Kind    Kind
	ScopeID uuid.UUID
	At      time.Time
	// ViewCount is set for share tokens.
	ViewCount int
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Issue creates a token scoped to a patient (activation) or exam (share).
	// A nil ttl means no expiry and is only accepted for share tokens.
	Issue(ctx context.Context, kind Kind, scopeID uuid.UUID, ttl *time.Duration) (*Issued, error)
	// ValidateAndConsume checks value and applies the policy atomically.
	ValidateAndConsume(ctx context.Context, kind Kind, value string, policy Policy) (*Validated, error)
	// WithTx binds the service to a transaction-scoped client.
	WithTx(tx *repo.Client) Service
	Now() time.Time
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type tokenService struct {
	db      *repo.Client
	gen     codes.Generator
	clock   Clock
	outcome observability.Outcome
}

type Option func(*tokenService)

func WithClock(c Clock) Option {
	return func(s *tokenService) { s.clock = c }
}

func New(db *repo.Client, gen codes.Generator, opts ...Option) Service {
	s := &tokenService{
		db:      db,
		gen:     gen,
		clock:   time.Now,
		outcome: observability.NewOutcome("portal_token_validations", "Token validations by kind and result"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *tokenService) WithTx(tx *repo.Client) Service {
	cp := *s
	cp.db = tx
	return &cp
}

func (s *tokenService) Now() time.Time { return repo.Timestamp(s.clock()) }

// ---------------------------------------------------------------------------
// Issue
// ---------------------------------------------------------------------------

func (s *tokenService) Issue(ctx context.Context, kind Kind, scopeID uuid.UUID, ttl *time.Duration) (*Issued, error) {
	now := s.Now()

	var expiresAt *time.Time
	if ttl != nil && *ttl > 0 {
		t := now.Add(*ttl)
		expiresAt = &t
	}

	switch kind {
	case KindActivation:
		if expiresAt == nil {
			return nil, ErrTTLRequired
		}
	case KindShare:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	for attempt := 1; ; attempt++ {
		value, err := s.gen.Token()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}

		var id uuid.UUID
		switch kind {
		case KindActivation:
			var t *repo.ActivationToken
			t, err = s.db.ActivationTokens.Create(ctx, scopeID, crypto.Hash(value), now, *expiresAt)
			if t != nil {
				id = t.ID
			}
		case KindShare:
			var l *repo.ShareLink
			l, err = s.db.ShareLinks.Create(ctx, scopeID, value, now, expiresAt)
			if l != nil {
				id = l.ID
			}
		}

		if errors.Is(err, repo.ErrDuplicate) && attempt < issueAttempts {
			slog.Warn("token: collision on issue, retrying", "kind", kind, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, unavailable("store token", err)
		}

		return &Issued{
			ID:        id,
			Kind:      kind,
			ScopeID:   scopeID,
			Value:     value,
			IssuedAt:  now,
			ExpiresAt: expiresAt,
		}, nil
	}
}

// ---------------------------------------------------------------------------
// ValidateAndConsume
// ---------------------------------------------------------------------------

func (s *tokenService) ValidateAndConsume(ctx context.Context, kind Kind, value string, policy Policy) (*Validated, error) {
	var (
		v   *Validated
		err error
	)
	switch kind {
	case KindActivation:
		if policy.SingleUse && !policy.CheckOnly {
			v, err = s.consumeActivation(ctx, value)
		} else {
			v, err = s.inspectActivation(ctx, value)
		}
	case KindShare:
		switch {
		case policy.SingleUse:
			return nil, ErrUnsupportedPolicy
		case policy.CheckOnly:
			v, err = s.inspectShare(ctx, value)
		default:
			v, err = s.recordShareView(ctx, value)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	s.outcome.Add(ctx, resultLabel(err),
		attribute.String("kind", string(kind)),
		attribute.Bool("check_only", policy.CheckOnly),
	)
	return v, err
}

func (s *tokenService) consumeActivation(ctx context.Context, value string) (*Validated, error) {
	if value == "" {
		return nil, ErrNotFound
	}
	now := s.Now()
	digest := crypto.Hash(value)

	c, err := s.db.ActivationTokens.Consume(ctx, digest, now)
	if err == nil {
		return &Validated{ID: c.ID, Kind: KindActivation, ScopeID: c.ScopeID, At: now}, nil
	}
	if !repo.IsNotFound(err) {
		return nil, unavailable("consume activation token", err)
	}

	// The conditional update matched nothing; read the row to say why.
	t, err := s.db.ActivationTokens.GetByHash(ctx, digest)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load activation token", err)
	}
	if err := activationState(t, now); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: activation token changed during consume", ErrUnavailable)
}

func (s *tokenService) inspectActivation(ctx context.Context, value string) (*Validated, error) {
	if value == "" {
		return nil, ErrNotFound
	}
	now := s.Now()
	t, err := s.db.ActivationTokens.GetByHash(ctx, crypto.Hash(value))
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load activation token", err)
	}
	if err := activationState(t, now); err != nil {
		return nil, err
	}
	return &Validated{ID: t.ID, Kind: KindActivation, ScopeID: t.PatientID, At: now}, nil
}

// activationState reports why a token cannot be consumed at now. Expiry wins
// over use so an old link always reads as expired.
func activationState(t *repo.ActivationToken, now time.Time) error {
	switch {
	case now.After(t.ExpiresAt):
		return ErrExpired
	case t.Used:
		return ErrAlreadyUsed
	}
	return nil
}

func (s *tokenService) recordShareView(ctx context.Context, value string) (*Validated, error) {
	if value == "" {
		return nil, ErrNotFound
	}
	now := s.Now()

	view, err := s.db.ShareLinks.RecordView(ctx, value, now)
	if err == nil {
		return &Validated{
			ID:        view.LinkID,
			Kind:      KindShare,
			ScopeID:   view.ExamID,
			At:        view.ViewedAt,
			ViewCount: view.ViewCount,
		}, nil
	}
	if !repo.IsNotFound(err) {
		return nil, unavailable("record share view", err)
	}

	l, err := s.db.ShareLinks.GetByToken(ctx, value)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load share link", err)
	}
	if err := shareState(l, now); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: share link changed during view", ErrUnavailable)
}

func (s *tokenService) inspectShare(ctx context.Context, value string) (*Validated, error) {
	if value == "" {
		return nil, ErrNotFound
	}
	now := s.Now()
	l, err := s.db.ShareLinks.GetByToken(ctx, value)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load share link", err)
	}
	if err := shareState(l, now); err != nil {
		return nil, err
	}
	return &Validated{ID: l.ID, Kind: KindShare, ScopeID: l.ExamID, At: now, ViewCount: l.ViewCount}, nil
}

// shareState reports why a link does not resolve at now. Revocation wins.
func shareState(l *repo.ShareLink, now time.Time) error {
	switch {
	case l.RevokedAt != nil:
		return ErrRevoked
	case l.ExpiresAt != nil && now.After(*l.ExpiresAt):
		return ErrExpired
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrAlreadyUsed):
		return "already_used"
	case errors.Is(err, ErrRevoked):
		return "revoked"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}
	return "error"
}
