package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/service/identity"
	"github.com/Alijeyrad/simorq_portal/internal/service/token"
	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
	"github.com/Alijeyrad/simorq_portal/pkg/email"
	"github.com/Alijeyrad/simorq_portal/pkg/observability"
)

// redisKeyInviteCooldown holds a marker while a fresh invite for the patient is in flight.
func redisKeyInviteCooldown(patientID uuid.UUID) string {
	return "invite:cooldown:" + patientID.String()
}

// IdentityProvider is the part of the login store activation needs.
type IdentityProvider interface {
	Create(ctx context.Context, email, password, role string) (uuid.UUID, error)
	FindByEmail(ctx context.Context, email string) (*repo.LoginIdentity, error)
	UpdateCredential(ctx context.Context, id uuid.UUID, password string) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Invite struct {
	PatientID uuid.UUID
	SentAt    time.Time
	ExpiresAt time.Time
}

type Activated struct {
	PatientID  uuid.UUID
	IdentityID uuid.UUID
	// Reused is true when the email already had a login and its password was replaced.
	Reused      bool
	ActivatedAt time.Time
}

// Pending describes a still-usable activation link.
type Pending struct {
	PatientID   uuid.UUID
	Email       string
	DisplayName string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	SendInvite(ctx context.Context, patientID uuid.UUID) (*Invite, error)
	Activate(ctx context.Context, value, password string) (*Activated, error)
	// ActivateManually lets staff set the password without an invite.
	ActivateManually(ctx context.Context, patientID uuid.UUID, password string) (*Activated, error)
	// Inspect checks a link without consuming it.
	Inspect(ctx context.Context, value string) (*Pending, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type activationService struct {
	db         *repo.Client
	rdb        *redis.Client
	tokens     token.Service
	identities IdentityProvider
	mail       email.Sender
	cfg        *config.Config
	outcome    observability.Outcome
}

func New(
	db *repo.Client,
	rdb *redis.Client,
	tokens token.Service,
	identities IdentityProvider,
	mail email.Sender,
	cfg *config.Config,
) Service {
	return &activationService{
		db:         db,
		rdb:        rdb,
		tokens:     tokens,
		identities: identities,
		mail:       mail,
		cfg:        cfg,
		outcome:    observability.NewOutcome("portal_activations", "Patient activations by path and result"),
	}
}

// ---------------------------------------------------------------------------
// SendInvite
// ---------------------------------------------------------------------------

func (s *activationService) SendInvite(ctx context.Context, patientID uuid.UUID) (*Invite, error) {
	p, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.IsActivated() {
		return nil, ErrAlreadyActivated
	}

	key := redisKeyInviteCooldown(p.ID)
	if cd := s.cooldown(); cd > 0 {
		ok, err := s.rdb.SetNX(ctx, key, "1", cd).Result()
		if err != nil {
			return nil, fmt.Errorf("reserve invite cooldown: %w", err)
		}
		if !ok {
			return nil, ErrInviteThrottled
		}
	}

	ttl := time.Duration(s.cfg.Activation.TTLHours) * time.Hour
	issued, err := s.tokens.Issue(ctx, token.KindActivation, p.ID, &ttl)
	if err != nil {
		s.releaseCooldown(ctx, key)
		return nil, fmt.Errorf("issue activation token: %w", err)
	}

	msg := email.BuildInviteEmail(email.InviteEmailData{
		Name:          p.DisplayName,
		Email:         p.Email,
		ActivationURL: s.cfg.ActivationURL(issued.Value),
		ExpiresHours:  s.cfg.Activation.TTLHours,
		AppName:       s.cfg.Email.AppName,
	})
	if err := s.mail.Send(ctx, msg); err != nil {
		s.releaseCooldown(ctx, key)
		slog.WarnContext(ctx, "activation: invite email failed", "patient_id", p.ID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	if err := s.db.Patients.MarkInviteSent(ctx, p.ID, issued.IssuedAt); err != nil {
		// The patient already has the email; only the bookkeeping is missing.
		slog.ErrorContext(ctx, "activation: mark invite sent", "patient_id", p.ID, "err", err)
	}

	slog.InfoContext(ctx, "activation: invite sent", "patient_id", p.ID, "token_id", issued.ID)
	return &Invite{PatientID: p.ID, SentAt: issued.IssuedAt, ExpiresAt: *issued.ExpiresAt}, nil
}

func (s *activationService) cooldown() time.Duration {
	return time.Duration(s.cfg.Activation.InviteCooldownSeconds) * time.Second
}

func (s *activationService) releaseCooldown(ctx context.Context, key string) {
	if s.cooldown() <= 0 {
		return
	}
	if err := s.rdb.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
		slog.WarnContext(ctx, "activation: release invite cooldown", "err", err)
	}
}

// ---------------------------------------------------------------------------
// Activate
// ---------------------------------------------------------------------------

func (s *activationService) Activate(ctx context.Context, value, password string) (*Activated, error) {
	ctx, span := observability.StartSpan(ctx, "activation.Activate")
	defer span.End()

	// Checked first so a rejected password never burns the link.
	if err := s.checkPassword(password); err != nil {
		return nil, err
	}

	v, err := s.tokens.ValidateAndConsume(ctx, token.KindActivation, value, token.DefaultPolicy(token.KindActivation))
	if err != nil {
		s.count(ctx, "token", err)
		return nil, err
	}

	res, err := s.provisionAndLink(ctx, v.ScopeID, password)
	s.count(ctx, "token", err)
	return res, err
}

func (s *activationService) ActivateManually(ctx context.Context, patientID uuid.UUID, password string) (*Activated, error) {
	if err := s.checkPassword(password); err != nil {
		return nil, err
	}
	res, err := s.provisionAndLink(ctx, patientID, password)
	s.count(ctx, "manual", err)
	return res, err
}

func (s *activationService) provisionAndLink(ctx context.Context, patientID uuid.UUID, password string) (*Activated, error) {
	p, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.IsActivated() {
		return nil, ErrAlreadyActivated
	}

	identityID, reused, err := s.provision(ctx, p.Email, password)
	if err != nil {
		slog.ErrorContext(ctx, "activation: provision identity", "patient_id", p.ID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrProvisioningFailed, err)
	}

	now := s.tokens.Now()
	linked, err := s.db.Patients.LinkIdentity(ctx, p.ID, identityID, now)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// The login already belongs to another patient record with this email.
			slog.WarnContext(ctx, "activation: identity linked elsewhere", "patient_id", p.ID, "identity_id", identityID)
			return nil, fmt.Errorf("%w: %w", ErrProvisioningFailed, err)
		}
		return nil, fmt.Errorf("%w: link identity: %w", token.ErrUnavailable, err)
	}
	if !linked {
		// Another activation linked first. The identity stays; it may already
		// be the linked one, and otherwise it is left for manual cleanup.
		slog.WarnContext(ctx, "activation: lost link race",
			"patient_id", p.ID,
			"identity_id", identityID,
		)
		return nil, ErrAlreadyActivated
	}

	slog.InfoContext(ctx, "activation: patient activated",
		"patient_id", p.ID,
		"identity_id", identityID,
		"reused_identity", reused,
	)
	return &Activated{PatientID: p.ID, IdentityID: identityID, Reused: reused, ActivatedAt: now}, nil
}

// provision creates a patient login for email, or takes over the existing one.
func (s *activationService) provision(ctx context.Context, email, password string) (uuid.UUID, bool, error) {
	id, err := s.identities.Create(ctx, email, password, authorize.IdentityRolePatient)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, identity.ErrIdentityExists) {
		return uuid.Nil, false, err
	}

	existing, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find existing identity: %w", err)
	}
	if err := s.identities.UpdateCredential(ctx, existing.ID, password); err != nil {
		return uuid.Nil, false, fmt.Errorf("update existing credential: %w", err)
	}
	return existing.ID, true, nil
}

// ---------------------------------------------------------------------------
// Inspect
// ---------------------------------------------------------------------------

func (s *activationService) Inspect(ctx context.Context, value string) (*Pending, error) {
	v, err := s.tokens.ValidateAndConsume(ctx, token.KindActivation, value, token.Policy{CheckOnly: true})
	if err != nil {
		return nil, err
	}
	p, err := s.loadPatient(ctx, v.ScopeID)
	if err != nil {
		return nil, err
	}
	if p.IsActivated() {
		return nil, ErrAlreadyActivated
	}
	return &Pending{PatientID: p.ID, Email: p.Email, DisplayName: p.DisplayName}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *activationService) loadPatient(ctx context.Context, id uuid.UUID) (*repo.Patient, error) {
	p, err := s.db.Patients.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("%w: load patient: %w", token.ErrUnavailable, err)
	}
	return p, nil
}

func (s *activationService) checkPassword(password string) error {
	min := s.cfg.Activation.MinPasswordLength
	if min <= 0 {
		min = config.DefaultMinPasswordLength
	}
	if utf8.RuneCountInString(password) < min {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *activationService) count(ctx context.Context, path string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyActivated):
		result = "already_activated"
	case errors.Is(err, ErrProvisioningFailed):
		result = "provisioning_failed"
	case errors.Is(err, token.ErrExpired):
		result = "expired"
	case errors.Is(err, token.ErrAlreadyUsed):
		result = "already_used"
	case errors.Is(err, token.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	s.outcome.Add(ctx, result, attribute.String("path", path))
}
