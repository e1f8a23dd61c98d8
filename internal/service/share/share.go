package share

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/service/token"
	"github.com/Alijeyrad/simorq_portal/pkg/observability"
)

// Signer hands out short-lived download URLs for stored objects.
type Signer interface {
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Link is a share link as staff see it. Value is the raw token.
type Link struct {
	ID           uuid.UUID
	ExamID       uuid.UUID
	Value        string
	URL          string
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	RevokedAt    *time.Time
	ViewCount    int
	LastViewedAt *time.Time
	Active       bool
}

// Resolved is what an anonymous visitor gets for a valid link.
type Resolved struct {
	URL       string
	ExpiresIn time.Duration
	Title     string
	ExamDate  *time.Time
	ViewCount int
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// GetOrCreateActive returns the newest active link or issues one.
	GetOrCreateActive(ctx context.Context, examID uuid.UUID) (*Link, error)
	// Rotate revokes every active link of the exam and issues a new one atomically.
	Rotate(ctx context.Context, examID uuid.UUID) (*Link, error)
	Resolve(ctx context.Context, value string) (*Resolved, error)
	// Revoke is idempotent.
	Revoke(ctx context.Context, linkID uuid.UUID) error
	List(ctx context.Context, examID uuid.UUID) ([]*Link, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type shareService struct {
	db      *repo.Client
	tokens  token.Service
	signer  Signer
	cfg     *config.Config
	outcome observability.Outcome
}

func New(db *repo.Client, tokens token.Service, signer Signer, cfg *config.Config) Service {
	return &shareService{
		db:      db,
		tokens:  tokens,
		signer:  signer,
		cfg:     cfg,
		outcome: observability.NewOutcome("portal_share_operations", "Share link operations by kind"),
	}
}

func (s *shareService) GetOrCreateActive(ctx context.Context, examID uuid.UUID) (*Link, error) {
	if err := s.ensureExam(ctx, examID); err != nil {
		return nil, err
	}

	now := s.tokens.Now()
	l, err := s.db.ShareLinks.ActiveForExam(ctx, examID, now)
	if err == nil {
		return s.toLink(l, now), nil
	}
	if !repo.IsNotFound(err) {
		return nil, unavailable("load active share link", err)
	}

	issued, err := s.tokens.Issue(ctx, token.KindShare, examID, s.defaultTTL())
	if err != nil {
		return nil, fmt.Errorf("issue share token: %w", err)
	}
	s.outcome.Add(ctx, "created")
	slog.InfoContext(ctx, "share: link created", "exam_id", examID, "link_id", issued.ID)
	return s.fromIssued(issued), nil
}

func (s *shareService) Rotate(ctx context.Context, examID uuid.UUID) (*Link, error) {
	if err := s.ensureExam(ctx, examID); err != nil {
		return nil, err
	}

	var (
		issued  *token.Issued
		revoked int64
	)
	err := s.db.WithTx(ctx, func(tx *repo.Client) error {
		tokens := s.tokens.WithTx(tx)
		var err error
		if revoked, err = tx.ShareLinks.RevokeActiveForExam(ctx, examID, tokens.Now()); err != nil {
			return unavailable("revoke share links", err)
		}
		issued, err = tokens.Issue(ctx, token.KindShare, examID, s.defaultTTL())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rotate share link: %w", err)
	}

	s.outcome.Add(ctx, "rotated")
	slog.InfoContext(ctx, "share: link rotated", "exam_id", examID, "link_id", issued.ID, "revoked", revoked)
	return s.fromIssued(issued), nil
}

// Resolve counts a view only once the visitor has a signed URL, so a failed
// attempt and its retry add one view between them.
func (s *shareService) Resolve(ctx context.Context, value string) (*Resolved, error) {
	ctx, span := observability.StartSpan(ctx, "share.Resolve")
	defer span.End()

	link, err := s.tokens.ValidateAndConsume(ctx, token.KindShare, value, token.Policy{CheckOnly: true})
	if err != nil {
		return nil, err
	}

	exam, err := s.db.Exams.Get(ctx, link.ScopeID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, token.ErrNotFound
		}
		return nil, unavailable("load exam", err)
	}

	ttl := s.signedURLTTL()
	url, err := s.signer.PresignDownload(ctx, exam.FileKey, ttl)
	if err != nil {
		s.outcome.Add(ctx, "sign_failed")
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	// Revoked or expired since the check: the row is left as it was.
	v, err := s.tokens.ValidateAndConsume(ctx, token.KindShare, value, token.DefaultPolicy(token.KindShare))
	if err != nil {
		return nil, err
	}

	return &Resolved{
		URL:       url,
		ExpiresIn: ttl,
		Title:     exam.Title,
		ExamDate:  exam.ExamDate,
		ViewCount: v.ViewCount,
	}, nil
}

func (s *shareService) Revoke(ctx context.Context, linkID uuid.UUID) error {
	changed, err := s.db.ShareLinks.Revoke(ctx, linkID, s.tokens.Now())
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrLinkNotFound
		}
		return unavailable("revoke share link", err)
	}
	if changed {
		s.outcome.Add(ctx, "revoked")
		slog.InfoContext(ctx, "share: link revoked", "link_id", linkID)
	}
	return nil
}

func (s *shareService) List(ctx context.Context, examID uuid.UUID) ([]*Link, error) {
	if err := s.ensureExam(ctx, examID); err != nil {
		return nil, err
	}
	rows, err := s.db.ShareLinks.ListForExam(ctx, examID)
	if err != nil {
		return nil, unavailable("list share links", err)
	}
	now := s.tokens.Now()
	out := make([]*Link, 0, len(rows))
	for _, l := range rows {
		out = append(out, s.toLink(l, now))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *shareService) ensureExam(ctx context.Context, examID uuid.UUID) error {
	if _, err := s.db.Exams.Get(ctx, examID); err != nil {
		if repo.IsNotFound(err) {
			return ErrExamNotFound
		}
		return unavailable("load exam", err)
	}
	return nil
}

// defaultTTL is nil when links should not expire.
func (s *shareService) defaultTTL() *time.Duration {
	if s.cfg.Share.DefaultTTLHours <= 0 {
		return nil
	}
	d := time.Duration(s.cfg.Share.DefaultTTLHours) * time.Hour
	return &d
}

func (s *shareService) signedURLTTL() time.Duration {
	if s.cfg.Share.SignedURLTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(s.cfg.Share.SignedURLTTLSeconds) * time.Second
}

func (s *shareService) toLink(l *repo.ShareLink, now time.Time) *Link {
	return &Link{
		ID:           l.ID,
		ExamID:       l.ExamID,
		Value:        l.Token,
		URL:          s.cfg.ShareURL(l.Token),
		CreatedAt:    l.CreatedAt,
		ExpiresAt:    l.ExpiresAt,
		RevokedAt:    l.RevokedAt,
		ViewCount:    l.ViewCount,
		LastViewedAt: l.LastViewedAt,
		Active:       l.ActiveAt(now),
	}
}

func (s *shareService) fromIssued(i *token.Issued) *Link {
	return &Link{
		ID:        i.ID,
		ExamID:    i.ScopeID,
		Value:     i.Value,
		URL:       s.cfg.ShareURL(i.Value),
		CreatedAt: i.IssuedAt,
		ExpiresAt: i.ExpiresAt,
		Active:    true,
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, token.ErrUnavailable, err)
}
