package repo

import (
	"time"

	"github.com/google/uuid"
)

// Column tags name the table column each field scans from.

type LoginIdentity struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Patient struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"display_name"`
	Phone           *string    `json:"phone"`
	LoginIdentityID *uuid.UUID `json:"login_identity_id"`
	ActivatedAt     *time.Time `json:"activated_at"`
	InviteSentAt    *time.Time `json:"invite_sent_at"`
	OptInNews       bool       `json:"opt_in_news"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsActivated reports whether the patient already has a login identity.
func (p *Patient) IsActivated() bool { return p.LoginIdentityID != nil }

// ActivationToken stores only the digest of the value handed to the patient.
type ActivationToken struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	TokenHash string     `json:"token_hash"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at"`
}

type ShareLink struct {
	ID           uuid.UUID  `json:"id"`
	ExamID       uuid.UUID  `json:"exam_id"`
	Token        string     `json:"token"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	RevokedAt    *time.Time `json:"revoked_at"`
	ViewCount    int        `json:"view_count"`
	LastViewedAt *time.Time `json:"last_viewed_at"`
}

// ActiveAt reports whether the link resolves at t.
func (l *ShareLink) ActiveAt(t time.Time) bool {
	if l.RevokedAt != nil {
		return false
	}
	return l.ExpiresAt == nil || !t.After(*l.ExpiresAt)
}

type Exam struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	Title       string     `json:"title"`
	FileKey     string     `json:"file_key"`
	ExamDate    *time.Time `json:"exam_date"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Recommendation struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type News struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// NotificationLog is one delivery attempt for one recipient on one channel.
type NotificationLog struct {
	ID           uuid.UUID `json:"id"`
	EventKind    string    `json:"event_kind"`
	SubjectID    uuid.UUID `json:"subject_id"`
	RecipientID  uuid.UUID `json:"recipient_id"`
	Channel      string    `json:"channel"`
	Destination  string    `json:"destination"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
