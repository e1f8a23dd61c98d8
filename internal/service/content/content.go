package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/service/notification"
	"github.com/Alijeyrad/simorq_portal/pkg/s3"
)

// MaxExamFileSize caps uploaded exam files.
const MaxExamFileSize = 25 << 20

// Storage keeps exam files. Keys follow exams/{patient_id}/{uuid}.{ext}.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ExamFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CreateExamRequest struct {
	PatientID uuid.UUID
	Title     string
	ExamDate  *time.Time
	File      ExamFile
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// Service creates drafts and publishes them. Publishing hands a notification
// event off and never waits for delivery.
type Service interface {
	CreateExam(ctx context.Context, req CreateExamRequest) (*repo.Exam, error)
	CreateRecommendation(ctx context.Context, patientID uuid.UUID, title, body string) (*repo.Recommendation, error)
	CreateNews(ctx context.Context, title, body string) (*repo.News, error)

	PublishExam(ctx context.Context, id uuid.UUID) (*repo.Exam, error)
	PublishRecommendation(ctx context.Context, id uuid.UUID) (*repo.Recommendation, error)
	PublishNews(ctx context.Context, id uuid.UUID) (*repo.News, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type contentService struct {
	db        *repo.Client
	storage   Storage
	publisher notification.Publisher
}

func New(db *repo.Client, storage Storage, publisher notification.Publisher) Service {
	return &contentService{db: db, storage: storage, publisher: publisher}
}

func (s *contentService) CreateExam(ctx context.Context, req CreateExamRequest) (*repo.Exam, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	if req.File.Body == nil || req.File.Size <= 0 {
		return nil, ErrFileRequired
	}
	if req.File.Size > MaxExamFileSize {
		return nil, ErrFileTooLarge
	}
	if err := s.ensurePatient(ctx, req.PatientID); err != nil {
		return nil, err
	}

	key := s3.ObjectKey("exams", req.PatientID, req.File.Name)
	mime := req.File.ContentType
	if mime == "" {
		mime = "application/octet-stream"
	}

	if err := s.storage.Upload(ctx, key, mime, req.File.Body, req.File.Size); err != nil {
		return nil, fmt.Errorf("upload exam file: %w", err)
	}

	e, err := s.db.Exams.Create(ctx, repo.CreateExam{
		PatientID: req.PatientID,
		Title:     req.Title,
		FileKey:   key,
		ExamDate:  req.ExamDate,
	})
	if err != nil {
		// Best-effort; an orphaned object is harmless.
		if derr := s.storage.Delete(context.WithoutCancel(ctx), key); derr != nil {
			slog.WarnContext(ctx, "content: remove orphaned exam file", "key", key, "err", derr)
		}
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return e, nil
}

func (s *contentService) CreateRecommendation(ctx context.Context, patientID uuid.UUID, title, body string) (*repo.Recommendation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := s.ensurePatient(ctx, patientID); err != nil {
		return nil, err
	}
	r, err := s.db.Recommendations.Create(ctx, patientID, title, body)
	if err != nil {
		return nil, fmt.Errorf("create recommendation: %w", err)
	}
	return r, nil
}

func (s *contentService) CreateNews(ctx context.Context, title, body string) (*repo.News, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	n, err := s.db.News.Create(ctx, title, body)
	if err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}
	return n, nil
}

func (s *contentService) PublishExam(ctx context.Context, id uuid.UUID) (*repo.Exam, error) {
	if err := s.publish(ctx, "exam", id, s.db.Exams.Publish); err != nil {
		return nil, err
	}
	e, err := s.db.Exams.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload exam: %w", err)
	}
	s.enqueue(ctx, notification.Event{Kind: notification.KindDocumentPublished, SubjectID: e.ID, PatientID: &e.PatientID})
	return e, nil
}

func (s *contentService) PublishRecommendation(ctx context.Context, id uuid.UUID) (*repo.Recommendation, error) {
	if err := s.publish(ctx, "recommendation", id, s.db.Recommendations.Publish); err != nil {
		return nil, err
	}
	r, err := s.db.Recommendations.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload recommendation: %w", err)
	}
	s.enqueue(ctx, notification.Event{Kind: notification.KindRecommendationPublished, SubjectID: r.ID, PatientID: &r.PatientID})
	return r, nil
}

func (s *contentService) PublishNews(ctx context.Context, id uuid.UUID) (*repo.News, error) {
	if err := s.publish(ctx, "news", id, s.db.News.Publish); err != nil {
		return nil, err
	}
	n, err := s.db.News.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload news: %w", err)
	}
	s.enqueue(ctx, notification.Event{Kind: notification.KindNewsPublished, SubjectID: n.ID})
	return n, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type publishFunc func(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

func (s *contentService) publish(ctx context.Context, label string, id uuid.UUID, fn publishFunc) error {
	ok, err := fn(ctx, id, repo.Now())
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("publish %s: %w", label, err)
	}
	if !ok {
		return ErrAlreadyPublished
	}
	slog.InfoContext(ctx, "content: published", "kind", label, "id", id)
	return nil
}

// enqueue hands the event off; the outcome is only logged by the publisher.
func (s *contentService) enqueue(ctx context.Context, ev notification.Event) {
	_ = s.publisher.Enqueue(ctx, ev)
}

func (s *contentService) ensurePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Patients.Get(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("load patient: %w", err)
	}
	return nil
}
