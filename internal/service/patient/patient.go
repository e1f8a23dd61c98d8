package patient

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/pkg/sms"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreatePatientRequest struct {
	Email       string
	DisplayName string
	Phone       *string // any format parseable in the default region
	OptInNews   bool
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreatePatientRequest) (*repo.Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	db     *repo.Client
	region string
}

// New takes the region used to read phone numbers without a country code.
func New(db *repo.Client, region string) Service {
	return &patientService{db: db, region: region}
}

func (s *patientService) Create(ctx context.Context, req CreatePatientRequest) (*repo.Patient, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil || addr.Name != "" {
		return nil, ErrInvalidEmail
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, ErrDisplayNameNeeded
	}

	var phone *string
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		e164, err := sms.Normalize(*req.Phone, s.region)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPhone, err)
		}
		phone = &e164
	}

	p, err := s.db.Patients.Create(ctx, repo.CreatePatient{
		Email:       addr.Address,
		DisplayName: name,
		Phone:       phone,
		OptInNews:   req.OptInNews,
	})
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *patientService) Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error) {
	p, err := s.db.Patients.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}
