package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/service/activation"
	"github.com/Alijeyrad/simorq_portal/internal/service/patient"
)

type PatientHandler struct {
	svc         patient.Service
	activations activation.Service
}

func NewPatientHandler(svc patient.Service, activations activation.Service) *PatientHandler {
	return &PatientHandler{svc: svc, activations: activations}
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrInvalidEmail),
		errors.Is(err, patient.ErrInvalidPhone),
		errors.Is(err, patient.ErrDisplayNameNeeded):
		return badRequest(c, err.Error())
	default:
		slog.ErrorContext(c.Context(), "patient request failed", "err", err)
		return internalError(c)
	}
}

// POST /patients
func (h *PatientHandler) Create(c fiber.Ctx) error {
	var body struct {
		Email       string  `json:"email"`
		DisplayName string  `json:"display_name"`
		Phone       *string `json:"phone"`
		OptInNews   bool    `json:"opt_in_news"`
		SendInvite  bool    `json:"send_invite"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Create(c.Context(), patient.CreatePatientRequest{
		Email:       body.Email,
		DisplayName: body.DisplayName,
		Phone:       body.Phone,
		OptInNews:   body.OptInNews,
	})
	if err != nil {
		return mapPatientError(c, err)
	}

	resp := fiber.Map{"patient": patientResponse(p), "invite_sent": false}
	if body.SendInvite {
		// The patient exists either way; a failed invite can be resent.
		inv, err := h.activations.SendInvite(c.Context(), p.ID)
		if err != nil {
			slog.WarnContext(c.Context(), "invite after patient create failed",
				"patient_id", p.ID, "err", err)
			resp["invite_error"] = err.Error()
		} else {
			resp["invite_sent"] = true
			resp["invite_expires_at"] = inv.ExpiresAt
		}
	}

	return created(c, resp)
}

// GET /patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	p, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapPatientError(c, err)
	}

	return ok(c, patientResponse(p))
}

func patientResponse(p *repo.Patient) fiber.Map {
	return fiber.Map{
		"id":             p.ID,
		"email":          p.Email,
		"display_name":   p.DisplayName,
		"phone":          p.Phone,
		"activated":      p.IsActivated(),
		"activated_at":   p.ActivatedAt,
		"invite_sent_at": p.InviteSentAt,
		"opt_in_news":    p.OptInNews,
		"created_at":     p.CreatedAt,
	}
}
