package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/service/activation"
	"github.com/Alijeyrad/simorq_portal/internal/service/token"
)

type ActivationHandler struct {
	svc activation.Service
}

func NewActivationHandler(svc activation.Service) *ActivationHandler {
	return &ActivationHandler{svc: svc}
}

// GET /api/v1/public/activation?token=
func (h *ActivationHandler) Inspect(c fiber.Ctx) error {
	pending, err := h.svc.Inspect(c.Context(), c.Query("token"))
	if err != nil {
		return mapActivationError(c, err)
	}
	return ok(c, fiber.Map{
		"email":        pending.Email,
		"display_name": pending.DisplayName,
	})
}

// POST /api/v1/public/activation
func (h *ActivationHandler) Activate(c fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Activate(c.Context(), body.Token, body.Password)
	if err != nil {
		return mapActivationError(c, err)
	}
	return ok(c, fiber.Map{
		"patient_id":   res.PatientID,
		"activated_at": res.ActivatedAt,
	})
}

// POST /api/v1/patients/:id/invite
func (h *ActivationHandler) SendInvite(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	inv, err := h.svc.SendInvite(c.Context(), id)
	if err != nil {
		return mapActivationError(c, err)
	}
	return ok(c, fiber.Map{
		"patient_id": inv.PatientID,
		"sent_at":    inv.SentAt,
		"expires_at": inv.ExpiresAt,
	})
}

// POST /api/v1/patients/:id/activate
func (h *ActivationHandler) ActivateManually(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid patient id")
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.ActivateManually(c.Context(), id, body.Password)
	if err != nil {
		return mapActivationError(c, err)
	}
	return ok(c, fiber.Map{
		"patient_id":   res.PatientID,
		"identity_id":  res.IdentityID,
		"activated_at": res.ActivatedAt,
	})
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapActivationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, activation.ErrPasswordTooShort):
		return errorCode(c, fiber.StatusBadRequest, "password_too_short", err.Error())
	case errors.Is(err, token.ErrNotFound):
		return errorCode(c, fiber.StatusBadRequest, "invalid_token", "this activation link is not valid")
	case errors.Is(err, token.ErrExpired):
		return gone(c, "expired_token", "this activation link has expired, ask the clinic for a new one")
	case errors.Is(err, token.ErrAlreadyUsed):
		return conflict(c, "already_used", "this activation link was already used")
	case errors.Is(err, activation.ErrAlreadyActivated):
		return conflict(c, "already_activated", err.Error())
	case errors.Is(err, activation.ErrProvisioningFailed):
		slog.ErrorContext(c.Context(), "activation provisioning failed", "err", err)
		return errorCode(c, fiber.StatusBadGateway, "provisioning_failed", "could not create the login, try again later")
	case errors.Is(err, activation.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, activation.ErrInviteThrottled):
		return tooManyRequests(c, err.Error())
	case errors.Is(err, activation.ErrDeliveryFailed):
		return errorCode(c, fiber.StatusBadGateway, "delivery_failed", err.Error())
	case errors.Is(err, token.ErrUnavailable):
		slog.WarnContext(c.Context(), "activation store unavailable", "err", err)
		return serviceUnavailable(c)
	default:
		slog.ErrorContext(c.Context(), "activation request failed", "err", err)
		return internalError(c)
	}
}
