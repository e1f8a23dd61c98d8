package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/simorq_portal/internal/service/share"
	"github.com/Alijeyrad/simorq_portal/internal/service/token"
)

type ShareHandler struct {
	svc share.Service
}

func NewShareHandler(svc share.Service) *ShareHandler {
	return &ShareHandler{svc: svc}
}

// GET /api/v1/public/shares/:token
func (h *ShareHandler) Resolve(c fiber.Ctx) error {
	res, err := h.svc.Resolve(c.Context(), c.Params("token"))
	if err != nil {
		return mapShareError(c, err)
	}

	return ok(c, fiber.Map{
		"url":        res.URL,
		"expires_in": int64(res.ExpiresIn.Seconds()),
		"exam": fiber.Map{
			"title":     res.Title,
			"exam_date": res.ExamDate,
		},
	})
}

// POST /api/v1/exams/:id/share
func (h *ShareHandler) GetOrCreate(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid exam id")
	}

	link, err := h.svc.GetOrCreateActive(c.Context(), id)
	if err != nil {
		return mapShareError(c, err)
	}
	return ok(c, linkResponse(link))
}

// POST /api/v1/exams/:id/share/rotate
func (h *ShareHandler) Rotate(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid exam id")
	}

	link, err := h.svc.Rotate(c.Context(), id)
	if err != nil {
		return mapShareError(c, err)
	}
	return created(c, linkResponse(link))
}

// GET /api/v1/exams/:id/shares
func (h *ShareHandler) List(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid exam id")
	}

	links, err := h.svc.List(c.Context(), id)
	if err != nil {
		return mapShareError(c, err)
	}
	return ok(c, lo.Map(links, func(l *share.Link, _ int) fiber.Map { return linkResponse(l) }))
}

// DELETE /api/v1/shares/:id
func (h *ShareHandler) Revoke(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid share id")
	}

	if err := h.svc.Revoke(c.Context(), id); err != nil {
		return mapShareError(c, err)
	}
	return noContent(c)
}

func linkResponse(l *share.Link) fiber.Map {
	return fiber.Map{
		"id":             l.ID,
		"exam_id":        l.ExamID,
		"share_url":      l.URL,
		"active":         l.Active,
		"view_count":     l.ViewCount,
		"last_viewed_at": l.LastViewedAt,
		"expires_at":     l.ExpiresAt,
		"revoked_at":     l.RevokedAt,
		"created_at":     l.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapShareError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, token.ErrNotFound):
		return errorCode(c, fiber.StatusNotFound, "not_found", "this link does not exist")
	case errors.Is(err, token.ErrExpired):
		return gone(c, "expired", "this link has expired")
	case errors.Is(err, token.ErrRevoked):
		return gone(c, "revoked", "this link was revoked")
	case errors.Is(err, share.ErrExamNotFound), errors.Is(err, share.ErrLinkNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, token.ErrUnavailable):
		slog.WarnContext(c.Context(), "share store unavailable", "err", err)
		return serviceUnavailable(c)
	case errors.Is(err, share.ErrStorageUnavailable):
		slog.WarnContext(c.Context(), "share: document signing failed", "err", err)
		return errorCode(c, fiber.StatusServiceUnavailable, "storage_unavailable", "the document is temporarily unavailable, try again")
	default:
		slog.ErrorContext(c.Context(), "share request failed", "err", err)
		return internalError(c)
	}
}
