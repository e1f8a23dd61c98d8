package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/service/notification"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// GET /notifications/logs?subject_id=&status=&limit=
func (h *NotificationHandler) Logs(c fiber.Ctx) error {
	var q struct {
		SubjectID string `query:"subject_id"`
		Status    string `query:"status"`
		Limit     int    `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	filter := repo.LogFilter{Limit: q.Limit}
	if q.SubjectID != "" {
		id, err := uuid.Parse(q.SubjectID)
		if err != nil {
			return badRequest(c, "invalid subject_id")
		}
		filter.SubjectID = &id
	}
	switch q.Status {
	case "", repo.NotificationStatusSent, repo.NotificationStatusFailed:
		filter.Status = q.Status
	default:
		return badRequest(c, "status must be sent or failed")
	}

	logs, err := h.svc.Logs(c.Context(), filter)
	if err != nil {
		slog.ErrorContext(c.Context(), "list notification logs failed", "err", err)
		return internalError(c)
	}

	return ok(c, logs)
}
