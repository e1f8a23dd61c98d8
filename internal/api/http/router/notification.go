package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
)

func (r *Router) registerNotificationRoutes(api fiber.Router, h handlers, g guards) {
	api.Get("/notifications/logs", g.session,
		r.can(authorize.ResourceNotificationLog, authorize.ActionList), h.notification.Logs)
}
