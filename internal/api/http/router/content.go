package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
)

func (r *Router) registerContentRoutes(api fiber.Router, h handlers, g guards) {
	exam := api.Group("/exams/:id", g.session)
	exam.Post("/publish", r.can(authorize.ResourceExam, authorize.ActionPublish), h.content.PublishExam)
	exam.Get("/shares", r.can(authorize.ResourceExamShare, authorize.ActionRead), h.share.List)
	exam.Post("/share", r.can(authorize.ResourceExamShare, authorize.ActionCreate), h.share.GetOrCreate)
	exam.Post("/share/rotate", r.can(authorize.ResourceExamShare, authorize.ActionUpdate), h.share.Rotate)

	api.Delete("/shares/:id", g.session,
		r.can(authorize.ResourceExamShare, authorize.ActionRevoke), h.share.Revoke)

	api.Post("/recommendations/:id/publish", g.session,
		r.can(authorize.ResourceRecommendation, authorize.ActionPublish), h.content.PublishRecommendation)

	news := api.Group("/news", g.session)
	news.Post("/", r.can(authorize.ResourceNews, authorize.ActionCreate), h.content.CreateNews)
	news.Post("/:id/publish", r.can(authorize.ResourceNews, authorize.ActionPublish), h.content.PublishNews)
}
