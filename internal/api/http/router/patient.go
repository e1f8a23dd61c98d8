package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
)

func (r *Router) registerPatientRoutes(api fiber.Router, h handlers, g guards) {
	patients := api.Group("/patients", g.session)
	patients.Post("/", r.can(authorize.ResourcePatient, authorize.ActionCreate), h.patient.Create)

	one := patients.Group("/:id")
	one.Get("/", r.can(authorize.ResourcePatient, authorize.ActionRead), h.patient.Get)

	// onboarding
	one.Post("/invite", r.can(authorize.ResourcePatientInvite, authorize.ActionCreate), h.activation.SendInvite)
	one.Post("/activate", r.can(authorize.ResourcePatientActivation, authorize.ActionCreate), h.activation.ActivateManually)

	// drafts; publishing lives under the content routes
	one.Post("/exams", r.can(authorize.ResourceExam, authorize.ActionCreate), h.content.CreateExam)
	one.Post("/recommendations", r.can(authorize.ResourceRecommendation, authorize.ActionCreate), h.content.CreateRecommendation)
}
