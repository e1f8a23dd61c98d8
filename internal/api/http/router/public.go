package router

import "github.com/gofiber/fiber/v3"

// Unauthenticated token endpoints: holding the token is the credential.
func (r *Router) registerPublicRoutes(api fiber.Router, h handlers, g guards) {
	public := api.Group("/public", g.public)

	public.Get("/activation", h.activation.Inspect)
	public.Post("/activation", h.activation.Activate)

	public.Get("/shares/:token", h.share.Resolve)
}
