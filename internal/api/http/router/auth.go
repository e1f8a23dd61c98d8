package router

import "github.com/gofiber/fiber/v3"

func (r *Router) registerAuthRoutes(api fiber.Router, h handlers, g guards) {
	group := api.Group("/auth")
	group.Post("/login", g.public, h.auth.Login)
	group.Post("/refresh", h.auth.Refresh)
	group.Post("/logout", g.session, h.auth.Logout)
}
