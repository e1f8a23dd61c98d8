package handler

import "github.com/gofiber/fiber/v3"

// Success bodies are {"data": ...}. Error bodies are {"error": code,
// "message": text}; clients branch on code, message is for humans.

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func accepted(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func errorCode(c fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": msg})
}

func badRequest(c fiber.Ctx, msg string) error {
	return errorCode(c, fiber.StatusBadRequest, "bad_request", msg)
}

func unauthorized(c fiber.Ctx) error {
	return errorCode(c, fiber.StatusUnauthorized, "unauthorized", "authentication required")
}

func notFound(c fiber.Ctx, msg string) error {
	return errorCode(c, fiber.StatusNotFound, "not_found", msg)
}

func conflict(c fiber.Ctx, code, msg string) error {
	return errorCode(c, fiber.StatusConflict, code, msg)
}

func gone(c fiber.Ctx, code, msg string) error {
	return errorCode(c, fiber.StatusGone, code, msg)
}

func tooManyRequests(c fiber.Ctx, msg string) error {
	return errorCode(c, fiber.StatusTooManyRequests, "too_many_requests", msg)
}

func internalError(c fiber.Ctx) error {
	return errorCode(c, fiber.StatusInternalServerError, "internal_server_error", "internal server error")
}

func serviceUnavailable(c fiber.Ctx) error {
	return errorCode(c, fiber.StatusServiceUnavailable, "unavailable", "temporarily unavailable, try again")
}
