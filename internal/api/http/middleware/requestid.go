package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/pkg/reqctx"
)

const HeaderRequestID = "X-Request-Id"

// maxRequestIDLen bounds client-supplied ids before they reach the logs.
const maxRequestIDLen = 128

// RequestID keeps a sane incoming X-Request-Id or mints one, echoes it, and
// puts the request metadata on the context. The access log reads it back
// from the response header.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
			c.Request().Header.Set(HeaderRequestID, rid)
		}
		c.Set(HeaderRequestID, rid)

		c.SetContext(reqctx.WithMeta(c.Context(), reqctx.Meta{
			RequestID: rid,
			ClientIP:  c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
			Received:  time.Now(),
		}))
		return c.Next()
	}
}
