package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/simorq_portal/internal/service/auth"
	pasetotoken "github.com/Alijeyrad/simorq_portal/pkg/paseto"
	"github.com/Alijeyrad/simorq_portal/pkg/reqctx"
)

// AuthRequired admits requests with a valid bearer access token whose
// session is still open. Claims land in Locals and on the request context.
func AuthRequired(sessions auth.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.ErrUnauthorized
		}

		claims, err := sessions.Authenticate(c.Context(), raw)
		switch {
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionNotFound):
			return fiber.ErrUnauthorized
		case err != nil:
			slog.ErrorContext(c.Context(), "auth: session check failed", "err", err)
			return fiber.ErrServiceUnavailable
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithCaller(c.Context(), claims))
		return c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, tok, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
