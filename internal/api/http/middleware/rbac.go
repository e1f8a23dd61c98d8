package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
	"github.com/Alijeyrad/simorq_portal/pkg/reqctx"
)

// RequirePermission lets the request through when the caller's login holds
// act on res in the sys domain. Patient sessions never reach the enforcer.
func RequirePermission(enf authorize.IAuthorization, res authorize.Resource, act authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		caller := reqctx.CallerFrom(c.Context())
		if caller == nil {
			return fiber.ErrUnauthorized
		}
		if caller.GetRole() == authorize.IdentityRolePatient {
			return fiber.ErrForbidden
		}

		sub := authorize.GroupSubject(caller.GetUserID().String())
		err := enf.MustEnforce(c.Context(), sub, authorize.DomainSys, res, act)
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, authorize.ErrForbidden):
			return fiber.ErrForbidden
		default:
			return err
		}
	}
}
