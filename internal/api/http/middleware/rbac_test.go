package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/simorq_portal/pkg/paseto"
	"github.com/Alijeyrad/simorq_portal/pkg/reqctx"
)

type stubEnforcer struct {
	authorize.IAuthorization
	allow bool
	calls int
}

func (s *stubEnforcer) MustEnforce(context.Context, authorize.GroupSubject, authorize.Domain, authorize.Resource, authorize.Action) error {
	s.calls++
	if !s.allow {
		return authorize.ErrForbidden
	}
	return nil
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name     string
		role     string // empty: no caller
		allow    bool
		status   int
		enforced bool
	}{
		{"anonymous", "", true, fiber.StatusUnauthorized, false},
		{"patient", authorize.IdentityRolePatient, true, fiber.StatusForbidden, false},
		{"staff denied", authorize.IdentityRoleStaff, false, fiber.StatusForbidden, true},
		{"staff allowed", authorize.IdentityRoleStaff, true, fiber.StatusNoContent, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enf := &stubEnforcer{allow: tt.allow}
			app := fiber.New()
			app.Use(func(c fiber.Ctx) error {
				if tt.role != "" {
					claims := &pasetotoken.Claims{UserID: uuid.New(), Role: tt.role}
					c.SetContext(reqctx.WithCaller(c.Context(), claims))
				}
				return c.Next()
			})
			app.Get("/exams", RequirePermission(enf, authorize.ResourceExam, authorize.ActionRead),
				func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/exams", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.enforced, enf.calls == 1)
		})
	}
}
