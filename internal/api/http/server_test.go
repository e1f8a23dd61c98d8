package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerShape(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/boom", func(fiber.Ctx) error { return errors.New("db exploded") })
	app.Get("/gone", func(fiber.Ctx) error { return fiber.NewError(fiber.StatusGone, "link expired") })

	tests := []struct {
		path   string
		status int
		code   string
		msg    string
	}{
		{"/missing", fiber.StatusNotFound, "not_found", ""},
		{"/boom", fiber.StatusInternalServerError, "internal_server_error", "internal server error"},
		{"/gone", fiber.StatusGone, "gone", "link expired"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["message"])
			}
			// internal details never leak
			assert.NotContains(t, body["message"], "db exploded")
		})
	}
}
