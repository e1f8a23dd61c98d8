package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/internal/service/activation"
	"github.com/Alijeyrad/simorq_portal/internal/service/share"
	"github.com/Alijeyrad/simorq_portal/internal/service/token"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeActivation struct {
	activation.Service
	activateErr error
	inspectErr  error
}

func (f *fakeActivation) Activate(_ context.Context, value, password string) (*activation.Activated, error) {
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	return &activation.Activated{PatientID: uuid.New(), IdentityID: uuid.New(), ActivatedAt: time.Now()}, nil
}

func (f *fakeActivation) Inspect(_ context.Context, value string) (*activation.Pending, error) {
	if f.inspectErr != nil {
		return nil, f.inspectErr
	}
	return &activation.Pending{PatientID: uuid.New(), Email: "ana@example.com", DisplayName: "Ana"}, nil
}

type fakeShare struct {
	share.Service
	resolveErr error
	revoked    uuid.UUID
}

func (f *fakeShare) Resolve(_ context.Context, value string) (*share.Resolved, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &share.Resolved{URL: "https://files.example.com/signed", ExpiresIn: time.Hour, Title: "Blood panel", ViewCount: 3}, nil
}

func (f *fakeShare) Revoke(_ context.Context, id uuid.UUID) error {
	f.revoked = id
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func activationApp(svc activation.Service) *fiber.App {
	app := fiber.New()
	h := NewActivationHandler(svc)
	app.Get("/activation", h.Inspect)
	app.Post("/activation", h.Activate)
	return app
}

func shareApp(svc share.Service) *fiber.App {
	app := fiber.New()
	h := NewShareHandler(svc)
	app.Get("/shares/:token", h.Resolve)
	app.Delete("/shares/:id", h.Revoke)
	return app
}

// ---------------------------------------------------------------------------
// Activation
// ---------------------------------------------------------------------------

func TestActivate_Success(t *testing.T) {
	app := activationApp(&fakeActivation{})

	status, body := doJSON(t, app, "POST", "/activation", `{"token":"abc","password":"secret1"}`)

	assert.Equal(t, fiber.StatusOK, status)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["patient_id"])
}

func TestActivate_ErrorCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{token.ErrNotFound, fiber.StatusBadRequest, "invalid_token"},
		{token.ErrExpired, fiber.StatusGone, "expired_token"},
		{token.ErrAlreadyUsed, fiber.StatusConflict, "already_used"},
		{activation.ErrAlreadyActivated, fiber.StatusConflict, "already_activated"},
		{activation.ErrPasswordTooShort, fiber.StatusBadRequest, "password_too_short"},
		{fmt.Errorf("create identity: %w", activation.ErrProvisioningFailed), fiber.StatusBadGateway, "provisioning_failed"},
		{fmt.Errorf("load token: %w", token.ErrUnavailable), fiber.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			app := activationApp(&fakeActivation{activateErr: tt.err})

			status, body := doJSON(t, app, "POST", "/activation", `{"token":"abc","password":"secret1"}`)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestActivate_BadBody(t *testing.T) {
	app := activationApp(&fakeActivation{})

	status, _ := doJSON(t, app, "POST", "/activation", `{not json`)

	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestInspect(t *testing.T) {
	app := activationApp(&fakeActivation{})
	status, body := doJSON(t, app, "GET", "/activation?token=abc", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ana@example.com", body["data"].(map[string]any)["email"])

	app = activationApp(&fakeActivation{inspectErr: token.ErrExpired})
	status, body = doJSON(t, app, "GET", "/activation?token=abc", "")
	assert.Equal(t, fiber.StatusGone, status)
	assert.Equal(t, "expired_token", body["error"])
}

// ---------------------------------------------------------------------------
// Share
// ---------------------------------------------------------------------------

func TestResolveShare_Success(t *testing.T) {
	app := shareApp(&fakeShare{})

	status, body := doJSON(t, app, "GET", "/shares/tok", "")

	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "https://files.example.com/signed", data["url"])
	assert.EqualValues(t, 3600, data["expires_in"])
	assert.Equal(t, "Blood panel", data["exam"].(map[string]any)["title"])
}

func TestResolveShare_ErrorCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{token.ErrNotFound, fiber.StatusNotFound, "not_found"},
		{token.ErrExpired, fiber.StatusGone, "expired"},
		{token.ErrRevoked, fiber.StatusGone, "revoked"},
		{token.ErrUnavailable, fiber.StatusServiceUnavailable, "unavailable"},
		{share.ErrStorageUnavailable, fiber.StatusServiceUnavailable, "storage_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			app := shareApp(&fakeShare{resolveErr: tt.err})

			status, body := doJSON(t, app, "GET", "/shares/tok", "")

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["error"])
		})
	}
}

func TestRevokeShare(t *testing.T) {
	svc := &fakeShare{}
	app := shareApp(svc)
	id := uuid.New()

	status, _ := doJSON(t, app, "DELETE", "/shares/"+id.String(), "")
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, id, svc.revoked)

	status, _ = doJSON(t, app, "DELETE", "/shares/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
