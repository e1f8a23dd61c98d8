package authorize

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditedAuthorizationLogsDecisions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	auth := NewAuditedAuthorization(newSeededAuth(t, false), logger)
	sub := GroupSubject(uuid.NewString())

	ok, err := auth.Enforce(context.Background(), sub, DomainSys, ResourceNews, ActionPublish)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Contains(t, buf.String(), `"msg":"authz_decision"`)
	assert.Contains(t, buf.String(), `"allowed":false`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestAuditedAuthorizationLogsRoleChanges(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	auth := NewAuditedAuthorization(newSeededAuth(t, false), logger)
	sub := GroupSubject(uuid.NewString())

	changed, err := auth.GrantRole(context.Background(), sub, RoleClinicStaff, DomainSys)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, auth.MustEnforce(context.Background(), sub, DomainSys, ResourceExam, ActionPublish))

	out := buf.String()
	assert.Contains(t, out, `"msg":"authz_policy_change"`)
	assert.Contains(t, out, `"operation":"grant_role"`)
	assert.Contains(t, out, `"component":"authz"`)
}
