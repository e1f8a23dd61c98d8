package authorize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEnforcer builds an enforcer on the built-in model and an empty policy file.
func newTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	policyPath := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(policyPath, nil, 0o644))

	m, err := LoadModel("")
	require.NoError(t, err)

	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(policyPath))
	require.NoError(t, err)

	e.EnableAutoSave(false)
	e.EnableEnforce(true)
	return e
}

func newSeededAuth(t *testing.T, bypass bool) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(newTestEnforcer(t), bypass)
	require.NoError(t, err)
	require.NoError(t, SeedDefaultPolicies(context.Background(), auth))
	return auth
}

func TestNewAuthorizationNil(t *testing.T) {
	_, err := NewAuthorization(nil, true)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestStaffPermissions(t *testing.T) {
	ctx := context.Background()
	auth := newSeededAuth(t, true)

	staffID := GroupSubject(uuid.NewString())
	require.NoError(t, AssignIdentityRole(ctx, auth, string(staffID), IdentityRoleStaff))

	tests := []struct {
		obj  Resource
		act  Action
		want bool
	}{
		{ResourceExamShare, ActionCreate, true},
		{ResourceExamShare, ActionRevoke, true},
		{ResourceExam, ActionPublish, true},
		{ResourcePatientInvite, ActionCreate, true},
		{ResourceNotificationLog, ActionList, true},
		{ResourceStaff, ActionCreate, false},
		{ResourcePatient, ActionDelete, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.obj)+":"+string(tt.act), func(t *testing.T) {
			ok, err := auth.Enforce(ctx, staffID, DomainSys, tt.obj, tt.act)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestAdminAndSuperAdmin(t *testing.T) {
	ctx := context.Background()
	auth := newSeededAuth(t, true)

	adminID := GroupSubject(uuid.NewString())
	require.NoError(t, AssignIdentityRole(ctx, auth, string(adminID), IdentityRoleAdmin))
	assert.NoError(t, auth.MustEnforce(ctx, adminID, DomainSys, ResourceStaff, ActionCreate))
	assert.NoError(t, auth.MustEnforce(ctx, adminID, DomainSys, ResourceRBAC, ActionGrant))

	rootID := GroupSubject(uuid.NewString())
	_, err := auth.GrantRole(ctx, rootID, RoleSysSuperAdmin, DomainSys)
	require.NoError(t, err)
	assert.NoError(t, auth.MustEnforce(ctx, rootID, DomainSys, ResourcePatient, ActionDelete))

	stranger := GroupSubject(uuid.NewString())
	assert.ErrorIs(t, auth.MustEnforce(ctx, stranger, DomainSys, ResourceExam, ActionRead), ErrForbidden)
}

func TestSuperAdminBypass(t *testing.T) {
	ctx := context.Background()

	for _, bypass := range []bool{true, false} {
		t.Run(map[bool]string{true: "enabled", false: "disabled"}[bypass], func(t *testing.T) {
			// no seeded policies: only the bypass can allow
			auth, err := NewAuthorization(newTestEnforcer(t), bypass)
			require.NoError(t, err)

			rootID := GroupSubject(uuid.NewString())
			_, err = auth.GrantRole(ctx, rootID, RoleSysSuperAdmin, DomainSys)
			require.NoError(t, err)

			ok, err := auth.Enforce(ctx, rootID, DomainSys, ResourceRBAC, ActionGrant)
			require.NoError(t, err)
			assert.Equal(t, bypass, ok)
		})
	}
}

func TestEnforceRejectsUnknownArguments(t *testing.T) {
	ctx := context.Background()
	auth := newSeededAuth(t, false)
	sub := GroupSubject(uuid.NewString())

	_, err := auth.Enforce(ctx, sub, "clinic:1", ResourceExam, ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = auth.Enforce(ctx, sub, DomainSys, "invoice", ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = auth.Enforce(ctx, "", DomainSys, ResourceExam, ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestAssignIdentityRoleRejectsPatients(t *testing.T) {
	auth := newSeededAuth(t, false)
	err := AssignIdentityRole(context.Background(), auth, uuid.NewString(), IdentityRolePatient)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestRoleRoundTrip(t *testing.T) {
	ctx := context.Background()
	auth := newSeededAuth(t, false)
	sub := GroupSubject(uuid.NewString())

	_, err := auth.GrantRole(ctx, sub, RoleClinicStaff, DomainSys)
	require.NoError(t, err)

	roles, err := auth.RolesOf(ctx, sub, DomainSys)
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleClinicStaff}, roles)

	removed, err := auth.RevokeRole(ctx, sub, RoleClinicStaff, DomainSys)
	require.NoError(t, err)
	assert.True(t, removed)
}
