package authorize

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultPolicies is the baseline RBAC set for the portal.
func DefaultPolicies() []PermissionPolicy {
	staff := func(obj Resource, act Action) PermissionPolicy {
		return PermissionPolicy{RoleClinicStaff, DomainSys, obj, act, EffectAllow}
	}
	admin := func(obj Resource) PermissionPolicy {
		return PermissionPolicy{RoleClinicAdmin, DomainSys, obj, WildcardAction, EffectAllow}
	}

	return []PermissionPolicy{
		{RoleSysSuperAdmin, DomainSys, WildcardResource, WildcardAction, EffectAllow},

		admin(ResourcePatient),
		admin(ResourcePatientInvite),
		admin(ResourcePatientActivation),
		admin(ResourceExam),
		admin(ResourceExamShare),
		admin(ResourceRecommendation),
		admin(ResourceNews),
		admin(ResourceNotificationLog),
		admin(ResourceStaff),
		{RoleClinicAdmin, DomainSys, ResourceRBAC, ActionGrant, EffectAllow},

		staff(ResourcePatient, ActionCreate),
		staff(ResourcePatient, ActionRead),
		staff(ResourcePatientInvite, ActionCreate),
		staff(ResourcePatientActivation, ActionCreate),
		staff(ResourceExam, ActionCreate),
		staff(ResourceExam, ActionPublish),
		staff(ResourceExamShare, ActionCreate),
		staff(ResourceExamShare, ActionRead),
		staff(ResourceExamShare, ActionUpdate),
		staff(ResourceExamShare, ActionRevoke),
		staff(ResourceRecommendation, ActionCreate),
		staff(ResourceRecommendation, ActionPublish),
		staff(ResourceNews, ActionCreate),
		staff(ResourceNews, ActionPublish),
		staff(ResourceNotificationLog, ActionList),
	}
}

// SeedDefaultPolicies adds DefaultPolicies; existing rows are left untouched.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	policies := DefaultPolicies()

	added := 0
	for _, p := range policies {
		ok, err := auth.AddPermission(ctx, p)
		if err != nil {
			return fmt.Errorf("add policy %s %s %s: %w", p.Subject, p.Object, p.Action, err)
		}
		if ok {
			added++
		}
	}

	slog.Info("seeded default RBAC policies", "count", len(policies), "added", added)
	return nil
}

// AssignIdentityRole grants the Casbin role matching a stored identity role
// (staff, admin) in the sys domain. Patients are rejected.
func AssignIdentityRole(ctx context.Context, auth IAuthorization, identityID, identityRole string) error {
	role, ok := IdentityRoleToRBACRole[identityRole]
	if !ok {
		return fmt.Errorf("%w: no staff role for %q", ErrInvalidArgs, identityRole)
	}
	_, err := auth.GrantRole(ctx, GroupSubject(identityID), role, DomainSys)
	return err
}
