package authorize

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Lifecycle actions
	ActionPublish Action = "publish"
	ActionRevoke  Action = "revoke"

	// RBAC-specific actions
	ActionGrant Action = "grant"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionPublish: {}, ActionRevoke: {},
	ActionGrant: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Patient records and their onboarding
	ResourcePatient           Resource = "patient"
	ResourcePatientInvite     Resource = "patient_invite"
	ResourcePatientActivation Resource = "patient_activation"

	// Published content
	ResourceExam           Resource = "exam"
	ResourceExamShare      Resource = "exam_share"
	ResourceRecommendation Resource = "recommendation"
	ResourceNews           Resource = "news"

	ResourceNotificationLog Resource = "notification_log"

	// Platform
	ResourceStaff Resource = "staff"
	ResourceRBAC  Resource = "rbac"
)

var KnownResources = map[Resource]struct{}{
	ResourcePatient: {}, ResourcePatientInvite: {}, ResourcePatientActivation: {},
	ResourceExam: {}, ResourceExamShare: {}, ResourceRecommendation: {}, ResourceNews: {},
	ResourceNotificationLog: {},
	ResourceStaff:           {}, ResourceRBAC: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// These are the "policy subjects" we assign to login identities via grouping policies.

const (
	WildcardRole Role = "*"

	RoleSysSuperAdmin Role = "role:sys:superadmin"
	RoleClinicAdmin   Role = "role:clinic:admin"
	RoleClinicStaff   Role = "role:clinic:staff"
)

var KnownRoles = map[Role]struct{}{
	RoleSysSuperAdmin: {},
	RoleClinicAdmin:   {},
	RoleClinicStaff:   {},
}

// Login identity role strings (login_identities.role column)
const (
	IdentityRolePatient = "patient"
	IdentityRoleStaff   = "staff"
	IdentityRoleAdmin   = "admin"
)

// IdentityRoleToRBACRole maps stored identity roles to Casbin roles.
// Patients hold no staff role and are never granted one.
var IdentityRoleToRBACRole = map[string]Role{
	IdentityRoleStaff: RoleClinicStaff,
	IdentityRoleAdmin: RoleClinicAdmin,
}

// ----------------------------
// Domains
// ----------------------------

// The portal serves a single clinic, so every staff rule lives in sys.
const (
	DomainSys      Domain = "sys"
	WildcardDomain Domain = "*"
)

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	return d == DomainSys || d == WildcardDomain
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is the g.sub in Casbin: a login identity id.
type GroupSubject string

// PermissionPolicy is one p row.
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}

func (p PermissionPolicy) row() []any {
	return []any{string(p.Subject), string(p.Domain), string(p.Object), string(p.Action), string(p.Effect)}
}
