package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// IAuthorization is the staff RBAC surface used by middleware and the
// maintenance commands.
type IAuthorization interface {
	// Enforce reports whether subject may perform action on object in domain.
	Enforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error)
	// MustEnforce is Enforce that turns a denial into ErrForbidden.
	MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error

	GrantRole(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error)
	RevokeRole(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error)
	RolesOf(ctx context.Context, subject GroupSubject, domain Domain) ([]Role, error)

	AddPermission(ctx context.Context, p PermissionPolicy) (bool, error)
	RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error)
}

// Authorization enforces against a casbin DistributedEnforcer.
type Authorization struct {
	enforcer *casbin.DistributedEnforcer
	// bypass is the role that passes every check; empty disables it.
	bypass Role
}

// NewAuthorization loads the enforcer's policies. With superAdminBypass,
// holders of RoleSysSuperAdmin pass every check without a policy lookup.
func NewAuthorization(e *casbin.DistributedEnforcer, superAdminBypass bool) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}
	a := &Authorization{enforcer: e}
	if superAdminBypass {
		a.bypass = RoleSysSuperAdmin
	}
	return a, nil
}

// check collects argument problems; the first one wins.
type check struct{ err error }

func (c *check) failf(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgs}, args...)...)
	}
}

func (c *check) subject(s GroupSubject) {
	if s == "" {
		c.failf("subject is empty")
	}
}

func (c *check) domain(d Domain) {
	if !IsValidDomain(d) {
		c.failf("invalid domain %q", d)
	}
}

func (c *check) resource(r Resource) {
	if _, ok := KnownResources[r]; !ok && r != WildcardResource {
		c.failf("unknown resource %q", r)
	}
}

func (c *check) action(a Action) {
	if _, ok := KnownActions[a]; !ok && a != WildcardAction {
		c.failf("unknown action %q", a)
	}
}

func (c *check) role(r Role) {
	if _, ok := KnownRoles[r]; !ok && r != WildcardRole {
		c.failf("unknown role %q", r)
	}
}

func (c *check) effect(e PolicyEffect) {
	if e != EffectAllow && e != EffectDeny {
		c.failf("invalid effect %q", e)
	}
}

func (a *Authorization) Enforce(_ context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error) {
	var c check
	c.subject(subject)
	c.domain(domain)
	c.resource(object)
	c.action(action)
	if c.err != nil {
		return false, c.err
	}

	if a.bypass != "" {
		if root := a.enforcer.HasGroupingPolicy(string(subject), string(a.bypass), string(DomainSys)); root {
			return true, nil
		}
	}
	return a.enforcer.Enforce(string(subject), string(domain), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error {
	return mustEnforce(ctx, a, subject, domain, object, action)
}

func mustEnforce(ctx context.Context, a IAuthorization, subject GroupSubject, domain Domain, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, domain, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// ---- grouping rules: g, subject, role, domain ----

func (a *Authorization) GrantRole(_ context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	var c check
	c.subject(subject)
	c.role(role)
	c.domain(domain)
	if c.err != nil {
		return false, c.err
	}
	return a.enforcer.AddGroupingPolicy(string(subject), string(role), string(domain))
}

func (a *Authorization) RevokeRole(_ context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	var c check
	c.subject(subject)
	c.domain(domain)
	if role == "" {
		c.failf("role is empty")
	}
	if c.err != nil {
		return false, c.err
	}
	return a.enforcer.RemoveGroupingPolicy(string(subject), string(role), string(domain))
}

func (a *Authorization) RolesOf(_ context.Context, subject GroupSubject, domain Domain) ([]Role, error) {
	var c check
	c.subject(subject)
	c.domain(domain)
	if c.err != nil {
		return nil, c.err
	}
	names := a.enforcer.GetRolesForUserInDomain(string(subject), string(domain))
	out := make([]Role, len(names))
	for i, n := range names {
		out[i] = Role(n)
	}
	return out, nil
}

// ---- permission rules: p, role, domain, resource, action, effect ----

func (a *Authorization) AddPermission(_ context.Context, p PermissionPolicy) (bool, error) {
	var c check
	c.role(p.Subject)
	c.domain(p.Domain)
	c.resource(p.Object)
	c.action(p.Action)
	c.effect(p.Effect)
	if c.err != nil {
		return false, c.err
	}
	return a.enforcer.AddPolicy(p.row()...)
}

func (a *Authorization) RemovePermission(_ context.Context, p PermissionPolicy) (bool, error) {
	var c check
	c.domain(p.Domain)
	if p.Subject == "" || p.Object == "" || p.Action == "" || p.Effect == "" {
		c.failf("incomplete permission %v", p.row())
	}
	if c.err != nil {
		return false, c.err
	}
	return a.enforcer.RemovePolicy(p.row()...)
}
