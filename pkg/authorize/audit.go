package authorize

import (
	"context"
	"log/slog"
	"time"

	"github.com/Alijeyrad/simorq_portal/pkg/reqctx"
)

// AuditedAuthorization logs every decision and every policy change made
// through the wrapped IAuthorization. Denials log at warn, grants at debug.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

var _ IAuthorization = (*AuditedAuthorization)(nil)

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{inner: inner, logger: logger.With("component", "authz")}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, domain, object, action)

	attrs := append([]any{
		"subject", subject,
		"domain", domain,
		"resource", object,
		"action", action,
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	}, reqctx.LogAttrs(ctx)...)

	level := slog.LevelDebug
	switch {
	case err != nil:
		level = slog.LevelError
		attrs = append(attrs, "err", err)
	case !allowed:
		level = slog.LevelWarn
	}
	a.logger.Log(ctx, level, "authz_decision", attrs...)
	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error {
	return mustEnforce(ctx, a, subject, domain, object, action)
}

func (a *AuditedAuthorization) GrantRole(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	changed, err := a.inner.GrantRole(ctx, subject, role, domain)
	a.change(ctx, "grant_role", changed, err, "subject", subject, "role", role, "domain", domain)
	return changed, err
}

func (a *AuditedAuthorization) RevokeRole(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	changed, err := a.inner.RevokeRole(ctx, subject, role, domain)
	a.change(ctx, "revoke_role", changed, err, "subject", subject, "role", role, "domain", domain)
	return changed, err
}

func (a *AuditedAuthorization) RolesOf(ctx context.Context, subject GroupSubject, domain Domain) ([]Role, error) {
	return a.inner.RolesOf(ctx, subject, domain)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	changed, err := a.inner.AddPermission(ctx, p)
	a.change(ctx, "add_permission", changed, err, policyAttrs(p)...)
	return changed, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	changed, err := a.inner.RemovePermission(ctx, p)
	a.change(ctx, "remove_permission", changed, err, policyAttrs(p)...)
	return changed, err
}

func (a *AuditedAuthorization) change(ctx context.Context, op string, changed bool, err error, attrs ...any) {
	attrs = append(attrs, "operation", op, "changed", changed)
	attrs = append(attrs, reqctx.LogAttrs(ctx)...)
	if err != nil {
		a.logger.ErrorContext(ctx, "authz_policy_change", append(attrs, "err", err)...)
		return
	}
	a.logger.InfoContext(ctx, "authz_policy_change", attrs...)
}

func policyAttrs(p PermissionPolicy) []any {
	return []any{"role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action, "effect", p.Effect}
}
