package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/pkg/reqctx"
)

var ErrNoSubjectInContext = errors.New("no subject found in context")

// SubjectFromContext extracts the GroupSubject (login identity id) from the
// claims placed by the auth middleware.
func SubjectFromContext(ctx context.Context) (GroupSubject, error) {
	userID := reqctx.UserID(ctx)
	if userID == uuid.Nil {
		return "", ErrNoSubjectInContext
	}
	return GroupSubject(userID.String()), nil
}

// EnforceFromContext checks the caller in ctx against a sys-domain permission.
func EnforceFromContext(ctx context.Context, auth IAuthorization, object Resource, action Action) error {
	subject, err := SubjectFromContext(ctx)
	if err != nil {
		return err
	}
	return auth.MustEnforce(ctx, subject, DomainSys, object, action)
}
