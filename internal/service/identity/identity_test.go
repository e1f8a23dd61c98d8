package identity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/internal/repo/repotest"
	"github.com/Alijeyrad/simorq_portal/internal/service/identity"
	"github.com/Alijeyrad/simorq_portal/pkg/util/password"
)

// fastHasher keeps argon2 cheap in tests.
func fastHasher() password.Hasher {
	return password.NewHasher(password.Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := identity.New(repotest.Open(t), fastHasher())

	id, err := svc.Create(ctx, " Jo@Example.com ", "secret1", "patient")
	require.NoError(t, err)

	li, err := svc.Authenticate(ctx, "jo@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, li.ID)
	assert.Equal(t, "patient", li.Role)

	_, err = svc.Authenticate(ctx, "jo@example.com", "wrong")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestCreateReportsExistingEmail(t *testing.T) {
	ctx := context.Background()
	svc := identity.New(repotest.Open(t), fastHasher())

	_, err := svc.Create(ctx, "kai@example.com", "one", "patient")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "KAI@example.com", "two", "patient")
	assert.ErrorIs(t, err, identity.ErrIdentityExists)
}

func TestUpdateCredential(t *testing.T) {
	ctx := context.Background()
	svc := identity.New(repotest.Open(t), fastHasher())

	id, err := svc.Create(ctx, "lia@example.com", "old-pass", "staff")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateCredential(ctx, id, "new-pass"))

	_, err = svc.Authenticate(ctx, "lia@example.com", "old-pass")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "lia@example.com", "new-pass")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateCredential(ctx, uuid.New(), "x"), identity.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := identity.New(repotest.Open(t), fastHasher())

	tests := []struct {
		name  string
		email string
		pass  string
		role  string
		want  error
	}{
		{"bad email", "not-an-email", "p", "patient", identity.ErrInvalidEmail},
		{"display name form", "Mia <mia@example.com>", "p", "patient", identity.ErrInvalidEmail},
		{"bad role", "mia@example.com", "p", "root", identity.ErrInvalidRole},
		{"empty password", "mia@example.com", "", "patient", identity.ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.email, tt.pass, tt.role)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthenticateUpgradesStaleHash(t *testing.T) {
	ctx := context.Background()
	db := repotest.Open(t)

	old := password.NewHasher(password.Config{MemoryKiB: 2048, Iterations: 1, Parallelism: 1})
	id, err := identity.New(db, old).Create(ctx, "kai@example.com", "secret1", "staff")
	require.NoError(t, err)

	current := fastHasher()
	svc := identity.New(db, current)
	_, err = svc.Authenticate(ctx, "kai@example.com", "secret1")
	require.NoError(t, err)

	li, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, current.NeedsRehash(li.PasswordHash))
	assert.NoError(t, current.Verify(li.PasswordHash, "secret1"))
}
