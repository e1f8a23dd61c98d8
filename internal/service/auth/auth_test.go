package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/internal/repo/repotest"
	"github.com/Alijeyrad/simorq_portal/internal/service/auth"
	"github.com/Alijeyrad/simorq_portal/internal/service/identity"
	pasetotoken "github.com/Alijeyrad/simorq_portal/pkg/paseto"
	"github.com/Alijeyrad/simorq_portal/pkg/util/password"
)

type fixture struct {
	svc auth.Service
	ids identity.Service
	mgr *pasetotoken.Manager
	mr  *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	keys := pasetotoken.NewLocalKeys()
	mgr, err := pasetotoken.New(pasetotoken.Config{
		Mode:       keys.Mode,
		Issuer:     "portal",
		Audience:   "portal-api",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, keys)
	require.NoError(t, err)

	ids := identity.New(repotest.Open(t), password.NewHasher(password.Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}))
	return &fixture{svc: auth.New(rdb, ids, mgr), ids: ids, mgr: mgr, mr: mr}
}

func TestLoginRefreshLogout(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	id, err := f.ids.Create(ctx, "staff@example.com", "correct horse", "staff")
	require.NoError(t, err)

	toks, err := f.svc.Login(ctx, "Staff@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "staff", toks.Role)
	assert.Equal(t, int64(60), toks.ExpiresIn)

	claims, err := f.mgr.Verify(toks.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	require.NotNil(t, claims.SessionID)

	key := auth.SessionKey(*claims.SessionID)
	assert.True(t, f.mr.Exists(key))
	assert.Equal(t, time.Hour, f.mr.TTL(key))

	refreshed, err := f.svc.RefreshTokens(ctx, toks.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, toks.RefreshToken, refreshed.RefreshToken)
	rc, err := f.mgr.Verify(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "staff", rc.Role)

	_, err = f.svc.RefreshTokens(ctx, toks.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, f.svc.Logout(ctx, *claims.SessionID))
	assert.False(t, f.mr.Exists(key))
	require.NoError(t, f.svc.Logout(ctx, *claims.SessionID), "logout is idempotent")

	_, err = f.svc.RefreshTokens(ctx, toks.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.ids.Create(ctx, "pat@example.com", "secret1", "patient")
	require.NoError(t, err)

	for _, tc := range []struct{ email, pass string }{
		{"pat@example.com", "wrong"},
		{"nobody@example.com", "secret1"},
		{"not an email", "secret1"},
	} {
		_, err := f.svc.Login(ctx, tc.email, tc.pass)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials, tc.email)
	}

	_, err = f.svc.RefreshTokens(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.ids.Create(ctx, "admin@example.com", "correct horse", "admin")
	require.NoError(t, err)

	toks, err := f.svc.Login(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)

	claims, err := f.svc.Authenticate(ctx, toks.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	_, err = f.svc.Authenticate(ctx, toks.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "refresh tokens do not open protected routes")

	require.NoError(t, f.svc.Logout(ctx, *claims.SessionID))
	_, err = f.svc.Authenticate(ctx, toks.AccessToken)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound, "logout revokes live access tokens")
}
