package activation_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/repo/repotest"
	"github.com/Alijeyrad/simorq_portal/internal/service/activation"
	"github.com/Alijeyrad/simorq_portal/internal/service/identity"
	"github.com/Alijeyrad/simorq_portal/internal/service/token"
	"github.com/Alijeyrad/simorq_portal/pkg/email"
	"github.com/Alijeyrad/simorq_portal/pkg/util/codes"
	"github.com/Alijeyrad/simorq_portal/pkg/util/password"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type outbox struct {
	mu   sync.Mutex
	sent []email.Message
	fail error
}

func (o *outbox) Send(_ context.Context, m email.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return o.fail
	}
	o.sent = append(o.sent, m)
	return nil
}

var tokenParam = regexp.MustCompile(`token=([A-Za-z0-9_-]+)`)

// lastToken pulls the raw activation token out of the newest invite.
func (o *outbox) lastToken(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)
	m := tokenParam.FindStringSubmatch(o.sent[len(o.sent)-1].TextBody)
	require.Len(t, m, 2)
	return m[1]
}

type fixture struct {
	db    *repo.Client
	ids   identity.Service
	svc   activation.Service
	clock *fakeClock
	mail  *outbox
	mr    *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Portal.PublicBaseURL = "https://portal.example.com"
	cfg.Activation.InviteCooldownSeconds = 60
	cfg.ApplyDefaults()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := repotest.Open(t)
	clk := &fakeClock{now: time.Now().UTC()}
	tokens := token.New(db, codes.NewGenerator(codes.DefaultConfig()), token.WithClock(clk.Now))
	ids := identity.New(db, password.NewHasher(password.Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}))
	mail := &outbox{}

	return &fixture{
		db:    db,
		ids:   ids,
		svc:   activation.New(db, rdb, tokens, ids, mail, cfg),
		clock: clk,
		mail:  mail,
		mr:    mr,
	}
}

func TestInviteAndActivate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := repotest.Patient(t, f.db, "ana@example.com")

	inv, err := f.svc.SendInvite(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, inv.ExpiresAt.Sub(inv.SentAt))
	assert.Contains(t, f.mail.sent[0].TextBody, "https://portal.example.com/paciente/ativar?token=")
	assert.Equal(t, []string{"ana@example.com"}, f.mail.sent[0].To)

	stored, err := f.db.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.InviteSentAt)

	raw := f.mail.lastToken(t)
	pending, err := f.svc.Inspect(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, p.ID, pending.PatientID)

	res, err := f.svc.Activate(ctx, raw, "secret1")
	require.NoError(t, err)
	assert.False(t, res.Reused)

	stored, err = f.db.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LoginIdentityID)
	assert.Equal(t, res.IdentityID, *stored.LoginIdentityID)
	assert.NotNil(t, stored.ActivatedAt)

	li, err := f.ids.Authenticate(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "patient", li.Role)

	_, err = f.svc.Activate(ctx, raw, "secret1")
	assert.ErrorIs(t, err, token.ErrAlreadyUsed)

	_, err = f.svc.SendInvite(ctx, p.ID)
	assert.ErrorIs(t, err, activation.ErrAlreadyActivated)
}

func TestActivateReusesExistingIdentity(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := repotest.Patient(t, f.db, "bia@example.com")

	existing, err := f.ids.Create(ctx, "bia@example.com", "old-password", "patient")
	require.NoError(t, err)

	_, err = f.svc.SendInvite(ctx, p.ID)
	require.NoError(t, err)

	res, err := f.svc.Activate(ctx, f.mail.lastToken(t), "new-password")
	require.NoError(t, err)
	assert.True(t, res.Reused)
	assert.Equal(t, existing, res.IdentityID)

	_, err = f.ids.Authenticate(ctx, "bia@example.com", "new-password")
	require.NoError(t, err)
	_, err = f.ids.Authenticate(ctx, "bia@example.com", "old-password")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestActivateExpiredLeavesPatientUnactivated(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := repotest.Patient(t, f.db, "caio@example.com")

	_, err := f.svc.SendInvite(ctx, p.ID)
	require.NoError(t, err)
	f.clock.Advance(49 * time.Hour)

	_, err = f.svc.Activate(ctx, f.mail.lastToken(t), "secret1")
	assert.ErrorIs(t, err, token.ErrExpired)

	stored, err := f.db.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LoginIdentityID)
	assert.Nil(t, stored.ActivatedAt)

	_, err = f.ids.FindByEmail(ctx, "caio@example.com")
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestShortPasswordKeepsToken(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := repotest.Patient(t, f.db, "duda@example.com")

	_, err := f.svc.SendInvite(ctx, p.ID)
	require.NoError(t, err)
	raw := f.mail.lastToken(t)

	_, err = f.svc.Activate(ctx, raw, "12345")
	assert.ErrorIs(t, err, activation.ErrPasswordTooShort)

	_, err = f.svc.Activate(ctx, raw, "123456")
	assert.NoError(t, err)
}

func TestUnknownTokenIsNotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Activate(context.Background(), "not-a-token", "secret1")
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestConcurrentActivationLinksOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := repotest.Patient(t, f.db, "edu@example.com")

	_, err := f.svc.SendInvite(ctx, p.ID)
	require.NoError(t, err)
	raw := f.mail.lastToken(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Activate(ctx, raw, "secret1")
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, token.ErrAlreadyUsed), errors.Is(err, activation.ErrAlreadyActivated):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)

	stored, err := f.db.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LoginIdentityID)
	li, err := f.ids.FindByEmail(ctx, "edu@example.com")
	require.NoError(t, err)
	assert.Equal(t, li.ID, *stored.LoginIdentityID)
}

func TestManualActivationRace(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := repotest.Patient(t, f.db, "fe@example.com")

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ActivateManually(ctx, p.ID, "secret1")
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, activation.ErrAlreadyActivated)
	}
	assert.Equal(t, 1, ok)

	_, err := f.svc.ActivateManually(ctx, uuid.New(), "secret1")
	assert.ErrorIs(t, err, activation.ErrPatientNotFound)
}

func TestInviteCooldown(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := repotest.Patient(t, f.db, "gabi@example.com")

	_, err := f.svc.SendInvite(ctx, p.ID)
	require.NoError(t, err)

	_, err = f.svc.SendInvite(ctx, p.ID)
	assert.ErrorIs(t, err, activation.ErrInviteThrottled)

	f.mr.FastForward(61 * time.Second)
	_, err = f.svc.SendInvite(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, f.mail.sent, 2)

	tokens, err := f.db.ActivationTokens.ListForPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
}

func TestInviteDeliveryFailureReleasesCooldown(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := repotest.Patient(t, f.db, "hugo@example.com")

	f.mail.fail = errors.New("smtp down")
	_, err := f.svc.SendInvite(ctx, p.ID)
	assert.ErrorIs(t, err, activation.ErrDeliveryFailed)

	stored, err := f.db.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.InviteSentAt)

	f.mail.fail = nil
	_, err = f.svc.SendInvite(ctx, p.ID)
	assert.NoError(t, err)
}
