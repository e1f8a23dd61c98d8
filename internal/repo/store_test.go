package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/repo/repotest"
)

func TestActivationTokenConsumeOnce(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	p := repotest.Patient(t, c, "ana@example.com")

	now := repo.Now()
	_, err := c.ActivationTokens.Create(ctx, p.ID, "digest-1", now, now.Add(48*time.Hour))
	require.NoError(t, err)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		notFound int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.ActivationTokens.Consume(ctx, "digest-1", time.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
				assert.Equal(t, p.ID, got.ScopeID)
			case repo.IsNotFound(err):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, notFound)

	tok, err := c.ActivationTokens.GetByHash(ctx, "digest-1")
	require.NoError(t, err)
	assert.True(t, tok.Used)
	require.NotNil(t, tok.UsedAt)
}

func TestActivationTokenConsumeRejectsExpired(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	p := repotest.Patient(t, c, "bia@example.com")

	issued := repo.Now().Add(-72 * time.Hour)
	_, err := c.ActivationTokens.Create(ctx, p.ID, "old", issued, issued.Add(48*time.Hour))
	require.NoError(t, err)

	_, err = c.ActivationTokens.Consume(ctx, "old", time.Now())
	assert.True(t, repo.IsNotFound(err))

	tok, err := c.ActivationTokens.GetByHash(ctx, "old")
	require.NoError(t, err)
	assert.False(t, tok.Used)
}

func TestActivationTokenDuplicateHash(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	p := repotest.Patient(t, c, "caio@example.com")
	now := repo.Now()

	_, err := c.ActivationTokens.Create(ctx, p.ID, "same", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = c.ActivationTokens.Create(ctx, p.ID, "same", now, now.Add(time.Hour))
	assert.ErrorIs(t, err, repo.ErrDuplicate)
}

func TestShareLinkConcurrentViews(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	p := repotest.Patient(t, c, "duda@example.com")
	exam := repotest.Exam(t, c, p.ID)

	_, err := c.ShareLinks.Create(ctx, exam.ID, "share-tok", repo.Now(), nil)
	require.NoError(t, err)

	const views = 20
	var wg sync.WaitGroup
	for range views {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ShareLinks.RecordView(ctx, "share-tok", time.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	last := repo.Now()
	v, err := c.ShareLinks.RecordView(ctx, "share-tok", last)
	require.NoError(t, err)
	assert.Equal(t, views+1, v.ViewCount)

	l, err := c.ShareLinks.GetByToken(ctx, "share-tok")
	require.NoError(t, err)
	assert.Equal(t, views+1, l.ViewCount)
	require.NotNil(t, l.LastViewedAt)
	assert.True(t, last.Equal(*l.LastViewedAt))
}

func TestShareLinkRevokedAndExpiredDoNotResolve(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	p := repotest.Patient(t, c, "edu@example.com")
	exam := repotest.Exam(t, c, p.ID)
	now := repo.Now()

	past := now.Add(-time.Minute)
	_, err := c.ShareLinks.Create(ctx, exam.ID, "expired", now.Add(-time.Hour), &past)
	require.NoError(t, err)

	revoked, err := c.ShareLinks.Create(ctx, exam.ID, "revoked", now, nil)
	require.NoError(t, err)
	ok, err := c.ShareLinks.Revoke(ctx, revoked.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.ShareLinks.Revoke(ctx, revoked.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "second revoke is a no-op")

	for _, tok := range []string{"expired", "revoked", "missing"} {
		_, err := c.ShareLinks.RecordView(ctx, tok, now)
		assert.True(t, repo.IsNotFound(err), tok)
	}

	_, err = c.ShareLinks.ActiveForExam(ctx, exam.ID, now)
	assert.True(t, repo.IsNotFound(err))

	_, err = c.ShareLinks.Revoke(ctx, uuid.New(), now)
	assert.True(t, repo.IsNotFound(err))
}

func TestRotateInsideTransaction(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	p := repotest.Patient(t, c, "fabi@example.com")
	exam := repotest.Exam(t, c, p.ID)
	now := repo.Now()

	_, err := c.ShareLinks.Create(ctx, exam.ID, "first", now, nil)
	require.NoError(t, err)

	err = c.WithTx(ctx, func(tx *repo.Client) error {
		if _, err := tx.ShareLinks.RevokeActiveForExam(ctx, exam.ID, now); err != nil {
			return err
		}
		_, err := tx.ShareLinks.Create(ctx, exam.ID, "second", now.Add(time.Millisecond), nil)
		return err
	})
	require.NoError(t, err)

	active, err := c.ShareLinks.ActiveForExam(ctx, exam.ID, now)
	require.NoError(t, err)
	assert.Equal(t, "second", active.Token)

	links, err := c.ShareLinks.ListForExam(ctx, exam.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.NotNil(t, links[1].RevokedAt)
}

func TestPatientLinkIdentityOnce(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	p := repotest.Patient(t, c, "gabi@example.com")

	first, err := c.Identities.Create(ctx, "gabi@example.com", "hash", "patient")
	require.NoError(t, err)
	second, err := c.Identities.Create(ctx, "other@example.com", "hash", "patient")
	require.NoError(t, err)

	ok, err := c.Patients.LinkIdentity(ctx, p.ID, first.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Patients.LinkIdentity(ctx, p.ID, second.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := c.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LoginIdentityID)
	assert.Equal(t, first.ID, *got.LoginIdentityID)
	assert.NotNil(t, got.ActivatedAt)
	assert.True(t, got.IsActivated())
}

func TestIdentityEmailIsUniqueAndCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	li, err := c.Identities.Create(ctx, "Hugo@Example.com", "h1", "patient")
	require.NoError(t, err)

	_, err = c.Identities.Create(ctx, "hugo@example.com", "h2", "patient")
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	got, err := c.Identities.GetByEmail(ctx, "HUGO@example.com ")
	require.NoError(t, err)
	assert.Equal(t, li.ID, got.ID)

	require.NoError(t, c.Identities.UpdatePasswordHash(ctx, li.ID, "h3"))
	got, err = c.Identities.Get(ctx, li.ID)
	require.NoError(t, err)
	assert.Equal(t, "h3", got.PasswordHash)

	assert.True(t, repo.IsNotFound(c.Identities.UpdatePasswordHash(ctx, uuid.New(), "x")))
}

func TestNewsRecipients(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	mk := func(email string, optIn, linked bool) *repo.Patient {
		p, err := c.Patients.Create(ctx, repo.CreatePatient{Email: email, DisplayName: email, OptInNews: optIn})
		require.NoError(t, err)
		if linked {
			li, err := c.Identities.Create(ctx, email, "h", "patient")
			require.NoError(t, err)
			_, err = c.Patients.LinkIdentity(ctx, p.ID, li.ID, time.Now())
			require.NoError(t, err)
		}
		return p
	}
	want := mk("in-linked@example.com", true, true)
	mk("in-unlinked@example.com", true, false)
	mk("out-linked@example.com", false, true)

	got, err := c.Patients.ListNewsRecipients(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)
}

func TestPublishOnlyDrafts(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	p := repotest.Patient(t, c, "ivo@example.com")
	exam := repotest.Exam(t, c, p.ID)

	ok, err := c.Exams.Publish(ctx, exam.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exams.Publish(ctx, exam.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.News.Publish(ctx, uuid.New(), time.Now())
	assert.True(t, repo.IsNotFound(err))
}

func TestNotificationLogList(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	subject := uuid.New()
	msg := "smtp down"

	base := repo.Now()
	for i, status := range []string{repo.NotificationStatusSent, repo.NotificationStatusFailed, repo.NotificationStatusSent} {
		in := repo.CreateNotificationLog{
			EventKind:   "document-published",
			SubjectID:   subject,
			RecipientID: uuid.New(),
			Channel:     "email",
			Destination: "p@example.com",
			Status:      status,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if status == repo.NotificationStatusFailed {
			in.ErrorMessage = &msg
		}
		_, err := c.NotificationLogs.Create(ctx, in)
		require.NoError(t, err)
	}
	_, err := c.NotificationLogs.Create(ctx, repo.CreateNotificationLog{
		EventKind: "news-published", SubjectID: uuid.New(), RecipientID: uuid.New(),
		Channel: "email", Destination: "q@example.com", Status: repo.NotificationStatusSent,
	})
	require.NoError(t, err)

	all, err := c.NotificationLogs.List(ctx, repo.LogFilter{SubjectID: &subject})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt))

	failed, err := c.NotificationLogs.List(ctx, repo.LogFilter{SubjectID: &subject, Status: repo.NotificationStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.NotNil(t, failed[0].ErrorMessage)
	assert.Equal(t, msg, *failed[0].ErrorMessage)

	limited, err := c.NotificationLogs.List(ctx, repo.LogFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
