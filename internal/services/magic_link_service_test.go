package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/onevector/talenthub/internal/models"
	pkgauth "github.com/onevector/talenthub/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMagicLinkService(repo MagicLinkRepository, mailer Mailer) *MagicLinkService {
	logger, auditLogger := testLoggers()
	svc := NewMagicLinkService(repo, mailer, "https://talent.example.com", 24*time.Hour, models.MaxMagicLinkAttempts, logger, auditLogger)
	svc.newToken = func() (string, error) { return "invite-token", nil }
	return svc
}

func TestMagicLinkService_CreateLink(t *testing.T) {
	repo := &InMemoryMagicLinkRepository{}
	mailer := &MockMailer{}
	svc := newTestMagicLinkService(repo, mailer)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	err := svc.CreateLink(context.Background(), "user@x.com")

	require.NoError(t, err)
	require.Len(t, repo.Links, 1)
	link := repo.Links[0]
	assert.Equal(t, "user@x.com", link.Email)
	assert.Equal(t, pkgauth.HashToken("invite-token"), link.TokenHash)
	assert.Equal(t, fixed.Add(24*time.Hour), link.ExpiresAt)
	assert.Zero(t, link.Attempts)
	assert.False(t, link.Expired)

	require.Len(t, mailer.Sent, 1)
	assert.Equal(t, "user@x.com", mailer.Sent[0].To)
	assert.Contains(t, mailer.Sent[0].HTML, "https://talent.example.com/onboard?token=invite-token")
	assert.Contains(t, mailer.Sent[0].HTML, "24 hours")
}

func TestMagicLinkService_CreateLink_Errors(t *testing.T) {
	svc := newTestMagicLinkService(&InMemoryMagicLinkRepository{}, &MockMailer{})
	assert.True(t, errors.Is(svc.CreateLink(context.Background(), ""), models.ErrBadRequest))

	svc = newTestMagicLinkService(&InMemoryMagicLinkRepository{Err: errors.New("db down")}, &MockMailer{})
	assert.True(t, errors.Is(svc.CreateLink(context.Background(), "user@x.com"), models.ErrInternalServer))

	svc = newTestMagicLinkService(&InMemoryMagicLinkRepository{}, &MockMailer{Err: errors.New("smtp down")})
	assert.True(t, errors.Is(svc.CreateLink(context.Background(), "user@x.com"), models.ErrInternalServer))
}

func TestMagicLinkService_VerifyLink_ThreeUsesThenInvalid(t *testing.T) {
	repo := &InMemoryMagicLinkRepository{}
	svc := newTestMagicLinkService(repo, &MockMailer{})
	require.NoError(t, svc.CreateLink(context.Background(), "user@x.com"))

	for i := 1; i <= 3; i++ {
		email, err := svc.VerifyLink(context.Background(), "invite-token")
		require.NoError(t, err, "verification %d", i)
		assert.Equal(t, "user@x.com", email)
		assert.Equal(t, i, repo.Links[0].Attempts)
	}

	_, err := svc.VerifyLink(context.Background(), "invite-token")
	assert.True(t, errors.Is(err, models.ErrInvalidOrExpiredToken))
	assert.Equal(t, 3, repo.Links[0].Attempts)
}

func TestMagicLinkService_VerifyLink_UnknownToken(t *testing.T) {
	svc := newTestMagicLinkService(&InMemoryMagicLinkRepository{}, &MockMailer{})

	_, err := svc.VerifyLink(context.Background(), "never-issued")

	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestMagicLinkService_VerifyLink_PastExpiry(t *testing.T) {
	repo := &InMemoryMagicLinkRepository{}
	svc := newTestMagicLinkService(repo, &MockMailer{})
	require.NoError(t, svc.CreateLink(context.Background(), "user@x.com"))

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err := svc.VerifyLink(context.Background(), "invite-token")

	assert.True(t, errors.Is(err, models.ErrInvalidOrExpiredToken))
	assert.Zero(t, repo.Links[0].Attempts)
}

func TestMagicLinkService_ExpireThenVerify(t *testing.T) {
	repo := &InMemoryMagicLinkRepository{}
	svc := newTestMagicLinkService(repo, &MockMailer{})
	require.NoError(t, svc.CreateLink(context.Background(), "user@x.com"))

	require.NoError(t, svc.ExpireLink(context.Background(), "invite-token"))
	assert.True(t, repo.Links[0].ExpiresAt.After(time.Now()))

	_, err := svc.VerifyLink(context.Background(), "invite-token")
	assert.True(t, errors.Is(err, models.ErrInvalidOrExpiredToken))
}

func TestMagicLinkService_ExpireLink_UnknownTokenSucceeds(t *testing.T) {
	svc := newTestMagicLinkService(&InMemoryMagicLinkRepository{}, &MockMailer{})

	assert.NoError(t, svc.ExpireLink(context.Background(), "never-issued"))
	assert.True(t, errors.Is(svc.ExpireLink(context.Background(), ""), models.ErrBadRequest))
}

func TestMagicLinkService_VerifyLink_ConcurrentCallsNeverExceedLimit(t *testing.T) {
	repo := &InMemoryMagicLinkRepository{}
	svc := newTestMagicLinkService(repo, &MockMailer{})
	require.NoError(t, svc.CreateLink(context.Background(), "user@x.com"))

	const callers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.VerifyLink(context.Background(), "invite-token"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, models.MaxMagicLinkAttempts, successes)
	assert.Equal(t, models.MaxMagicLinkAttempts, repo.Links[0].Attempts)
}

func TestMagicLinkService_ListLinks(t *testing.T) {
	repo := &InMemoryMagicLinkRepository{}
	svc := newTestMagicLinkService(repo, &MockMailer{})
	require.NoError(t, svc.CreateLink(context.Background(), "user@x.com"))

	links, err := svc.ListLinks(context.Background())

	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "user@x.com", links[0].Email)

	svc = newTestMagicLinkService(&InMemoryMagicLinkRepository{Err: errors.New("db down")}, &MockMailer{})
	_, err = svc.ListLinks(context.Background())
	assert.True(t, errors.Is(err, models.ErrInternalServer))
}
