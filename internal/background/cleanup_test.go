package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeLinks struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakeLinks) CleanupExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 2, f.err
}

type fakeResets struct {
	calls int
}

func (f *fakeResets) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	f.calls++
	return 1, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce_PurgesBoth(t *testing.T) {
	links, resets := &fakeLinks{}, &fakeResets{}
	cm := NewCleanupManager(links, resets, testLogger(), time.Hour)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	cm.now = func() time.Time { return now }

	cm.RunOnce(context.Background())

	assert.Equal(t, 1, links.calls)
	assert.Equal(t, 1, resets.calls)
	assert.Equal(t, now.Add(-30*24*time.Hour), links.cutoff)
}

func TestRunOnce_LinkFailureStillClearsResets(t *testing.T) {
	links, resets := &fakeLinks{err: errors.New("db down")}, &fakeResets{}
	cm := NewCleanupManager(links, resets, testLogger(), time.Hour)

	cm.RunOnce(context.Background())

	assert.Equal(t, 1, resets.calls)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	links, resets := &fakeLinks{}, &fakeResets{}
	cm := NewCleanupManager(links, resets, testLogger(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup manager did not stop")
	}
	cm.Stop()
	cm.Stop()
}
