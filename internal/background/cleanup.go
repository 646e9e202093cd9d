package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MagicLinkRetention is how long an expired invitation stays listed for admins
const MagicLinkRetention = 30 * 24 * time.Hour

// MagicLinkPurger deletes invitations that expired before cutoff
type MagicLinkPurger interface {
	CleanupExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResetTokenPurger clears password reset tokens whose expiry has passed
type ResetTokenPurger interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// CleanupManager periodically removes stale invitation and reset token rows
type CleanupManager struct {
	links    MagicLinkPurger
	resets   ResetTokenPurger
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(links MagicLinkPurger, resets ResetTokenPurger, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		links:    links,
		resets:   resets,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			cm.RunOnce(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// RunOnce performs a single cleanup pass. A failing step does not skip the other.
func (cm *CleanupManager) RunOnce(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	links, err := cm.links.CleanupExpired(cleanupCtx, cm.now().Add(-MagicLinkRetention))
	if err != nil {
		cm.logger.Error("failed to purge expired magic links", slog.Any("error", err))
	} else if links > 0 {
		cm.logger.Info("expired magic links purged", slog.Int64("rows_deleted", links))
	}

	resets, err := cm.resets.ClearExpiredResetTokens(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to clear expired reset tokens", slog.Any("error", err))
	} else if resets > 0 {
		cm.logger.Info("expired reset tokens cleared", slog.Int64("rows_updated", resets))
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
