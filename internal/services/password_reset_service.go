package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/onevector/talenthub/internal/models"
	pkgauth "github.com/onevector/talenthub/pkg/auth"
	pkglogger "github.com/onevector/talenthub/pkg/logger"
)

// ResetUserRepository is the subset of UserRepository needed for password resets
type ResetUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListWithPendingReset(ctx context.Context) ([]*models.User, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	UpdatePasswordAndClearReset(ctx context.Context, id, tokenHash, passwordHash string) error
}

// PasswordResetService issues and consumes single-use reset tokens
type PasswordResetService struct {
	repo        ResetUserRepository
	hasher      Hasher
	mailer      Mailer
	frontendURL string
	tokenTTL    time.Duration
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	now      func() time.Time
	newToken func() (string, error)
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	repo ResetUserRepository,
	hasher Hasher,
	mailer Mailer,
	frontendURL string,
	tokenTTL time.Duration,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *PasswordResetService {
	return &PasswordResetService{
		repo:        repo,
		hasher:      hasher,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		tokenTTL:    tokenTTL,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
		newToken:    pkgauth.GenerateOpaqueToken,
	}
}

// RequestReset stores a hashed reset token for email and mails the plaintext link.
// Returns models.ErrNotFound for an unknown email without touching any state.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.ErrBadRequest
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogPasswordReset(pkglogger.AuditEvent{
				EventType:     "reset_requested",
				Email:         email,
				FailureReason: "unknown_email",
			})
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return models.ErrInternalServer
	}

	token, err := s.newToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	tokenHash, err := s.hasher.Hash(token)
	if err != nil {
		s.logger.Error("failed to hash reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.SetResetToken(ctx, user.ID, tokenHash, s.now().Add(s.tokenTTL)); err != nil {
		s.logger.Error("failed to store reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	link := s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
	subject, html := passwordResetEmail(link, s.tokenTTL)

	// The stored token stays valid if delivery fails; the user can simply request again.
	if err := s.mailer.Send(ctx, user.Email, subject, html); err != nil {
		s.logger.Error("failed to send reset email", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogPasswordReset(pkglogger.AuditEvent{
		EventType: "reset_requested",
		UserID:    user.ID,
		Success:   true,
	})

	return nil
}

// ConsumeReset sets a new password for the user holding token and clears the token.
// Tokens are stored as bcrypt digests, so every pending digest is checked in turn.
func (s *PasswordResetService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return models.ErrInvalidToken
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	candidates, err := s.repo.ListWithPendingReset(ctx)
	if err != nil {
		s.logger.Error("failed to list pending resets", slog.Any("error", err))
		return models.ErrInternalServer
	}

	var user *models.User
	for _, u := range candidates {
		if u.HasPendingReset() && s.hasher.Verify(token, *u.ResetTokenHash) {
			user = u
			break
		}
	}

	if user == nil {
		s.auditLogger.LogPasswordReset(pkglogger.AuditEvent{
			EventType:     "reset_completed",
			FailureReason: "invalid_token",
		})
		return models.ErrInvalidToken
	}

	if user.ResetExpired(s.now()) {
		s.auditLogger.LogPasswordReset(pkglogger.AuditEvent{
			EventType:     "reset_completed",
			UserID:        user.ID,
			FailureReason: "token_expired",
		})
		return models.ErrTokenExpired
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePasswordAndClearReset(ctx, user.ID, *user.ResetTokenHash, passwordHash); err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			// Consumed or reissued since the scan.
			s.auditLogger.LogPasswordReset(pkglogger.AuditEvent{
				EventType:     "reset_completed",
				UserID:        user.ID,
				FailureReason: "token_consumed",
			})
			return models.ErrInvalidToken
		}
		s.logger.Error("failed to update password", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogPasswordReset(pkglogger.AuditEvent{
		EventType: "reset_completed",
		UserID:    user.ID,
		Success:   true,
	})

	return nil
}
