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

// MagicLinkRepository defines the interface for onboarding link persistence
type MagicLinkRepository interface {
	Create(ctx context.Context, email, tokenHash string, expiresAt time.Time) (*models.MagicLink, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.MagicLink, error)
	ConsumeAttempt(ctx context.Context, tokenHash string, maxAttempts int, now time.Time) (*models.MagicLink, error)
	Expire(ctx context.Context, tokenHash string) error
	List(ctx context.Context) ([]*models.MagicLink, error)
}

// MagicLinkService issues and verifies onboarding invitations
type MagicLinkService struct {
	repo        MagicLinkRepository
	mailer      Mailer
	frontendURL string
	linkTTL     time.Duration
	maxAttempts int
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	now      func() time.Time
	newToken func() (string, error)
}

// NewMagicLinkService creates a new MagicLinkService
func NewMagicLinkService(
	repo MagicLinkRepository,
	mailer Mailer,
	frontendURL string,
	linkTTL time.Duration,
	maxAttempts int,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *MagicLinkService {
	if maxAttempts < 1 {
		maxAttempts = models.MaxMagicLinkAttempts
	}

	return &MagicLinkService{
		repo:        repo,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		linkTTL:     linkTTL,
		maxAttempts: maxAttempts,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
		newToken:    pkgauth.GenerateOpaqueToken,
	}
}

// CreateLink stores a fresh invitation for email and mails the onboarding URL
func (s *MagicLinkService) CreateLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.ErrBadRequest
	}

	token, err := s.newToken()
	if err != nil {
		s.logger.Error("failed to generate magic link token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	link, err := s.repo.Create(ctx, email, pkgauth.HashToken(token), s.now().Add(s.linkTTL))
	if err != nil {
		s.logger.Error("failed to create magic link", slog.Any("error", err))
		return models.ErrInternalServer
	}

	onboardURL := s.frontendURL + "/onboard?token=" + url.QueryEscape(token)
	subject, html := onboardingEmail(onboardURL, s.linkTTL, s.maxAttempts)

	if err := s.mailer.Send(ctx, email, subject, html); err != nil {
		s.logger.Error("failed to send magic link email", slog.String("link_id", link.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogOnboarding(pkglogger.AuditEvent{
		EventType: "magic_link_sent",
		Email:     email,
		Success:   true,
	})

	return nil
}

// VerifyLink counts one use of token and returns the invited email.
// Every successful verification consumes an attempt.
func (s *MagicLinkService) VerifyLink(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", models.ErrBadRequest
	}

	tokenHash := pkgauth.HashToken(token)

	if _, err := s.repo.GetByTokenHash(ctx, tokenHash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogOnboarding(pkglogger.AuditEvent{
				EventType:     "magic_link_verified",
				FailureReason: "unknown_token",
			})
			return "", models.ErrNotFound
		}
		s.logger.Error("failed to get magic link", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	link, err := s.repo.ConsumeAttempt(ctx, tokenHash, s.maxAttempts, s.now())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogOnboarding(pkglogger.AuditEvent{
				EventType:     "magic_link_verified",
				FailureReason: "invalid_or_expired",
			})
			return "", models.ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to consume magic link attempt", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.auditLogger.LogOnboarding(pkglogger.AuditEvent{
		EventType: "magic_link_verified",
		Email:     link.Email,
		Success:   true,
	})

	return link.Email, nil
}

// ExpireLink marks token as expired whatever its current state
func (s *MagicLinkService) ExpireLink(ctx context.Context, token string) error {
	if token == "" {
		return models.ErrBadRequest
	}

	if err := s.repo.Expire(ctx, pkgauth.HashToken(token)); err != nil {
		s.logger.Error("failed to expire magic link", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogOnboarding(pkglogger.AuditEvent{
		EventType: "magic_link_expired",
		Success:   true,
	})

	return nil
}

// ListLinks returns every stored invitation without token material
func (s *MagicLinkService) ListLinks(ctx context.Context) ([]*models.MagicLink, error) {
	links, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list magic links", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return links, nil
}
