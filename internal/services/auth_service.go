package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/onevector/talenthub/internal/auth"
	"github.com/onevector/talenthub/internal/models"
	pkglogger "github.com/onevector/talenthub/pkg/logger"
)

// Hasher hashes and verifies passwords and reset tokens
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(claims models.SessionClaims, ttl time.Duration) (string, error)
}

// LoginUserRepository is the subset of UserRepository needed for login
type LoginUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService handles credential login
type AuthService struct {
	repo        LoginUserRepository
	hasher      Hasher
	tokens      TokenIssuer
	sessionTTL  time.Duration
	delay       *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService. delay may be nil.
func NewAuthService(
	repo LoginUserRepository,
	hasher Hasher,
	tokens TokenIssuer,
	sessionTTL time.Duration,
	delay *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		sessionTTL:  sessionTTL,
		delay:       delay,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// LoginResult is a successful login
type LoginResult struct {
	User      models.UserInfo
	Token     string
	Dashboard string
}

// Login verifies credentials and issues a session token.
// Unknown email and wrong password both return models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*LoginResult, error) {
	start := time.Now()
	email = strings.TrimSpace(email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("login failed: invalid credentials")
		event := pkglogger.AuditEvent{
			EventType:     "login_failed",
			Email:         email,
			IPAddress:     ipAddress,
			FailureReason: "invalid_credentials",
		}
		if user != nil {
			event.UserID = user.ID
		}
		s.auditLogger.LogAuthAttempt(event)
		s.delay.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(models.SessionClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		Username: user.Username,
	}, s.sessionTTL)
	if err != nil {
		s.logger.Error("failed to issue session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &LoginResult{
		User:      user.Info(),
		Token:     token,
		Dashboard: models.DashboardForRole(user.Role),
	}, nil
}
