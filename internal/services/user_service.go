package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/onevector/talenthub/internal/models"
	pkglogger "github.com/onevector/talenthub/pkg/logger"
)

// UserRepository defines the interface for account data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
}

// UserService handles account lookups and admin account management
type UserService struct {
	repo   UserRepository
	hasher Hasher
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, hasher Hasher, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// GetInfoByEmail returns the public view of the account registered under email
func (s *UserService) GetInfoByEmail(ctx context.Context, email string) (*models.UserInfo, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, models.ErrBadRequest
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	info := user.Info()
	return &info, nil
}

// UpdateRole changes a user's role
func (s *UserService) UpdateRole(ctx context.Context, id, role string) error {
	if !models.IsValidRole(role) {
		return models.ErrBadRequest
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return s.mapRepoError("failed to update role", id, err)
	}

	s.logger.Info("user role updated", slog.String("user_id", id), slog.String("role", role))
	return nil
}

// DeleteUser removes the account and, by cascade, its candidate profile
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError("failed to delete user", id, err)
	}

	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}

// EnsureAdmin creates an admin account for email unless one already exists.
// An existing non-admin account is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			s.logger.Warn("bootstrap admin email belongs to a non-admin account", pkglogger.EmailAttr(email))
		}
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	username, _, _ := strings.Cut(email, "@")
	user, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return err
	}

	s.logger.Info("bootstrap admin created", slog.String("user_id", user.ID))
	return nil
}

func (s *UserService) mapRepoError(msg, id string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.ErrNotFound
	case errors.Is(err, models.ErrBadRequest):
		return models.ErrBadRequest
	default:
		s.logger.Error(msg, slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
}
