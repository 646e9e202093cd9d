package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onevector/talenthub/internal/auth"
	"github.com/onevector/talenthub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-32-characters-long!"

func newTestAuthService(repo LoginUserRepository) (*AuthService, *auth.TokenManager) {
	tm := auth.NewTokenManager(testJWTSecret, time.Hour)
	logger, auditLogger := testLoggers()
	return NewAuthService(repo, testHasher(), tm, time.Hour, nil, logger, auditLogger), tm
}

func TestAuthService_Login_Success(t *testing.T) {
	user := NewTestUser("user-1", "ada@example.com", "correct horse", models.RoleAdmin)
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			assert.Equal(t, "ada@example.com", email)
			return user, nil
		},
	}
	svc, tm := newTestAuthService(repo)

	result, err := svc.Login(context.Background(), " ada@example.com ", "correct horse", "203.0.113.7")

	require.NoError(t, err)
	assert.Equal(t, "/admin-dashboard", result.Dashboard)
	assert.Equal(t, models.UserInfo{ID: "user-1", Username: "user_user-1", Email: "ada@example.com", Role: models.RoleAdmin}, result.User)

	claims, err := tm.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "user_user-1", claims.Username)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestAuthService_Login_DashboardByRole(t *testing.T) {
	tests := []struct {
		role      string
		dashboard string
	}{
		{models.RoleAdmin, "/admin-dashboard"},
		{models.RolePowerUser, "/power-user-dashboard"},
		{models.RoleUser, "/user-dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			user := NewTestUser("u", "u@example.com", "pw", tt.role)
			svc, _ := newTestAuthService(&MockUserRepository{
				GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
			})

			result, err := svc.Login(context.Background(), "u@example.com", "pw", "")

			require.NoError(t, err)
			assert.Equal(t, tt.dashboard, result.Dashboard)
		})
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	user := NewTestUser("user-1", "ada@example.com", "correct horse", models.RoleUser)
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, models.ErrNotFound
		},
	}
	svc, _ := newTestAuthService(repo)

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "correct horse", "")
	_, wrongErr := svc.Login(context.Background(), "ada@example.com", "battery staple", "")

	assert.True(t, errors.Is(unknownErr, models.ErrInvalidCredentials))
	assert.True(t, errors.Is(wrongErr, models.ErrInvalidCredentials))
	assert.Equal(t, unknownErr, wrongErr)
}

func TestAuthService_Login_MalformedStoredHash(t *testing.T) {
	svc, _ := newTestAuthService(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: "u", Email: email, PasswordHash: "not-a-bcrypt-hash"}, nil
		},
	})

	_, err := svc.Login(context.Background(), "ada@example.com", "anything", "")

	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	svc, _ := newTestAuthService(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, errors.New("connection refused")
		},
	})

	_, err := svc.Login(context.Background(), "ada@example.com", "pw", "")

	assert.True(t, errors.Is(err, models.ErrInternalServer))
}

func TestAuthService_Login_FailurePadded(t *testing.T) {
	tm := auth.NewTokenManager(testJWTSecret, time.Hour)
	logger, auditLogger := testLoggers()
	delay := auth.NewTimingDelay(auth.TimingConfig{BaseDelay: 30 * time.Millisecond})
	svc := NewAuthService(&MockUserRepository{}, testHasher(), tm, time.Hour, delay, logger, auditLogger)

	start := time.Now()
	_, err := svc.Login(context.Background(), "nobody@example.com", "pw", "")

	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
