package services

import (
	"context"
	"errors"
	"testing"

	"github.com/onevector/talenthub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(repo UserRepository) *UserService {
	logger, _ := testLoggers()
	return NewUserService(repo, testHasher(), logger)
}

func TestUserService_GetInfoByEmail(t *testing.T) {
	user := NewTestUser("user-1", "ada@example.com", "pw", models.RolePowerUser)
	svc := newTestUserService(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, models.ErrNotFound
		},
	})

	info, err := svc.GetInfoByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, &models.UserInfo{ID: "user-1", Username: "user_user-1", Email: "ada@example.com", Role: models.RolePowerUser}, info)

	_, err = svc.GetInfoByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = svc.GetInfoByEmail(context.Background(), "")
	assert.True(t, errors.Is(err, models.ErrBadRequest))
}

func TestUserService_UpdateRole(t *testing.T) {
	var gotRole string
	svc := newTestUserService(&MockUserRepository{
		UpdateRoleFunc: func(ctx context.Context, id, role string) error {
			if id == "missing" {
				return models.ErrNotFound
			}
			gotRole = role
			return nil
		},
	})

	require.NoError(t, svc.UpdateRole(context.Background(), "user-1", models.RolePowerUser))
	assert.Equal(t, models.RolePowerUser, gotRole)

	assert.True(t, errors.Is(svc.UpdateRole(context.Background(), "user-1", "superuser"), models.ErrBadRequest))
	assert.True(t, errors.Is(svc.UpdateRole(context.Background(), "missing", models.RoleUser), models.ErrNotFound))
}

func TestUserService_DeleteUser(t *testing.T) {
	svc := newTestUserService(&MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			switch id {
			case "missing":
				return models.ErrNotFound
			case "broken":
				return errors.New("connection reset")
			}
			return nil
		},
	})

	assert.NoError(t, svc.DeleteUser(context.Background(), "user-1"))
	assert.True(t, errors.Is(svc.DeleteUser(context.Background(), "missing"), models.ErrNotFound))
	assert.True(t, errors.Is(svc.DeleteUser(context.Background(), "broken"), models.ErrInternalServer))
}

func TestUserService_EnsureAdmin_CreatesWhenMissing(t *testing.T) {
	var created *models.User
	svc := newTestUserService(&MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "admin-1"
			created = user
			return user, nil
		},
	})

	require.NoError(t, svc.EnsureAdmin(context.Background(), "root@example.com", "s3cret"))
	require.NotNil(t, created)
	assert.Equal(t, models.RoleAdmin, created.Role)
	assert.Equal(t, "root", created.Username)
	assert.True(t, testHasher().Verify("s3cret", created.PasswordHash))
}

func TestUserService_EnsureAdmin_ExistingAccountUntouched(t *testing.T) {
	existing := NewTestUser("user-1", "root@example.com", "pw", models.RoleUser)
	svc := newTestUserService(&MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) { return existing, nil },
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			t.Fatal("Create should not be called")
			return nil, nil
		},
	})

	assert.NoError(t, svc.EnsureAdmin(context.Background(), "root@example.com", "s3cret"))
	assert.Equal(t, models.RoleUser, existing.Role)
}
