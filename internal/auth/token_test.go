package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onevector/talenthub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-characters-long!"

func testClaims() models.SessionClaims {
	return models.SessionClaims{
		UserID:   "user-123",
		Email:    "ada@example.com",
		Role:     models.RoleAdmin,
		Username: "ada",
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, err := tm.Issue(testClaims(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "ada", claims.Username)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenManager_IssueCustomTTL(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, err := tm.Issue(testClaims(), 10*time.Minute)
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := tm.Issue(testClaims(), time.Hour)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify(token)
	assert.True(t, errors.Is(err, models.ErrInvalidToken))
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenManager(testSecret, time.Hour)
	verifier := NewTokenManager("another-secret-32-characters-ok!", time.Hour)

	token, err := issuer.Issue(testClaims(), 0)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.True(t, errors.Is(err, models.ErrInvalidToken))
}

func TestTokenManager_Verify_RejectsOtherAlgorithms(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	claims := testClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		method jwt.SigningMethod
		key    interface{}
	}{
		{"none", jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType},
		{"HS512", jwt.SigningMethodHS512, []byte(testSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(tt.method, &claims).SignedString(tt.key)
			require.NoError(t, err)

			_, err = tm.Verify(token)
			assert.True(t, errors.Is(err, models.ErrInvalidToken))
		})
	}
}

func TestTokenManager_Verify_Malformed(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tm.Verify(token)
		assert.True(t, errors.Is(err, models.ErrInvalidToken), "token %q", token)
	}
}
