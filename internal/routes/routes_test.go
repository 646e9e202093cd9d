package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/onevector/talenthub/internal/auth"
	"github.com/onevector/talenthub/internal/handlers"
	"github.com/onevector/talenthub/internal/middleware"
	"github.com/onevector/talenthub/internal/models"
	"github.com/onevector/talenthub/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownID = "3f2b8c1e-6a4d-4c2e-9b7a-1d2e3f4a5b6c"
const otherID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenManager) {
	t.Helper()

	tm := auth.NewTokenManager("routes-test-secret-with-32-chars!", time.Hour)
	candidates := &handlers.MockCandidateService{
		GetProfileFunc: func(ctx context.Context, id string) (*models.CandidateProfile, error) {
			return &models.CandidateProfile{PersonalDetails: &models.PersonalDetails{ID: id}}, nil
		},
	}

	router := chi.NewRouter()
	routes.RegisterRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(&handlers.MockAuthService{}, &handlers.MockPasswordResetService{}, nil),
		MagicLink:  handlers.NewMagicLinkHandler(&handlers.MockMagicLinkService{}),
		Candidates: handlers.NewCandidateHandler(candidates, &handlers.MockUserService{
			GetInfoByEmailFunc: func(ctx context.Context, email string) (*models.UserInfo, error) {
				return &models.UserInfo{ID: otherID, Email: email, Role: models.RoleUser}, nil
			},
		}),
	}, tm,
		middleware.RateLimitConfig{RequestsPerMinute: 100},
		middleware.RateLimitConfig{RequestsPerMinute: 100},
	)
	return router, tm
}

func bearer(t *testing.T, tm *auth.TokenManager, id, role string) string {
	t.Helper()
	token, err := tm.Issue(models.SessionClaims{UserID: id, Email: "x@example.com", Role: role}, 0)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoutes_Access(t *testing.T) {
	router, tm := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		role       string
		wantStatus int
	}{
		{"skills are public", "GET", "/api/skills", "", http.StatusOK},
		{"certifications are public", "GET", "/api/certifications", "", http.StatusOK},
		{"profile needs a token", "GET", "/api/personalDetails/" + ownID, "", http.StatusUnauthorized},
		{"own profile", "GET", "/api/personalDetails/" + ownID, models.RoleUser, http.StatusOK},
		{"other profile as user", "GET", "/api/personalDetails/" + otherID, models.RoleUser, http.StatusForbidden},
		{"other profile as power user", "GET", "/api/personalDetails/" + otherID, models.RolePowerUser, http.StatusOK},
		{"own info by email", "GET", "/api/user/info/email?email=x@example.com", models.RoleUser, http.StatusOK},
		{"other info by email as user", "GET", "/api/user/info/email?email=someone@example.com", models.RoleUser, http.StatusForbidden},
		{"other info by email as power user", "GET", "/api/user/info/email?email=someone@example.com", models.RolePowerUser, http.StatusOK},
		{"listing as user", "GET", "/api/candidates", models.RoleUser, http.StatusForbidden},
		{"listing as power user", "GET", "/api/candidates", models.RolePowerUser, http.StatusOK},
		{"magic links as power user", "GET", "/api/magic-links", models.RolePowerUser, http.StatusForbidden},
		{"magic links as admin", "GET", "/api/magic-links", models.RoleAdmin, http.StatusOK},
		{"delete as user", "DELETE", "/api/candidates/" + ownID, models.RoleUser, http.StatusForbidden},
		{"delete as admin", "DELETE", "/api/candidates/" + otherID, models.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", bearer(t, tm, ownID, tt.role))
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRoutes_LoginIsRateLimited(t *testing.T) {
	tm := auth.NewTokenManager("routes-test-secret-with-32-chars!", time.Hour)
	router := chi.NewRouter()
	routes.RegisterRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(&handlers.MockAuthService{}, &handlers.MockPasswordResetService{}, nil),
		MagicLink:  handlers.NewMagicLinkHandler(&handlers.MockMagicLinkService{}),
		Candidates: handlers.NewCandidateHandler(&handlers.MockCandidateService{}, &handlers.MockUserService{}),
	}, tm,
		middleware.RateLimitConfig{RequestsPerMinute: 1},
		middleware.RateLimitConfig{RequestsPerMinute: 100},
	)

	send := func() int {
		req := handlers.NewTestRequest(t, "POST", "/api/login", handlers.LoginRequest{Email: "a@example.com", Password: "pw"})
		req.RemoteAddr = "198.51.100.9:1000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
