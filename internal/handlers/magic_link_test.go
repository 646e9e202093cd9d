package handlers_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onevector/talenthub/internal/handlers"
	"github.com/onevector/talenthub/internal/models"
	pkghttp "github.com/onevector/talenthub/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestSendMagicLink_Success(t *testing.T) {
	var gotEmail string
	service := &handlers.MockMagicLinkService{
		CreateLinkFunc: func(ctx context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}

	handler := handlers.NewMagicLinkHandler(service)
	req := handlers.NewTestRequest(t, "POST", "/api/send-magic-link", handlers.SendMagicLinkRequest{Email: "new@example.com"})

	w := httptest.NewRecorder()
	handler.SendMagicLink(w, req)

	var resp pkghttp.MessageResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "Magic link sent successfully", resp.Message)
	assert.Equal(t, "new@example.com", gotEmail)
}

func TestSendMagicLink_Errors(t *testing.T) {
	t.Run("invalid email", func(t *testing.T) {
		handler := handlers.NewMagicLinkHandler(&handlers.MockMagicLinkService{})
		w := httptest.NewRecorder()
		handler.SendMagicLink(w, handlers.NewTestRequest(t, "POST", "/api/send-magic-link", handlers.SendMagicLinkRequest{Email: "bad"}))
		handlers.AssertErrorResponse(t, w, 400, "bad_request")
	})

	t.Run("mail failure", func(t *testing.T) {
		handler := handlers.NewMagicLinkHandler(&handlers.MockMagicLinkService{
			CreateLinkFunc: func(ctx context.Context, email string) error {
				return models.ErrInternalServer
			},
		})
		w := httptest.NewRecorder()
		handler.SendMagicLink(w, handlers.NewTestRequest(t, "POST", "/api/send-magic-link", handlers.SendMagicLinkRequest{Email: "new@example.com"}))
		handlers.AssertErrorResponse(t, w, 500, "internal_error")
	})
}

func TestVerifyToken(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{"valid", "/api/verify-token?token=abc", nil, 200, ""},
		{"missing token", "/api/verify-token", nil, 400, "bad_request"},
		{"unknown token", "/api/verify-token?token=abc", models.ErrNotFound, 400, "bad_request"},
		{"used up", "/api/verify-token?token=abc", models.ErrInvalidOrExpiredToken, 400, "bad_request"},
		{"store failure", "/api/verify-token?token=abc", errors.New("boom"), 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &handlers.MockMagicLinkService{
				VerifyLinkFunc: func(ctx context.Context, token string) (string, error) {
					assert.Equal(t, "abc", token)
					if tt.serviceErr != nil {
						return "", tt.serviceErr
					}
					return "new@example.com", nil
				},
			}
			handler := handlers.NewMagicLinkHandler(service)

			w := httptest.NewRecorder()
			handler.VerifyToken(w, httptest.NewRequest("GET", tt.url, nil))

			if tt.wantError == "" {
				var resp handlers.VerifyTokenResponse
				handlers.AssertJSONResponse(t, w, tt.wantStatus, &resp)
				assert.Equal(t, "Token is valid", resp.Message)
				assert.Equal(t, "new@example.com", resp.Email)
				return
			}
			handlers.AssertErrorResponse(t, w, tt.wantStatus, tt.wantError)
		})
	}
}

func TestExpireToken(t *testing.T) {
	var gotToken string
	handler := handlers.NewMagicLinkHandler(&handlers.MockMagicLinkService{
		ExpireLinkFunc: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	})

	w := httptest.NewRecorder()
	handler.ExpireToken(w, handlers.NewTestRequest(t, "POST", "/api/expire-token", handlers.ExpireTokenRequest{Token: "abc"}))

	var resp pkghttp.MessageResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "Token expired successfully", resp.Message)
	assert.Equal(t, "abc", gotToken)

	w = httptest.NewRecorder()
	handler.ExpireToken(w, handlers.NewTestRequest(t, "POST", "/api/expire-token", map[string]string{}))
	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestListMagicLinks_HidesTokenHash(t *testing.T) {
	handler := handlers.NewMagicLinkHandler(&handlers.MockMagicLinkService{
		ListLinksFunc: func(ctx context.Context) ([]*models.MagicLink, error) {
			return []*models.MagicLink{{
				ID:        "l1",
				Email:     "new@example.com",
				TokenHash: "secret-hash",
				ExpiresAt: time.Now().Add(time.Hour),
				Attempts:  1,
			}}, nil
		},
	})

	w := httptest.NewRecorder()
	handler.ListMagicLinks(w, httptest.NewRequest("GET", "/api/magic-links", nil))

	var resp []map[string]interface{}
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Len(t, resp, 1)
	assert.Equal(t, "new@example.com", resp[0]["email"])
	assert.NotContains(t, w.Body.String(), "secret-hash")
}
