package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/onevector/talenthub/internal/models"
	pkghttp "github.com/onevector/talenthub/pkg/http"
)

// MagicLinkServiceInterface defines the interface for onboarding invitations
type MagicLinkServiceInterface interface {
	CreateLink(ctx context.Context, email string) error
	VerifyLink(ctx context.Context, token string) (string, error)
	ExpireLink(ctx context.Context, token string) error
	ListLinks(ctx context.Context) ([]*models.MagicLink, error)
}

// MagicLinkHandler handles onboarding invitation requests
type MagicLinkHandler struct {
	service MagicLinkServiceInterface
}

// NewMagicLinkHandler creates a new MagicLinkHandler
func NewMagicLinkHandler(service MagicLinkServiceInterface) *MagicLinkHandler {
	return &MagicLinkHandler{service: service}
}

// SendMagicLinkRequest represents the request body for issuing an invitation
type SendMagicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ExpireTokenRequest represents the request body for revoking an invitation
type ExpireTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyTokenResponse is returned for a valid invitation
type VerifyTokenResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// SendMagicLink issues an invitation and mails it
// @Router /api/send-magic-link [post]
func (h *MagicLinkHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req SendMagicLinkRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.CreateLink(r.Context(), req.Email); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Email is required")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to send magic link")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Magic link sent successfully")
}

// VerifyToken counts one use of the invitation in ?token= and returns its email
// @Router /api/verify-token [get]
func (h *MagicLinkHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		pkghttp.WriteBadRequest(w, "Token is required")
		return
	}

	email, err := h.service.VerifyLink(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteBadRequest(w, "Invalid token")
		case errors.Is(err, models.ErrInvalidOrExpiredToken):
			pkghttp.WriteBadRequest(w, "Invalid or expired token")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Token is required")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, VerifyTokenResponse{
		Message: "Token is valid",
		Email:   email,
	})
}

// ExpireToken revokes an invitation
// @Router /api/expire-token [post]
func (h *MagicLinkHandler) ExpireToken(w http.ResponseWriter, r *http.Request) {
	var req ExpireTokenRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Token is required")
		return
	}

	if err := h.service.ExpireLink(r.Context(), req.Token); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Token expired successfully")
}

// ListMagicLinks returns every invitation (admin only)
// @Router /api/magic-links [get]
func (h *MagicLinkHandler) ListMagicLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListLinks(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch magic links")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, links)
}
