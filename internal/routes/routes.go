package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/onevector/talenthub/internal/auth"
	"github.com/onevector/talenthub/internal/handlers"
	"github.com/onevector/talenthub/internal/middleware"
	"github.com/onevector/talenthub/internal/models"
)

// Handlers groups the HTTP handlers mounted under /api
type Handlers struct {
	Auth       *handlers.AuthHandler
	MagicLink  *handlers.MagicLinkHandler
	Candidates *handlers.CandidateHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokens auth.TokenVerifier,
	authLimit middleware.RateLimitConfig,
	apiLimit middleware.RateLimitConfig,
) {
	limitByIP := middleware.RateLimitByIP(authLimit)
	selfOrStaff := auth.RequireSelfOrRole("id", models.RoleAdmin, models.RolePowerUser)
	selfEmailOrStaff := auth.RequireSelfEmailOrRole("email", models.RoleAdmin, models.RolePowerUser)

	router.Route("/api", func(r chi.Router) {
		// Public routes - no authentication required
		r.With(limitByIP).Post("/login", h.Auth.Login)
		r.With(limitByIP).Post("/forgot-password", h.Auth.ForgotPassword)
		r.With(limitByIP).Post("/reset-password", h.Auth.ResetPassword)
		r.With(limitByIP).Post("/send-magic-link", h.MagicLink.SendMagicLink)
		r.Get("/verify-token", h.MagicLink.VerifyToken)
		r.Post("/expire-token", h.MagicLink.ExpireToken)

		// Onboarding form
		r.With(limitByIP).Post("/submit-candidate", h.Candidates.SubmitCandidate)
		r.Get("/skills", h.Candidates.ListSkills)
		r.Get("/certifications", h.Candidates.ListCertifications)

		// Protected routes - authentication required
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(tokens))
			r.Use(middleware.RateLimitByUser(apiLimit))

			r.With(selfOrStaff).Get("/personalDetails/{id}", h.Candidates.GetPersonalDetails)
			r.With(selfEmailOrStaff).Get("/user/info/email", h.Candidates.GetUserInfoByEmail)
			r.With(selfOrStaff).Get("/resume/{id}", h.Candidates.ViewResume)

			r.With(selfOrStaff).Put("/candidates/{id}/personal", h.Candidates.UpdatePersonalDetails)
			r.With(selfOrStaff).Put("/candidates/{id}/qualifications", h.Candidates.UpdateQualifications)
			r.With(selfOrStaff).Put("/candidates/{id}/skills", h.Candidates.UpdateSkills)
			r.With(selfOrStaff).Put("/candidates/{id}/certifications", h.Candidates.UpdateCertifications)

			// Dashboard listing
			r.With(auth.RequireRole(models.RoleAdmin, models.RolePowerUser)).Get("/candidates", h.Candidates.ListCandidates)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Get("/magic-links", h.MagicLink.ListMagicLinks)
				r.Put("/candidates/{id}/role", h.Candidates.UpdateRole)
				r.Delete("/candidates/{id}", h.Candidates.DeleteCandidate)
				r.Delete("/personaldetails/{id}", h.Candidates.DeletePersonalDetails)
				r.Delete("/qualifications/{id}", h.Candidates.DeleteQualifications)
				r.Delete("/user_skills/{id}", h.Candidates.DeleteUserSkills)
				r.Delete("/user_certifications/{id}", h.Candidates.DeleteUserCertifications)
			})
		})
	})
}
