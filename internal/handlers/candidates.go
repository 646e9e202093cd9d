package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/onevector/talenthub/internal/models"
	"github.com/onevector/talenthub/internal/services"
	pkghttp "github.com/onevector/talenthub/pkg/http"
)

// MaxUploadSize bounds a multipart request including the resume file
const MaxUploadSize = 10 << 20

// CandidateServiceInterface defines the interface for candidate profile logic
type CandidateServiceInterface interface {
	Submit(ctx context.Context, in *services.SubmitCandidateInput) (*models.UserInfo, error)
	List(ctx context.Context) ([]*models.CandidateSummary, error)
	ListSkills(ctx context.Context) ([]string, error)
	ListCertifications(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, id string) (*models.CandidateProfile, error)
	UpdatePersonalDetails(ctx context.Context, id string, update models.PersonalDetailsUpdate, resume *services.ResumeUpload) error
	UpdateQualifications(ctx context.Context, id string, q *models.Qualifications) error
	ReplaceSkills(ctx context.Context, id string, names []string) error
	ReplaceCertifications(ctx context.Context, id string, names []string) error
	DeletePersonalDetails(ctx context.Context, id string) error
	DeleteQualifications(ctx context.Context, id string) error
	DeleteSkills(ctx context.Context, id string) error
	DeleteCertifications(ctx context.Context, id string) error
	ResumeURL(ctx context.Context, id string) (string, error)
}

// UserServiceInterface defines the interface for account management
type UserServiceInterface interface {
	GetInfoByEmail(ctx context.Context, email string) (*models.UserInfo, error)
	UpdateRole(ctx context.Context, id, role string) error
	DeleteUser(ctx context.Context, id string) error
}

// CandidateHandler handles candidate profile requests
type CandidateHandler struct {
	candidates CandidateServiceInterface
	users      UserServiceInterface
}

// NewCandidateHandler creates a new CandidateHandler
func NewCandidateHandler(candidates CandidateServiceInterface, users UserServiceInterface) *CandidateHandler {
	return &CandidateHandler{
		candidates: candidates,
		users:      users,
	}
}

// Request/Response DTOs

// SubmitCandidateRequest holds the required account fields of the onboarding form
type SubmitCandidateRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// QualificationsRequest represents the body of a qualifications update
type QualificationsRequest struct {
	RecentJob                string `json:"recent_job"`
	PreferredRoles           string `json:"preferred_roles"`
	Availability             string `json:"availability"`
	WorkPermitStatus         string `json:"work_permit_status"`
	PreferredRoleType        string `json:"preferred_role_type"`
	PreferredWorkArrangement string `json:"preferred_work_arrangement"`
	Compensation             string `json:"compensation"`
}

// PersonalDetailsRequest represents a JSON personal details update
type PersonalDetailsRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	PhoneNo      *string `json:"phone_no"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	PostalCode   *string `json:"postal_code"`
	LinkedInURL  *string `json:"linkedin_url" validate:"omitempty,url"`
}

// SkillsRequest represents the body of a skills replacement
type SkillsRequest struct {
	Skills []string `json:"skills" validate:"required,dive,max=100"`
}

// CertificationsRequest represents the body of a certifications replacement
type CertificationsRequest struct {
	Certifications []string `json:"certifications" validate:"required,dive,max=100"`
}

// UpdateRoleRequest represents the body of a role change
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user power_user admin"`
}

// SkillResponse is one entry of the skill catalogue
type SkillResponse struct {
	SkillName string `json:"skill_name"`
}

// CertificationResponse is one entry of the certification catalogue
type CertificationResponse struct {
	CertificationName string `json:"certification_name"`
}

// SubmitCandidate creates an account and profile from a multipart onboarding form
// @Router /api/submit-candidate [post]
func (h *CandidateHandler) SubmitCandidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		pkghttp.WriteBadRequest(w, "Invalid form data")
		return
	}

	req := SubmitCandidateRequest{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resume, closeResume, err := formResume(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid resume upload")
		return
	}
	defer closeResume()

	compensation := r.FormValue("preferred_compensation_range")
	if compensation == "" {
		compensation = r.FormValue("compensation")
	}

	info, err := h.candidates.Submit(r.Context(), &services.SubmitCandidateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Details: models.PersonalDetails{
			FirstName:    r.FormValue("first_name"),
			LastName:     r.FormValue("last_name"),
			PhoneNo:      r.FormValue("phone_no"),
			AddressLine1: r.FormValue("address_line1"),
			AddressLine2: r.FormValue("address_line2"),
			City:         r.FormValue("city"),
			State:        r.FormValue("state"),
			Country:      r.FormValue("country"),
			PostalCode:   r.FormValue("postal_code"),
			LinkedInURL:  r.FormValue("linkedin_url"),
		},
		Qualifications: models.Qualifications{
			RecentJob:                r.FormValue("recent_job"),
			PreferredRoles:           r.FormValue("preferred_roles"),
			Availability:             r.FormValue("availability"),
			WorkPermitStatus:         r.FormValue("work_permit_status"),
			PreferredRoleType:        r.FormValue("preferred_role_type"),
			PreferredWorkArrangement: r.FormValue("preferred_work_arrangement"),
			Compensation:             compensation,
		},
		Skills:         formList(r, "skills"),
		Certifications: formList(r, "certifications"),
		Resume:         resume,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this email already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid candidate data")
		default:
			pkghttp.WriteInternalError(w, "An error occurred while submitting candidate data")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, struct {
		Message string           `json:"message"`
		User    *models.UserInfo `json:"user"`
	}{"Candidate data submitted successfully!", info})
}

// ListCandidates returns every candidate with personal details
// @Router /api/candidates [get]
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.candidates.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch candidates")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, candidates)
}

// ListSkills returns the skill catalogue
// @Router /api/skills [get]
func (h *CandidateHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.candidates.ListSkills(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch skills")
		return
	}

	resp := make([]SkillResponse, 0, len(skills))
	for _, s := range skills {
		resp = append(resp, SkillResponse{SkillName: s})
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// ListCertifications returns the certification catalogue
// @Router /api/certifications [get]
func (h *CandidateHandler) ListCertifications(w http.ResponseWriter, r *http.Request) {
	certs, err := h.candidates.ListCertifications(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch certifications")
		return
	}

	resp := make([]CertificationResponse, 0, len(certs))
	for _, c := range certs {
		resp = append(resp, CertificationResponse{CertificationName: c})
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// GetPersonalDetails returns a candidate's full profile
// @Router /api/personalDetails/{id} [get]
func (h *CandidateHandler) GetPersonalDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	profile, err := h.candidates.GetProfile(r.Context(), id)
	if err != nil {
		writeCandidateError(w, err, "Personal details not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}

// GetUserInfoByEmail returns the account registered under ?email=
// @Router /api/user/info/email [get]
func (h *CandidateHandler) GetUserInfoByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		pkghttp.WriteBadRequest(w, "Email is required")
		return
	}

	info, err := h.users.GetInfoByEmail(r.Context(), email)
	if err != nil {
		writeCandidateError(w, err, "User not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, info)
}

// UpdatePersonalDetails applies a partial update from JSON or a multipart form with an optional resume
// @Router /api/candidates/{id}/personal [put]
func (h *CandidateHandler) UpdatePersonalDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	var req PersonalDetailsRequest
	var resume *services.ResumeUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
		if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid form data")
			return
		}
		req = PersonalDetailsRequest{
			FirstName:    formValue(r, "first_name"),
			LastName:     formValue(r, "last_name"),
			PhoneNo:      formValue(r, "phone_no"),
			AddressLine1: formValue(r, "address_line1"),
			AddressLine2: formValue(r, "address_line2"),
			City:         formValue(r, "city"),
			State:        formValue(r, "state"),
			Country:      formValue(r, "country"),
			PostalCode:   formValue(r, "postal_code"),
			LinkedInURL:  formValue(r, "linkedin_url"),
		}

		var closeResume func()
		var err error
		resume, closeResume, err = formResume(r)
		if err != nil {
			pkghttp.WriteBadRequest(w, "Invalid resume upload")
			return
		}
		defer closeResume()
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	update := models.PersonalDetailsUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNo:      req.PhoneNo,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		PostalCode:   req.PostalCode,
		LinkedInURL:  req.LinkedInURL,
	}

	if err := h.candidates.UpdatePersonalDetails(r.Context(), id, update, resume); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "No fields provided to update")
			return
		}
		writeCandidateError(w, err, "Personal details not found")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Personal details updated successfully!")
}

// UpdateQualifications overwrites a candidate's qualifications
// @Router /api/candidates/{id}/qualifications [put]
func (h *CandidateHandler) UpdateQualifications(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	var req QualificationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	err := h.candidates.UpdateQualifications(r.Context(), id, &models.Qualifications{
		RecentJob:                req.RecentJob,
		PreferredRoles:           req.PreferredRoles,
		Availability:             req.Availability,
		WorkPermitStatus:         req.WorkPermitStatus,
		PreferredRoleType:        req.PreferredRoleType,
		PreferredWorkArrangement: req.PreferredWorkArrangement,
		Compensation:             req.Compensation,
	})
	if err != nil {
		writeCandidateError(w, err, "Qualifications not found")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Qualifications updated successfully!")
}

// UpdateSkills replaces a candidate's skill set
// @Router /api/candidates/{id}/skills [put]
func (h *CandidateHandler) UpdateSkills(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	var req SkillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.candidates.ReplaceSkills(r.Context(), id, req.Skills); err != nil {
		writeCandidateError(w, err, "Candidate not found")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Skills updated successfully!")
}

// UpdateCertifications replaces a candidate's certification set
// @Router /api/candidates/{id}/certifications [put]
func (h *CandidateHandler) UpdateCertifications(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	var req CertificationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.candidates.ReplaceCertifications(r.Context(), id, req.Certifications); err != nil {
		writeCandidateError(w, err, "Candidate not found")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Certifications updated successfully!")
}

// UpdateRole changes a candidate's role (admin only)
// @Router /api/candidates/{id}/role [put]
func (h *CandidateHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.users.UpdateRole(r.Context(), id, req.Role); err != nil {
		writeCandidateError(w, err, "Candidate not found")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Role updated successfully")
}

// DeleteCandidate removes the account and its whole profile (admin only)
// @Router /api/candidates/{id} [delete]
func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeCandidateError(w, err, "Candidate not found")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Candidate deleted successfully")
}

// DeletePersonalDetails removes personal details; absent rows are not an error
// @Router /api/personaldetails/{id} [delete]
func (h *CandidateHandler) DeletePersonalDetails(w http.ResponseWriter, r *http.Request) {
	h.deletePart(w, r, h.candidates.DeletePersonalDetails, "Personal details", "Personal details deleted successfully")
}

// DeleteQualifications removes qualifications
// @Router /api/qualifications/{id} [delete]
func (h *CandidateHandler) DeleteQualifications(w http.ResponseWriter, r *http.Request) {
	h.deletePart(w, r, h.candidates.DeleteQualifications, "Qualifications", "Qualifications deleted successfully")
}

// DeleteUserSkills unlinks all skills
// @Router /api/user_skills/{id} [delete]
func (h *CandidateHandler) DeleteUserSkills(w http.ResponseWriter, r *http.Request) {
	h.deletePart(w, r, h.candidates.DeleteSkills, "User skills", "User skills deleted successfully")
}

// DeleteUserCertifications unlinks all certifications
// @Router /api/user_certifications/{id} [delete]
func (h *CandidateHandler) DeleteUserCertifications(w http.ResponseWriter, r *http.Request) {
	h.deletePart(w, r, h.candidates.DeleteCertifications, "User certifications", "User certifications deleted successfully")
}

func (h *CandidateHandler) deletePart(w http.ResponseWriter, r *http.Request, del func(context.Context, string) error, what, done string) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	if err := del(r.Context(), id); err != nil {
		writeCandidateError(w, err, what+" not found")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, done)
}

// ViewResume redirects to a short-lived download URL for the candidate's resume
// @Router /api/resume/{id} [get]
func (h *CandidateHandler) ViewResume(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	url, err := h.candidates.ResumeURL(r.Context(), id)
	if err != nil {
		writeCandidateError(w, err, "Resume not found")
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// candidateID reads and validates the {id} URL parameter
func candidateID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := validate.Var(id, "required,uuid"); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid candidate id")
		return "", false
	}
	return id, true
}

func writeCandidateError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, notFound)
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// formValue returns a pointer to a form field, nil when absent
func formValue(r *http.Request, key string) *string {
	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// formList reads a repeated field ("skills", "skills[]") or a single JSON array value
func formList(r *http.Request, key string) []string {
	values := append(append([]string{}, r.Form[key]...), r.Form[key+"[]"]...)
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var list []string
		if err := json.Unmarshal([]byte(values[0]), &list); err == nil {
			return list
		}
	}
	return values
}

// formResume opens the optional "resume" file. The returned func closes it.
func formResume(r *http.Request) (*services.ResumeUpload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}

	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	return &services.ResumeUpload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Body:        file,
		Size:        header.Size,
	}, func() { file.Close() }, nil
}

func contentType(h *multipart.FileHeader) string {
	return h.Header.Get("Content-Type")
}
