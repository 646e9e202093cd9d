package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/onevector/talenthub/internal/models"
	"github.com/onevector/talenthub/internal/services"
	pkghttp "github.com/onevector/talenthub/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// WithChiRouteContext sets chi URL parameters on a request that bypasses the router.
//
// Example usage:
//
//	req := httptest.NewRequest("GET", "/api/personalDetails/abc", nil)
//	req = WithChiRouteContext(req, map[string]string{"id": "abc"})
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, email, password, ipAddress)
}

// MockPasswordResetService implements PasswordResetServiceInterface for testing
type MockPasswordResetService struct {
	RequestResetFunc func(ctx context.Context, email string) error
	ConsumeResetFunc func(ctx context.Context, token, newPassword string) error
}

func (m *MockPasswordResetService) RequestReset(ctx context.Context, email string) error {
	if m.RequestResetFunc == nil {
		return nil
	}
	return m.RequestResetFunc(ctx, email)
}

func (m *MockPasswordResetService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if m.ConsumeResetFunc == nil {
		return nil
	}
	return m.ConsumeResetFunc(ctx, token, newPassword)
}

// MockMagicLinkService implements MagicLinkServiceInterface for testing
type MockMagicLinkService struct {
	CreateLinkFunc func(ctx context.Context, email string) error
	VerifyLinkFunc func(ctx context.Context, token string) (string, error)
	ExpireLinkFunc func(ctx context.Context, token string) error
	ListLinksFunc  func(ctx context.Context) ([]*models.MagicLink, error)
}

func (m *MockMagicLinkService) CreateLink(ctx context.Context, email string) error {
	if m.CreateLinkFunc == nil {
		return nil
	}
	return m.CreateLinkFunc(ctx, email)
}

func (m *MockMagicLinkService) VerifyLink(ctx context.Context, token string) (string, error) {
	if m.VerifyLinkFunc == nil {
		return "", models.ErrNotFound
	}
	return m.VerifyLinkFunc(ctx, token)
}

func (m *MockMagicLinkService) ExpireLink(ctx context.Context, token string) error {
	if m.ExpireLinkFunc == nil {
		return nil
	}
	return m.ExpireLinkFunc(ctx, token)
}

func (m *MockMagicLinkService) ListLinks(ctx context.Context) ([]*models.MagicLink, error) {
	if m.ListLinksFunc == nil {
		return []*models.MagicLink{}, nil
	}
	return m.ListLinksFunc(ctx)
}

// MockCandidateService implements CandidateServiceInterface for testing.
// Unset funcs succeed with empty results.
type MockCandidateService struct {
	SubmitFunc                func(ctx context.Context, in *services.SubmitCandidateInput) (*models.UserInfo, error)
	ListFunc                  func(ctx context.Context) ([]*models.CandidateSummary, error)
	ListSkillsFunc            func(ctx context.Context) ([]string, error)
	ListCertificationsFunc    func(ctx context.Context) ([]string, error)
	GetProfileFunc            func(ctx context.Context, id string) (*models.CandidateProfile, error)
	UpdatePersonalDetailsFunc func(ctx context.Context, id string, update models.PersonalDetailsUpdate, resume *services.ResumeUpload) error
	UpdateQualificationsFunc  func(ctx context.Context, id string, q *models.Qualifications) error
	ReplaceSkillsFunc         func(ctx context.Context, id string, names []string) error
	ReplaceCertificationsFunc func(ctx context.Context, id string, names []string) error
	DeleteFunc                func(ctx context.Context, part, id string) error
	ResumeURLFunc             func(ctx context.Context, id string) (string, error)
}

func (m *MockCandidateService) Submit(ctx context.Context, in *services.SubmitCandidateInput) (*models.UserInfo, error) {
	if m.SubmitFunc == nil {
		return &models.UserInfo{Email: in.Email, Username: in.Username, Role: models.RoleUser}, nil
	}
	return m.SubmitFunc(ctx, in)
}

func (m *MockCandidateService) List(ctx context.Context) ([]*models.CandidateSummary, error) {
	if m.ListFunc == nil {
		return []*models.CandidateSummary{}, nil
	}
	return m.ListFunc(ctx)
}

func (m *MockCandidateService) ListSkills(ctx context.Context) ([]string, error) {
	if m.ListSkillsFunc == nil {
		return []string{}, nil
	}
	return m.ListSkillsFunc(ctx)
}

func (m *MockCandidateService) ListCertifications(ctx context.Context) ([]string, error) {
	if m.ListCertificationsFunc == nil {
		return []string{}, nil
	}
	return m.ListCertificationsFunc(ctx)
}

func (m *MockCandidateService) GetProfile(ctx context.Context, id string) (*models.CandidateProfile, error) {
	if m.GetProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetProfileFunc(ctx, id)
}

func (m *MockCandidateService) UpdatePersonalDetails(ctx context.Context, id string, update models.PersonalDetailsUpdate, resume *services.ResumeUpload) error {
	if m.UpdatePersonalDetailsFunc == nil {
		return nil
	}
	return m.UpdatePersonalDetailsFunc(ctx, id, update, resume)
}

func (m *MockCandidateService) UpdateQualifications(ctx context.Context, id string, q *models.Qualifications) error {
	if m.UpdateQualificationsFunc == nil {
		return nil
	}
	return m.UpdateQualificationsFunc(ctx, id, q)
}

func (m *MockCandidateService) ReplaceSkills(ctx context.Context, id string, names []string) error {
	if m.ReplaceSkillsFunc == nil {
		return nil
	}
	return m.ReplaceSkillsFunc(ctx, id, names)
}

func (m *MockCandidateService) ReplaceCertifications(ctx context.Context, id string, names []string) error {
	if m.ReplaceCertificationsFunc == nil {
		return nil
	}
	return m.ReplaceCertificationsFunc(ctx, id, names)
}

func (m *MockCandidateService) DeletePersonalDetails(ctx context.Context, id string) error {
	return m.delete(ctx, "personaldetails", id)
}

func (m *MockCandidateService) DeleteQualifications(ctx context.Context, id string) error {
	return m.delete(ctx, "qualifications", id)
}

func (m *MockCandidateService) DeleteSkills(ctx context.Context, id string) error {
	return m.delete(ctx, "user_skills", id)
}

func (m *MockCandidateService) DeleteCertifications(ctx context.Context, id string) error {
	return m.delete(ctx, "user_certifications", id)
}

func (m *MockCandidateService) delete(ctx context.Context, part, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, part, id)
}

func (m *MockCandidateService) ResumeURL(ctx context.Context, id string) (string, error) {
	if m.ResumeURLFunc == nil {
		return "", models.ErrNotFound
	}
	return m.ResumeURLFunc(ctx, id)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetInfoByEmailFunc func(ctx context.Context, email string) (*models.UserInfo, error)
	UpdateRoleFunc     func(ctx context.Context, id, role string) error
	DeleteUserFunc     func(ctx context.Context, id string) error
}

func (m *MockUserService) GetInfoByEmail(ctx context.Context, email string) (*models.UserInfo, error) {
	if m.GetInfoByEmailFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetInfoByEmailFunc(ctx, email)
}

func (m *MockUserService) UpdateRole(ctx context.Context, id, role string) error {
	if m.UpdateRoleFunc == nil {
		return nil
	}
	return m.UpdateRoleFunc(ctx, id, role)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc == nil {
		return nil
	}
	return m.DeleteUserFunc(ctx, id)
}
