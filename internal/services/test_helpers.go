package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/onevector/talenthub/internal/models"
	pkgauth "github.com/onevector/talenthub/pkg/auth"
	pkglogger "github.com/onevector/talenthub/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository implements every user-repository interface for testing
type MockUserRepository struct {
	GetByIDFunc                     func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc                  func(ctx context.Context, email string) (*models.User, error)
	CreateFunc                      func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateRoleFunc                  func(ctx context.Context, id, role string) error
	DeleteFunc                      func(ctx context.Context, id string) error
	ListWithPendingResetFunc        func(ctx context.Context) ([]*models.User, error)
	SetResetTokenFunc               func(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	UpdatePasswordAndClearResetFunc func(ctx context.Context, id, tokenHash, passwordHash string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, id, role)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) ListWithPendingReset(ctx context.Context) ([]*models.User, error) {
	if m.ListWithPendingResetFunc != nil {
		return m.ListWithPendingResetFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockUserRepository) UpdatePasswordAndClearReset(ctx context.Context, id, tokenHash, passwordHash string) error {
	if m.UpdatePasswordAndClearResetFunc != nil {
		return m.UpdatePasswordAndClearResetFunc(ctx, id, tokenHash, passwordHash)
	}
	return nil
}

// InMemoryMagicLinkRepository is a MagicLinkRepository backed by a slice.
// ConsumeAttempt holds the mutex for check and increment, like the single UPDATE it stands in for.
type InMemoryMagicLinkRepository struct {
	mu    sync.Mutex
	Links []*models.MagicLink
	Err   error
}

func (r *InMemoryMagicLinkRepository) Create(ctx context.Context, email, tokenHash string, expiresAt time.Time) (*models.MagicLink, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	link := &models.MagicLink{
		ID:        "link-" + tokenHash[:8],
		Email:     email,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	r.Links = append(r.Links, link)
	return link, nil
}

func (r *InMemoryMagicLinkRepository) find(tokenHash string) *models.MagicLink {
	for i := len(r.Links) - 1; i >= 0; i-- {
		if r.Links[i].TokenHash == tokenHash {
			return r.Links[i]
		}
	}
	return nil
}

func (r *InMemoryMagicLinkRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.MagicLink, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	link := r.find(tokenHash)
	if link == nil {
		return nil, models.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (r *InMemoryMagicLinkRepository) ConsumeAttempt(ctx context.Context, tokenHash string, maxAttempts int, now time.Time) (*models.MagicLink, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	link := r.find(tokenHash)
	if link == nil || !link.IsUsable(now, maxAttempts) {
		return nil, models.ErrNotFound
	}
	link.Attempts++
	copied := *link
	return &copied, nil
}

func (r *InMemoryMagicLinkRepository) Expire(ctx context.Context, tokenHash string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, link := range r.Links {
		if link.TokenHash == tokenHash {
			link.Expired = true
		}
	}
	return nil
}

func (r *InMemoryMagicLinkRepository) List(ctx context.Context) ([]*models.MagicLink, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*models.MagicLink(nil), r.Links...), nil
}

// SentMail is a message captured by MockMailer
type SentMail struct {
	To      string
	Subject string
	HTML    string
}

// MockMailer records sent messages
type MockMailer struct {
	Sent []SentMail
	Err  error
}

func (m *MockMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, HTML: html})
	return nil
}

// MockResumeStore implements ResumeStore for testing
type MockResumeStore struct {
	UploadFunc     func(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error)
	PresignGetFunc func(ctx context.Context, storedPath string) (string, error)
}

func (m *MockResumeStore) Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, filename, contentType, body, size)
	}
	return "resumes/test.pdf", nil
}

func (m *MockResumeStore) PresignGet(ctx context.Context, storedPath string) (string, error) {
	if m.PresignGetFunc != nil {
		return m.PresignGetFunc(ctx, storedPath)
	}
	return "https://bucket.example.com/" + storedPath + "?X-Amz-Signature=test", nil
}

// MockCandidateRepository implements CandidateRepository for testing
type MockCandidateRepository struct {
	CreateFunc                func(ctx context.Context, c *models.NewCandidate) (*models.User, error)
	ListFunc                  func(ctx context.Context) ([]*models.CandidateSummary, error)
	ListSkillsFunc            func(ctx context.Context) ([]string, error)
	ListCertificationsFunc    func(ctx context.Context) ([]string, error)
	GetProfileFunc            func(ctx context.Context, id string) (*models.CandidateProfile, error)
	UpdatePersonalDetailsFunc func(ctx context.Context, id string, update models.PersonalDetailsUpdate) error
	UpdateQualificationsFunc  func(ctx context.Context, id string, q *models.Qualifications) error
	ReplaceSkillsFunc         func(ctx context.Context, id string, names []string) error
	ReplaceCertificationsFunc func(ctx context.Context, id string, names []string) error
	DeleteFunc                func(ctx context.Context, table, id string) error
	GetResumePathFunc         func(ctx context.Context, id string) (string, error)
}

func (m *MockCandidateRepository) Create(ctx context.Context, c *models.NewCandidate) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCandidateRepository) List(ctx context.Context) ([]*models.CandidateSummary, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.CandidateSummary{}, nil
}

func (m *MockCandidateRepository) ListSkills(ctx context.Context) ([]string, error) {
	if m.ListSkillsFunc != nil {
		return m.ListSkillsFunc(ctx)
	}
	return []string{}, nil
}

func (m *MockCandidateRepository) ListCertifications(ctx context.Context) ([]string, error) {
	if m.ListCertificationsFunc != nil {
		return m.ListCertificationsFunc(ctx)
	}
	return []string{}, nil
}

func (m *MockCandidateRepository) GetProfile(ctx context.Context, id string) (*models.CandidateProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCandidateRepository) UpdatePersonalDetails(ctx context.Context, id string, update models.PersonalDetailsUpdate) error {
	if m.UpdatePersonalDetailsFunc != nil {
		return m.UpdatePersonalDetailsFunc(ctx, id, update)
	}
	return nil
}

func (m *MockCandidateRepository) UpdateQualifications(ctx context.Context, id string, q *models.Qualifications) error {
	if m.UpdateQualificationsFunc != nil {
		return m.UpdateQualificationsFunc(ctx, id, q)
	}
	return nil
}

func (m *MockCandidateRepository) ReplaceSkills(ctx context.Context, id string, names []string) error {
	if m.ReplaceSkillsFunc != nil {
		return m.ReplaceSkillsFunc(ctx, id, names)
	}
	return nil
}

func (m *MockCandidateRepository) ReplaceCertifications(ctx context.Context, id string, names []string) error {
	if m.ReplaceCertificationsFunc != nil {
		return m.ReplaceCertificationsFunc(ctx, id, names)
	}
	return nil
}

func (m *MockCandidateRepository) delete(ctx context.Context, table, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, table, id)
	}
	return nil
}

func (m *MockCandidateRepository) DeletePersonalDetails(ctx context.Context, id string) error {
	return m.delete(ctx, "personaldetails", id)
}

func (m *MockCandidateRepository) DeleteQualifications(ctx context.Context, id string) error {
	return m.delete(ctx, "qualifications", id)
}

func (m *MockCandidateRepository) DeleteSkills(ctx context.Context, id string) error {
	return m.delete(ctx, "user_skills", id)
}

func (m *MockCandidateRepository) DeleteCertifications(ctx context.Context, id string) error {
	return m.delete(ctx, "user_certifications", id)
}

func (m *MockCandidateRepository) GetResumePath(ctx context.Context, id string) (string, error) {
	if m.GetResumePathFunc != nil {
		return m.GetResumePathFunc(ctx, id)
	}
	return "", models.ErrNotFound
}

// testHasher uses the minimum bcrypt cost to keep tests fast
func testHasher() *pkgauth.BcryptHasher {
	return pkgauth.NewBcryptHasher(bcrypt.MinCost)
}

func testLoggers() (*slog.Logger, *pkglogger.AuditLogger) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return logger, pkglogger.NewAuditLogger(logger)
}

// NewTestUser creates a user whose password hash matches password
func NewTestUser(id, email, password, role string) *models.User {
	hash, err := testHasher().Hash(password)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	return &models.User{
		ID:           id,
		Username:     "user_" + id,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// withResetToken attaches a hashed reset token to u
func withResetToken(u *models.User, token string, expiresAt time.Time) *models.User {
	hash, err := testHasher().Hash(token)
	if err != nil {
		panic(err)
	}
	u.ResetTokenHash = &hash
	u.ResetTokenExpiry = &expiresAt
	return u
}

func ptr[T any](v T) *T {
	return &v
}
