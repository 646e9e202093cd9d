package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/onevector/talenthub/internal/models"
	pkgauth "github.com/onevector/talenthub/pkg/auth"
	pkglogger "github.com/onevector/talenthub/pkg/logger"
)

// CandidateRepository defines the interface for candidate profile persistence
type CandidateRepository interface {
	Create(ctx context.Context, c *models.NewCandidate) (*models.User, error)
	List(ctx context.Context) ([]*models.CandidateSummary, error)
	ListSkills(ctx context.Context) ([]string, error)
	ListCertifications(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, id string) (*models.CandidateProfile, error)
	UpdatePersonalDetails(ctx context.Context, id string, update models.PersonalDetailsUpdate) error
	UpdateQualifications(ctx context.Context, id string, q *models.Qualifications) error
	ReplaceSkills(ctx context.Context, id string, names []string) error
	ReplaceCertifications(ctx context.Context, id string, names []string) error
	DeletePersonalDetails(ctx context.Context, id string) error
	DeleteQualifications(ctx context.Context, id string) error
	DeleteSkills(ctx context.Context, id string) error
	DeleteCertifications(ctx context.Context, id string) error
	GetResumePath(ctx context.Context, id string) (string, error)
}

// ResumeStore keeps uploaded resumes
type ResumeStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error)
	PresignGet(ctx context.Context, storedPath string) (string, error)
}

// ResumeUpload is a resume file attached to a request
type ResumeUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// SubmitCandidateInput is an onboarding form submission
type SubmitCandidateInput struct {
	Username       string
	Email          string
	Password       string
	Details        models.PersonalDetails
	Qualifications models.Qualifications
	Skills         []string
	Certifications []string
	Resume         *ResumeUpload
}

// CandidateService manages candidate profiles
type CandidateService struct {
	repo        CandidateRepository
	resumes     ResumeStore
	hasher      Hasher
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewCandidateService creates a new CandidateService. resumes may be nil when no bucket is configured.
func NewCandidateService(repo CandidateRepository, resumes ResumeStore, hasher Hasher, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *CandidateService {
	return &CandidateService{
		repo:        repo,
		resumes:     resumes,
		hasher:      hasher,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Submit creates the candidate's account and profile. The resume is uploaded
// before the rows are written so a failed upload leaves no partial account.
func (s *CandidateService) Submit(ctx context.Context, in *SubmitCandidateInput) (*models.UserInfo, error) {
	if err := pkgauth.ValidatePassword(in.Password); err != nil {
		return nil, models.ErrBadRequest
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	details := in.Details
	if in.Resume != nil {
		key, err := s.uploadResume(ctx, in.Resume)
		if err != nil {
			return nil, err
		}
		details.ResumePath = &key
	}

	user, err := s.repo.Create(ctx, &models.NewCandidate{
		Username:       strings.TrimSpace(in.Username),
		Email:          strings.TrimSpace(in.Email),
		PasswordHash:   passwordHash,
		Details:        details,
		Qualifications: in.Qualifications,
		Skills:         cleanNames(in.Skills),
		Certifications: cleanNames(in.Certifications),
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			return nil, models.ErrConflict
		case errors.Is(err, models.ErrBadRequest):
			return nil, models.ErrBadRequest
		}
		s.logger.Error("failed to create candidate", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogOnboarding(pkglogger.AuditEvent{
		EventType: "candidate_submitted",
		UserID:    user.ID,
		Email:     user.Email,
		Success:   true,
	})

	info := user.Info()
	return &info, nil
}

func (s *CandidateService) uploadResume(ctx context.Context, r *ResumeUpload) (string, error) {
	if s.resumes == nil {
		s.logger.Warn("resume upload rejected: no storage configured")
		return "", models.ErrBadRequest
	}

	key, err := s.resumes.Upload(ctx, r.Filename, r.ContentType, r.Body, r.Size)
	if err != nil {
		s.logger.Error("failed to upload resume", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	return key, nil
}

func (s *CandidateService) List(ctx context.Context) ([]*models.CandidateSummary, error) {
	candidates, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list candidates", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return candidates, nil
}

func (s *CandidateService) ListSkills(ctx context.Context) ([]string, error) {
	skills, err := s.repo.ListSkills(ctx)
	if err != nil {
		s.logger.Error("failed to list skills", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return skills, nil
}

func (s *CandidateService) ListCertifications(ctx context.Context) ([]string, error) {
	certs, err := s.repo.ListCertifications(ctx)
	if err != nil {
		s.logger.Error("failed to list certifications", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return certs, nil
}

func (s *CandidateService) GetProfile(ctx context.Context, id string) (*models.CandidateProfile, error) {
	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("failed to get candidate profile", id, err)
	}
	return profile, nil
}

// UpdatePersonalDetails applies the non-empty fields of update and, when given, a replacement resume
func (s *CandidateService) UpdatePersonalDetails(ctx context.Context, id string, update models.PersonalDetailsUpdate, resume *ResumeUpload) error {
	if update.IsEmpty() && resume == nil {
		return models.ErrBadRequest
	}

	if resume != nil {
		key, err := s.uploadResume(ctx, resume)
		if err != nil {
			return err
		}
		update.ResumePath = &key
	}

	if err := s.repo.UpdatePersonalDetails(ctx, id, update); err != nil {
		return s.mapRepoError("failed to update personal details", id, err)
	}
	return nil
}

func (s *CandidateService) UpdateQualifications(ctx context.Context, id string, q *models.Qualifications) error {
	if err := s.repo.UpdateQualifications(ctx, id, q); err != nil {
		return s.mapRepoError("failed to update qualifications", id, err)
	}
	return nil
}

func (s *CandidateService) ReplaceSkills(ctx context.Context, id string, names []string) error {
	if err := s.repo.ReplaceSkills(ctx, id, cleanNames(names)); err != nil {
		return s.mapRepoError("failed to replace skills", id, err)
	}
	return nil
}

func (s *CandidateService) ReplaceCertifications(ctx context.Context, id string, names []string) error {
	if err := s.repo.ReplaceCertifications(ctx, id, cleanNames(names)); err != nil {
		return s.mapRepoError("failed to replace certifications", id, err)
	}
	return nil
}

func (s *CandidateService) DeletePersonalDetails(ctx context.Context, id string) error {
	if err := s.repo.DeletePersonalDetails(ctx, id); err != nil {
		return s.mapRepoError("failed to delete personal details", id, err)
	}
	return nil
}

func (s *CandidateService) DeleteQualifications(ctx context.Context, id string) error {
	if err := s.repo.DeleteQualifications(ctx, id); err != nil {
		return s.mapRepoError("failed to delete qualifications", id, err)
	}
	return nil
}

func (s *CandidateService) DeleteSkills(ctx context.Context, id string) error {
	if err := s.repo.DeleteSkills(ctx, id); err != nil {
		return s.mapRepoError("failed to delete skills", id, err)
	}
	return nil
}

func (s *CandidateService) DeleteCertifications(ctx context.Context, id string) error {
	if err := s.repo.DeleteCertifications(ctx, id); err != nil {
		return s.mapRepoError("failed to delete certifications", id, err)
	}
	return nil
}

// ResumeURL returns a short-lived download URL for the candidate's resume
func (s *CandidateService) ResumeURL(ctx context.Context, id string) (string, error) {
	if s.resumes == nil {
		return "", models.ErrNotFound
	}

	storedPath, err := s.repo.GetResumePath(ctx, id)
	if err != nil {
		return "", s.mapRepoError("failed to get resume path", id, err)
	}

	url, err := s.resumes.PresignGet(ctx, storedPath)
	if err != nil {
		s.logger.Error("failed to presign resume url", slog.String("candidate_id", id), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	return url, nil
}

func (s *CandidateService) mapRepoError(msg, id string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.ErrNotFound
	case errors.Is(err, models.ErrBadRequest):
		return models.ErrBadRequest
	default:
		s.logger.Error(msg, slog.String("candidate_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
}

// cleanNames trims names and drops empties and duplicates, keeping first-seen order
func cleanNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
