package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/onevector/talenthub/internal/database"
	"github.com/onevector/talenthub/internal/models"
)

// CandidateRepository persists candidate profiles: personal details,
// qualifications and the skill/certification link tables.
type CandidateRepository struct {
	db *database.DB
}

// NewCandidateRepository creates a new CandidateRepository
func NewCandidateRepository(db *database.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Create inserts the user and every profile row in a single transaction
func (r *CandidateRepository) Create(ctx context.Context, c *models.NewCandidate) (*models.User, error) {
	var created *models.User

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		user, err := createUser(ctx, tx, &models.User{
			Username:     c.Username,
			Email:        c.Email,
			PasswordHash: c.PasswordHash,
			Role:         models.RoleUser,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		d := c.Details
		_, err = tx.Exec(ctx, `
			INSERT INTO personaldetails (id, first_name, last_name, phone_no, address_line1, address_line2,
				city, state, country, postal_code, linkedin_url, resume_path)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			user.ID, d.FirstName, d.LastName, d.PhoneNo, d.AddressLine1, d.AddressLine2,
			d.City, d.State, d.Country, d.PostalCode, d.LinkedInURL, d.ResumePath,
		)
		if err != nil {
			return fmt.Errorf("failed to insert personal details: %w", database.MapPostgresError(err))
		}

		q := c.Qualifications
		_, err = tx.Exec(ctx, `
			INSERT INTO qualifications (id, recent_job, preferred_roles, availability, work_permit_status,
				preferred_role_type, preferred_work_arrangement, compensation)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			user.ID, q.RecentJob, q.PreferredRoles, q.Availability, q.WorkPermitStatus,
			q.PreferredRoleType, q.PreferredWorkArrangement, q.Compensation,
		)
		if err != nil {
			return fmt.Errorf("failed to insert qualifications: %w", database.MapPostgresError(err))
		}

		if err := linkSkills(ctx, tx, user.ID, c.Skills); err != nil {
			return err
		}
		if err := linkCertifications(ctx, tx, user.ID, c.Certifications); err != nil {
			return err
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// linkSkills attaches skills by name, creating unknown names
func linkSkills(ctx context.Context, tx pgx.Tx, userID string, names []string) error {
	for _, name := range names {
		var skillID int
		err := tx.QueryRow(ctx, `
			INSERT INTO skills (skill_name) VALUES ($1)
			ON CONFLICT (skill_name) DO UPDATE SET skill_name = EXCLUDED.skill_name
			RETURNING skill_id`, name).Scan(&skillID)
		if err != nil {
			return fmt.Errorf("failed to resolve skill %q: %w", name, database.MapPostgresError(err))
		}

		_, err = tx.Exec(ctx, `INSERT INTO user_skills (id, skill_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, skillID)
		if err != nil {
			return fmt.Errorf("failed to link skill: %w", database.MapPostgresError(err))
		}
	}
	return nil
}

// linkCertifications attaches certifications by name, creating unknown names
func linkCertifications(ctx context.Context, tx pgx.Tx, userID string, names []string) error {
	for _, name := range names {
		var certID int
		err := tx.QueryRow(ctx, `
			INSERT INTO certifications (certification_name) VALUES ($1)
			ON CONFLICT (certification_name) DO UPDATE SET certification_name = EXCLUDED.certification_name
			RETURNING certification_id`, name).Scan(&certID)
		if err != nil {
			return fmt.Errorf("failed to resolve certification %q: %w", name, database.MapPostgresError(err))
		}

		_, err = tx.Exec(ctx, `INSERT INTO user_certifications (id, certification_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, certID)
		if err != nil {
			return fmt.Errorf("failed to link certification: %w", database.MapPostgresError(err))
		}
	}
	return nil
}

// List returns every user that has personal details
func (r *CandidateRepository) List(ctx context.Context) ([]*models.CandidateSummary, error) {
	query := `
		SELECT u.id, pd.first_name, pd.last_name, u.role, u.username, u.email
		FROM users u
		JOIN personaldetails pd ON u.id = pd.id
		ORDER BY u.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*models.CandidateSummary, 0)
	for rows.Next() {
		var c models.CandidateSummary
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Role, &c.Username, &c.Email); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return candidates, nil
}

// ListSkills returns the known skill names
func (r *CandidateRepository) ListSkills(ctx context.Context) ([]string, error) {
	return r.queryNames(ctx, `SELECT skill_name FROM skills ORDER BY skill_name`)
}

// ListCertifications returns the known certification names
func (r *CandidateRepository) ListCertifications(ctx context.Context) ([]string, error) {
	return r.queryNames(ctx, `SELECT certification_name FROM certifications ORDER BY certification_name`)
}

func (r *CandidateRepository) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return names, nil
}

// GetProfile loads personal details, qualifications, skills and certifications
func (r *CandidateRepository) GetProfile(ctx context.Context, id string) (*models.CandidateProfile, error) {
	var d models.PersonalDetails
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, phone_no, address_line1, address_line2, city, state,
			country, postal_code, linkedin_url, resume_path, created_at, updated_at
		FROM personaldetails WHERE id = $1`, id,
	).Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.PhoneNo, &d.AddressLine1, &d.AddressLine2, &d.City, &d.State,
		&d.Country, &d.PostalCode, &d.LinkedInURL, &d.ResumePath, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT COALESCE(recent_job, ''), COALESCE(preferred_roles, ''), COALESCE(availability, ''),
			COALESCE(work_permit_status, ''), COALESCE(preferred_role_type, ''),
			COALESCE(preferred_work_arrangement, ''), COALESCE(compensation, '')
		FROM qualifications WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualifications: %w", err)
	}
	qualifications, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Qualifications, error) {
		var q models.Qualifications
		err := row.Scan(&q.RecentJob, &q.PreferredRoles, &q.Availability, &q.WorkPermitStatus,
			&q.PreferredRoleType, &q.PreferredWorkArrangement, &q.Compensation)
		return &q, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan qualifications: %w", err)
	}

	skills, err := r.queryNames(ctx, `
		SELECT s.skill_name FROM user_skills us
		JOIN skills s ON us.skill_id = s.skill_id
		WHERE us.id = $1 ORDER BY s.skill_name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}

	certifications, err := r.queryNames(ctx, `
		SELECT c.certification_name FROM user_certifications uc
		JOIN certifications c ON uc.certification_id = c.certification_id
		WHERE uc.id = $1 ORDER BY c.certification_name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query certifications: %w", err)
	}

	return &models.CandidateProfile{
		PersonalDetails: &d,
		Qualifications:  qualifications,
		Skills:          skills,
		Certifications:  certifications,
	}, nil
}

// UpdatePersonalDetails applies only the columns present in update.
// Column names come from models.PersonalDetailsUpdate, never from the request.
func (r *CandidateRepository) UpdatePersonalDetails(ctx context.Context, id string, update models.PersonalDetailsUpdate) error {
	changes := update.Changes()
	if len(changes) == 0 {
		return models.ErrBadRequest
	}

	assignments := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+1)
	for i, c := range changes {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", c.Name, i+1))
		args = append(args, c.Value)
	}
	assignments = append(assignments, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE personaldetails SET %s WHERE id = $%d", strings.Join(assignments, ", "), len(args))

	result, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update personal details: %w", database.MapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateQualifications overwrites every qualification column; empty values become NULL
func (r *CandidateRepository) UpdateQualifications(ctx context.Context, id string, q *models.Qualifications) error {
	query := `
		UPDATE qualifications
		SET recent_job = NULLIF($1, ''), preferred_roles = NULLIF($2, ''), availability = NULLIF($3, ''),
			work_permit_status = NULLIF($4, ''), preferred_role_type = NULLIF($5, ''),
			preferred_work_arrangement = NULLIF($6, ''), compensation = NULLIF($7, ''), updated_at = NOW()
		WHERE id = $8
	`

	result, err := r.db.Pool.Exec(ctx, query,
		q.RecentJob, q.PreferredRoles, q.Availability, q.WorkPermitStatus,
		q.PreferredRoleType, q.PreferredWorkArrangement, q.Compensation, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update qualifications: %w", database.MapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ReplaceSkills swaps the candidate's skill set
func (r *CandidateRepository) ReplaceSkills(ctx context.Context, id string, names []string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_skills WHERE id = $1`, id); err != nil {
			return database.MapPostgresError(err)
		}
		return linkSkills(ctx, tx, id, names)
	})
}

// ReplaceCertifications swaps the candidate's certification set
func (r *CandidateRepository) ReplaceCertifications(ctx context.Context, id string, names []string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_certifications WHERE id = $1`, id); err != nil {
			return database.MapPostgresError(err)
		}
		return linkCertifications(ctx, tx, id, names)
	})
}

// DeletePersonalDetails removes the row if present; a missing row is not an error
func (r *CandidateRepository) DeletePersonalDetails(ctx context.Context, id string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM personaldetails WHERE id = $1`, id); err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (r *CandidateRepository) DeleteQualifications(ctx context.Context, id string) error {
	return r.deleteRequired(ctx, `DELETE FROM qualifications WHERE id = $1`, id)
}

func (r *CandidateRepository) DeleteSkills(ctx context.Context, id string) error {
	return r.deleteRequired(ctx, `DELETE FROM user_skills WHERE id = $1`, id)
}

func (r *CandidateRepository) DeleteCertifications(ctx context.Context, id string) error {
	return r.deleteRequired(ctx, `DELETE FROM user_certifications WHERE id = $1`, id)
}

func (r *CandidateRepository) deleteRequired(ctx context.Context, query, id string) error {
	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetResumePath returns the stored object key, or models.ErrNotFound when none was uploaded
func (r *CandidateRepository) GetResumePath(ctx context.Context, id string) (string, error) {
	var path *string
	err := r.db.Pool.QueryRow(ctx, `SELECT resume_path FROM personaldetails WHERE id = $1`, id).Scan(&path)
	if err != nil {
		return "", database.MapPostgresError(err)
	}

	if path == nil || *path == "" {
		return "", models.ErrNotFound
	}

	return *path, nil
}
