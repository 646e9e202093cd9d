package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onevector/talenthub/internal/database"
	"github.com/onevector/talenthub/internal/models"
)

// MagicLinkRepository handles onboarding link data access
type MagicLinkRepository struct {
	pool *pgxpool.Pool
}

// NewMagicLinkRepository creates a new MagicLinkRepository
func NewMagicLinkRepository(db *database.DB) *MagicLinkRepository {
	return &MagicLinkRepository{pool: db.Pool}
}

// attempts and expired may be NULL on legacy rows
const magicLinkColumns = `id, email, token_hash, expires_at, COALESCE(attempts, 0), COALESCE(expired, false), created_at`

// scanMagicLinkRow populates a MagicLink model from a database row
func scanMagicLinkRow(row rowScanner) (*models.MagicLink, error) {
	var link models.MagicLink

	err := row.Scan(
		&link.ID, &link.Email, &link.TokenHash, &link.ExpiresAt,
		&link.Attempts, &link.Expired, &link.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &link, nil
}

// scanMagicLinkRows iterates through rows and scans each into MagicLink models
func scanMagicLinkRows(rows pgx.Rows) ([]*models.MagicLink, error) {
	defer rows.Close()

	links := make([]*models.MagicLink, 0)

	for rows.Next() {
		link, err := scanMagicLinkRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan magic link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating magic link rows: %w", err)
	}

	return links, nil
}

// Create stores a new link with zero attempts
func (r *MagicLinkRepository) Create(ctx context.Context, email, tokenHash string, expiresAt time.Time) (*models.MagicLink, error) {
	query := `
		INSERT INTO magic_links (email, token_hash, expires_at, attempts, expired)
		VALUES ($1, $2, $3, 0, false)
		RETURNING ` + magicLinkColumns

	link, err := scanMagicLinkRow(r.pool.QueryRow(ctx, query, email, tokenHash, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create magic link: %w", err)
	}

	return link, nil
}

// GetByTokenHash retrieves the link for a token digest. token_hash is unique.
func (r *MagicLinkRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.MagicLink, error) {
	query := `SELECT ` + magicLinkColumns + ` FROM magic_links WHERE token_hash = $1`

	return scanMagicLinkRow(r.pool.QueryRow(ctx, query, tokenHash))
}

// ConsumeAttempt increments the attempt counter only while the link is still usable.
// The check and the increment happen in one statement, so concurrent callers
// can never push the counter past maxAttempts.
// Returns models.ErrNotFound when no usable row matched.
func (r *MagicLinkRepository) ConsumeAttempt(ctx context.Context, tokenHash string, maxAttempts int, now time.Time) (*models.MagicLink, error) {
	query := `
		UPDATE magic_links
		SET attempts = COALESCE(attempts, 0) + 1, expired = COALESCE(expired, false)
		WHERE token_hash = $1
		  AND COALESCE(attempts, 0) < $2
		  AND NOT COALESCE(expired, false)
		  AND expires_at > $3
		RETURNING ` + magicLinkColumns

	return scanMagicLinkRow(r.pool.QueryRow(ctx, query, tokenHash, maxAttempts, now))
}

// Expire marks every link with the digest as expired, regardless of its state
func (r *MagicLinkRepository) Expire(ctx context.Context, tokenHash string) error {
	query := `UPDATE magic_links SET expired = true WHERE token_hash = $1`

	if _, err := r.pool.Exec(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("failed to expire magic link: %w", err)
	}

	return nil
}

// List returns all links, newest first
func (r *MagicLinkRepository) List(ctx context.Context) ([]*models.MagicLink, error) {
	query := `SELECT ` + magicLinkColumns + ` FROM magic_links ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query magic links: %w", err)
	}

	return scanMagicLinkRows(rows)
}

// CleanupExpired deletes links whose expiry is older than cutoff
func (r *MagicLinkRepository) CleanupExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM magic_links WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired magic links: %w", err)
	}

	return result.RowsAffected(), nil
}
