// Package repository implements persistence for share tokens and grants.
// Repositories support both PostgreSQL and MySQL; uniqueness invariants
// (secret digest, one grant per token/recipient pair) are enforced by
// database constraints, not application-level checks.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/database"
	apperrors "github.com/allisson/healthshare/internal/errors"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// PostgreSQLTokenRepository implements ShareToken persistence for PostgreSQL databases.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL ShareToken repository instance.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a new share token into the PostgreSQL database.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *sharingDomain.ShareToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO share_tokens
			  (id, owner_id, secret, secret_digest, label, recipient_hint, notes, created_at, expires_at, active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.OwnerID,
		token.Secret,
		token.SecretDigest,
		token.Label,
		token.RecipientHint,
		token.Notes,
		token.CreatedAt,
		token.ExpiresAt,
		token.Active,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "share token secret already exists")
		}
		return apperrors.Wrap(err, "failed to create share token")
	}
	return nil
}

// Get retrieves a share token by its id.
func (p *PostgreSQLTokenRepository) Get(
	ctx context.Context,
	tokenID uuid.UUID,
) (*sharingDomain.ShareToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, secret, secret_digest, label, recipient_hint, notes, created_at, expires_at, active
			  FROM share_tokens
			  WHERE id = $1`

	return scanPostgreSQLToken(querier.QueryRowContext(ctx, query, tokenID))
}

// GetBySecretDigest retrieves a share token by the sha256 digest of its secret.
func (p *PostgreSQLTokenRepository) GetBySecretDigest(
	ctx context.Context,
	digest string,
) (*sharingDomain.ShareToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, secret, secret_digest, label, recipient_hint, notes, created_at, expires_at, active
			  FROM share_tokens
			  WHERE secret_digest = $1`

	return scanPostgreSQLToken(querier.QueryRowContext(ctx, query, digest))
}

// ListByOwner retrieves share tokens for an owner, newest first.
// Inactive and expired tokens are included; display policy is the caller's.
func (p *PostgreSQLTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*sharingDomain.ShareToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, secret, secret_digest, label, recipient_hint, notes, created_at, expires_at, active
			  FROM share_tokens
			  WHERE owner_id = $1
			  ORDER BY created_at DESC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, ownerID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list share tokens")
	}
	defer rows.Close()

	var tokens []*sharingDomain.ShareToken
	for rows.Next() {
		var token sharingDomain.ShareToken
		if err := rows.Scan(
			&token.ID,
			&token.OwnerID,
			&token.Secret,
			&token.SecretDigest,
			&token.Label,
			&token.RecipientHint,
			&token.Notes,
			&token.CreatedAt,
			&token.ExpiresAt,
			&token.Active,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan share token")
		}
		tokens = append(tokens, &token)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate share tokens")
	}

	return tokens, nil
}

// Deactivate sets active=false for the given token. The update is idempotent:
// deactivating an already-inactive token affects zero rows and succeeds.
func (p *PostgreSQLTokenRepository) Deactivate(ctx context.Context, tokenID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE share_tokens SET active = false WHERE id = $1`

	_, err := querier.ExecContext(ctx, query, tokenID)
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate share token")
	}
	return nil
}

// DeleteExpiredBefore removes tokens whose expiration predates the cutoff.
// Grants cascade via the foreign key. Returns the number of deleted tokens.
func (p *PostgreSQLTokenRepository) DeleteExpiredBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM share_tokens WHERE expires_at < $1`

	result, err := querier.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired share tokens")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted share tokens")
	}
	return deleted, nil
}

// scanPostgreSQLToken scans a single share token row.
func scanPostgreSQLToken(row *sql.Row) (*sharingDomain.ShareToken, error) {
	var token sharingDomain.ShareToken
	err := row.Scan(
		&token.ID,
		&token.OwnerID,
		&token.Secret,
		&token.SecretDigest,
		&token.Label,
		&token.RecipientHint,
		&token.Notes,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sharingDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get share token")
	}
	return &token, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "pq: duplicate key value violates unique constraint" (SQLSTATE 23505)
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "23505")
}
