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

// MySQLTokenRepository implements ShareToken persistence for MySQL databases.
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQL ShareToken repository instance.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// Create inserts a new share token into the MySQL database.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *sharingDomain.ShareToken) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO share_tokens
			  (id, owner_id, secret, secret_digest, label, recipient_hint, notes, created_at, expires_at, active)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID.String(),
		token.OwnerID.String(),
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
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "share token secret already exists")
		}
		return apperrors.Wrap(err, "failed to create share token")
	}
	return nil
}

// Get retrieves a share token by its id.
func (m *MySQLTokenRepository) Get(
	ctx context.Context,
	tokenID uuid.UUID,
) (*sharingDomain.ShareToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, secret, secret_digest, label, recipient_hint, notes, created_at, expires_at, active
			  FROM share_tokens
			  WHERE id = ?`

	return scanMySQLToken(querier.QueryRowContext(ctx, query, tokenID.String()))
}

// GetBySecretDigest retrieves a share token by the sha256 digest of its secret.
func (m *MySQLTokenRepository) GetBySecretDigest(
	ctx context.Context,
	digest string,
) (*sharingDomain.ShareToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, secret, secret_digest, label, recipient_hint, notes, created_at, expires_at, active
			  FROM share_tokens
			  WHERE secret_digest = ?`

	return scanMySQLToken(querier.QueryRowContext(ctx, query, digest))
}

// ListByOwner retrieves share tokens for an owner, newest first.
func (m *MySQLTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*sharingDomain.ShareToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, secret, secret_digest, label, recipient_hint, notes, created_at, expires_at, active
			  FROM share_tokens
			  WHERE owner_id = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, ownerID.String(), limit, offset)
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

// Deactivate sets active=false for the given token (idempotent).
func (m *MySQLTokenRepository) Deactivate(ctx context.Context, tokenID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE share_tokens SET active = false WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, tokenID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate share token")
	}
	return nil
}

// DeleteExpiredBefore removes tokens whose expiration predates the cutoff.
func (m *MySQLTokenRepository) DeleteExpiredBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM share_tokens WHERE expires_at < ?`

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

// scanMySQLToken scans a single share token row.
func scanMySQLToken(row *sql.Row) (*sharingDomain.ShareToken, error) {
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
