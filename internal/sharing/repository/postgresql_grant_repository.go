package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/database"
	apperrors "github.com/allisson/healthshare/internal/errors"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// PostgreSQLGrantRepository implements Grant persistence for PostgreSQL databases.
type PostgreSQLGrantRepository struct {
	db *sql.DB
}

// NewPostgreSQLGrantRepository creates a new PostgreSQL Grant repository instance.
func NewPostgreSQLGrantRepository(db *sql.DB) *PostgreSQLGrantRepository {
	return &PostgreSQLGrantRepository{db: db}
}

// Create inserts a new grant. The unique constraint on (token_id, recipient_id)
// resolves concurrent acceptance races: exactly one insert wins, the rest
// surface ErrGrantAlreadyExists.
func (p *PostgreSQLGrantRepository) Create(ctx context.Context, grant *sharingDomain.Grant) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO share_grants (id, token_id, recipient_id, accepted_at)
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		grant.ID,
		grant.TokenID,
		grant.RecipientID,
		grant.AcceptedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return sharingDomain.ErrGrantAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create grant")
	}
	return nil
}

// ListDetailsByRecipient retrieves grants for a recipient enriched with sharer
// and token metadata. Only grants whose token is usable at the given time are
// returned; liveness is computed here at read time, never cached.
func (p *PostgreSQLGrantRepository) ListDetailsByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	now time.Time,
) ([]*sharingDomain.GrantDetail, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT g.id, g.token_id, g.recipient_id, g.accepted_at, t.owner_id, t.label, t.expires_at
			  FROM share_grants g
			  JOIN share_tokens t ON t.id = g.token_id
			  WHERE g.recipient_id = $1 AND t.active = true AND t.expires_at > $2
			  ORDER BY g.accepted_at DESC`

	rows, err := querier.QueryContext(ctx, query, recipientID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list grants")
	}
	defer rows.Close()

	var details []*sharingDomain.GrantDetail
	for rows.Next() {
		var detail sharingDomain.GrantDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.TokenID,
			&detail.RecipientID,
			&detail.AcceptedAt,
			&detail.OwnerID,
			&detail.TokenLabel,
			&detail.ExpiresAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan grant")
		}
		details = append(details, &detail)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate grants")
	}

	return details, nil
}

// ExistsLiveGrant reports whether the recipient holds at least one grant on a
// currently-usable token minted by the given owner. This is the query behind
// the authorization evaluator and runs fresh on every call.
func (p *PostgreSQLGrantRepository) ExistsLiveGrant(
	ctx context.Context,
	ownerID, recipientID uuid.UUID,
	now time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				SELECT 1
				FROM share_grants g
				JOIN share_tokens t ON t.id = g.token_id
				WHERE t.owner_id = $1 AND g.recipient_id = $2
				  AND t.active = true AND t.expires_at > $3
			  )`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, ownerID, recipientID, now).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check live grant")
	}
	return exists, nil
}
