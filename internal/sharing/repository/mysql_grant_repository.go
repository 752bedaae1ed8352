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

// MySQLGrantRepository implements Grant persistence for MySQL databases.
type MySQLGrantRepository struct {
	db *sql.DB
}

// NewMySQLGrantRepository creates a new MySQL Grant repository instance.
func NewMySQLGrantRepository(db *sql.DB) *MySQLGrantRepository {
	return &MySQLGrantRepository{db: db}
}

// Create inserts a new grant, mapping duplicate (token_id, recipient_id)
// inserts to ErrGrantAlreadyExists.
func (m *MySQLGrantRepository) Create(ctx context.Context, grant *sharingDomain.Grant) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO share_grants (id, token_id, recipient_id, accepted_at)
			  VALUES (?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		grant.ID.String(),
		grant.TokenID.String(),
		grant.RecipientID.String(),
		grant.AcceptedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return sharingDomain.ErrGrantAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create grant")
	}
	return nil
}

// ListDetailsByRecipient retrieves grants for a recipient enriched with sharer
// and token metadata, filtered to usable tokens at read time.
func (m *MySQLGrantRepository) ListDetailsByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	now time.Time,
) ([]*sharingDomain.GrantDetail, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT g.id, g.token_id, g.recipient_id, g.accepted_at, t.owner_id, t.label, t.expires_at
			  FROM share_grants g
			  JOIN share_tokens t ON t.id = g.token_id
			  WHERE g.recipient_id = ? AND t.active = true AND t.expires_at > ?
			  ORDER BY g.accepted_at DESC`

	rows, err := querier.QueryContext(ctx, query, recipientID.String(), now)
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

// ExistsLiveGrant reports whether the recipient holds a grant on a usable
// token minted by the given owner.
func (m *MySQLGrantRepository) ExistsLiveGrant(
	ctx context.Context,
	ownerID, recipientID uuid.UUID,
	now time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (
				SELECT 1
				FROM share_grants g
				JOIN share_tokens t ON t.id = g.token_id
				WHERE t.owner_id = ? AND g.recipient_id = ?
				  AND t.active = true AND t.expires_at > ?
			  )`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, ownerID.String(), recipientID.String(), now).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check live grant")
	}
	return exists, nil
}
