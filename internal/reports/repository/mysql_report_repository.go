package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/database"
	apperrors "github.com/allisson/healthshare/internal/errors"
	reportsDomain "github.com/allisson/healthshare/internal/reports/domain"
)

// MySQLReportRepository implements Report reads for MySQL databases.
type MySQLReportRepository struct {
	db *sql.DB
}

// NewMySQLReportRepository creates a new MySQL Report repository instance.
func NewMySQLReportRepository(db *sql.DB) *MySQLReportRepository {
	return &MySQLReportRepository{db: db}
}

// Get retrieves a report by its id.
func (m *MySQLReportRepository) Get(
	ctx context.Context,
	reportID uuid.UUID,
) (*reportsDomain.Report, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, title, content, created_at
			  FROM reports
			  WHERE id = ?`

	var report reportsDomain.Report
	err := querier.QueryRowContext(ctx, query, reportID.String()).Scan(
		&report.ID,
		&report.OwnerID,
		&report.Title,
		&report.Content,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reportsDomain.ErrReportNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get report")
	}
	return &report, nil
}

// ListByOwner retrieves reports owned by a user, newest first.
func (m *MySQLReportRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*reportsDomain.Report, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, title, content, created_at
			  FROM reports
			  WHERE owner_id = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, ownerID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list reports")
	}
	defer rows.Close()

	var reports []*reportsDomain.Report
	for rows.Next() {
		var report reportsDomain.Report
		if err := rows.Scan(
			&report.ID,
			&report.OwnerID,
			&report.Title,
			&report.Content,
			&report.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan report")
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate reports")
	}

	return reports, nil
}
