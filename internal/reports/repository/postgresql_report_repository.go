// Package repository implements read-only persistence for health reports.
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

// PostgreSQLReportRepository implements Report reads for PostgreSQL databases.
type PostgreSQLReportRepository struct {
	db *sql.DB
}

// NewPostgreSQLReportRepository creates a new PostgreSQL Report repository instance.
func NewPostgreSQLReportRepository(db *sql.DB) *PostgreSQLReportRepository {
	return &PostgreSQLReportRepository{db: db}
}

// Get retrieves a report by its id.
func (p *PostgreSQLReportRepository) Get(
	ctx context.Context,
	reportID uuid.UUID,
) (*reportsDomain.Report, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, title, content, created_at
			  FROM reports
			  WHERE id = $1`

	var report reportsDomain.Report
	err := querier.QueryRowContext(ctx, query, reportID).Scan(
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
func (p *PostgreSQLReportRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*reportsDomain.Report, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, title, content, created_at
			  FROM reports
			  WHERE owner_id = $1
			  ORDER BY created_at DESC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, ownerID, offset, limit)
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
