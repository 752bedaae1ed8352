// Package usecase implements evaluator-guarded access to health reports.
package usecase

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/allisson/healthshare/internal/errors"
	reportsDomain "github.com/allisson/healthshare/internal/reports/domain"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
	sharingUseCase "github.com/allisson/healthshare/internal/sharing/usecase"
)

// ReportRepository defines read operations for health reports.
type ReportRepository interface {
	// Get retrieves a report by ID. Returns ErrReportNotFound if not found.
	Get(ctx context.Context, reportID uuid.UUID) (*reportsDomain.Report, error)

	// ListByOwner retrieves reports owned by a user, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*reportsDomain.Report, error)
}

// ReportUseCase defines evaluator-guarded report reads. Every call goes
// through the authorization evaluator; there is no cached decision.
type ReportUseCase interface {
	// Get retrieves a single report the caller is allowed to read.
	Get(
		ctx context.Context,
		caller sharingDomain.Identity,
		reportID uuid.UUID,
	) (*reportsDomain.Report, error)

	// List retrieves reports owned by ownerID if the caller may access them.
	List(
		ctx context.Context,
		caller sharingDomain.Identity,
		ownerID uuid.UUID,
		offset, limit int,
	) ([]*reportsDomain.Report, error)
}

// reportUseCase implements ReportUseCase on top of the authorization evaluator.
type reportUseCase struct {
	reportRepo ReportRepository
	access     sharingUseCase.AccessUseCase
}

// NewReportUseCase creates a new report use case instance.
func NewReportUseCase(
	reportRepo ReportRepository,
	access sharingUseCase.AccessUseCase,
) ReportUseCase {
	return &reportUseCase{
		reportRepo: reportRepo,
		access:     access,
	}
}

// Get retrieves a report after checking the caller against its owner.
func (r *reportUseCase) Get(
	ctx context.Context,
	caller sharingDomain.Identity,
	reportID uuid.UUID,
) (*reportsDomain.Report, error) {
	report, err := r.reportRepo.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	allowed, err := r.access.CanAccess(ctx, report.OwnerID, caller)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "no access to this report")
	}

	return report, nil
}

// List retrieves reports owned by ownerID after checking the caller.
func (r *reportUseCase) List(
	ctx context.Context,
	caller sharingDomain.Identity,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*reportsDomain.Report, error) {
	allowed, err := r.access.CanAccess(ctx, ownerID, caller)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "no access to this user's reports")
	}

	return r.reportRepo.ListByOwner(ctx, ownerID, offset, limit)
}
