package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/metrics"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "sharing", operation, status)
	t.metrics.RecordDuration(ctx, "sharing", operation, time.Since(start), status)
}

// Create records metrics for token minting operations.
func (t *tokenUseCaseWithMetrics) Create(
	ctx context.Context,
	caller sharingDomain.Identity,
	input *sharingDomain.CreateTokenInput,
) (*sharingDomain.ShareToken, error) {
	start := time.Now()
	token, err := t.next.Create(ctx, caller, input)
	t.record(ctx, "token_create", start, err)
	return token, err
}

// List records metrics for token list operations.
func (t *tokenUseCaseWithMetrics) List(
	ctx context.Context,
	caller sharingDomain.Identity,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*sharingDomain.ShareToken, error) {
	start := time.Now()
	tokens, err := t.next.List(ctx, caller, ownerID, offset, limit)
	t.record(ctx, "token_list", start, err)
	return tokens, err
}

// Deactivate records metrics for token deactivation operations.
func (t *tokenUseCaseWithMetrics) Deactivate(
	ctx context.Context,
	caller sharingDomain.Identity,
	tokenID uuid.UUID,
) error {
	start := time.Now()
	err := t.next.Deactivate(ctx, caller, tokenID)
	t.record(ctx, "token_deactivate", start, err)
	return err
}

// GetBySecret records metrics for secret lookup operations.
func (t *tokenUseCaseWithMetrics) GetBySecret(
	ctx context.Context,
	secret string,
) (*sharingDomain.ShareToken, error) {
	start := time.Now()
	token, err := t.next.GetBySecret(ctx, secret)
	t.record(ctx, "token_get_by_secret", start, err)
	return token, err
}

// Accept records metrics for token acceptance operations.
func (t *tokenUseCaseWithMetrics) Accept(
	ctx context.Context,
	caller sharingDomain.Identity,
	secret string,
) (*sharingDomain.Grant, error) {
	start := time.Now()
	grant, err := t.next.Accept(ctx, caller, secret)
	t.record(ctx, "token_accept", start, err)
	return grant, err
}

// ListGrantsForRecipient records metrics for grant list operations.
func (t *tokenUseCaseWithMetrics) ListGrantsForRecipient(
	ctx context.Context,
	caller sharingDomain.Identity,
	recipientID uuid.UUID,
) ([]*sharingDomain.GrantDetail, error) {
	start := time.Now()
	details, err := t.next.ListGrantsForRecipient(ctx, caller, recipientID)
	t.record(ctx, "grant_list", start, err)
	return details, err
}

// CleanExpired records metrics for maintenance deletion runs.
func (t *tokenUseCaseWithMetrics) CleanExpired(
	ctx context.Context,
	retention time.Duration,
) (int64, error) {
	start := time.Now()
	deleted, err := t.next.CleanExpired(ctx, retention)
	t.record(ctx, "token_clean_expired", start, err)
	return deleted, err
}

// accessUseCaseWithMetrics decorates AccessUseCase with metrics instrumentation.
type accessUseCaseWithMetrics struct {
	next    AccessUseCase
	metrics metrics.BusinessMetrics
}

// NewAccessUseCaseWithMetrics wraps an AccessUseCase with metrics recording.
func NewAccessUseCaseWithMetrics(useCase AccessUseCase, m metrics.BusinessMetrics) AccessUseCase {
	return &accessUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// CanAccess records metrics for authorization checks.
func (a *accessUseCaseWithMetrics) CanAccess(
	ctx context.Context,
	resourceOwnerID uuid.UUID,
	caller sharingDomain.Identity,
) (bool, error) {
	start := time.Now()
	allowed, err := a.next.CanAccess(ctx, resourceOwnerID, caller)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "sharing", "access_check", status)
	a.metrics.RecordDuration(ctx, "sharing", "access_check", time.Since(start), status)

	return allowed, err
}
