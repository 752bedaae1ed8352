package usecase

import (
	"context"
	"time"

	linkDomain "github.com/allisson/healthshare/internal/link/domain"
	"github.com/allisson/healthshare/internal/metrics"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// codecUseCaseWithMetrics decorates CodecUseCase with metrics instrumentation.
type codecUseCaseWithMetrics struct {
	next    CodecUseCase
	metrics metrics.BusinessMetrics
}

// NewCodecUseCaseWithMetrics wraps a CodecUseCase with metrics recording.
func NewCodecUseCaseWithMetrics(useCase CodecUseCase, m metrics.BusinessMetrics) CodecUseCase {
	return &codecUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Mint records metrics for link minting operations.
func (c *codecUseCaseWithMetrics) Mint(
	ctx context.Context,
	caller sharingDomain.Identity,
	input *linkDomain.MintInput,
) (*linkDomain.MintOutput, error) {
	start := time.Now()
	output, err := c.next.Mint(ctx, caller, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "link", "mint", status)
	c.metrics.RecordDuration(ctx, "link", "mint", time.Since(start), status)

	return output, err
}

// Open records metrics for link open operations.
func (c *codecUseCaseWithMetrics) Open(
	ctx context.Context,
	data, accessCode string,
) (*linkDomain.Payload, error) {
	start := time.Now()
	payload, err := c.next.Open(ctx, data, accessCode)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "link", "open", status)
	c.metrics.RecordDuration(ctx, "link", "open", time.Since(start), status)

	return payload, err
}
