package usecase

import (
	"context"
	"time"

	distributionDomain "github.com/allisson/healthshare/internal/distribution/domain"
	"github.com/allisson/healthshare/internal/metrics"
)

// distributionUseCaseWithMetrics decorates DistributionUseCase with metrics instrumentation.
type distributionUseCaseWithMetrics struct {
	next    DistributionUseCase
	metrics metrics.BusinessMetrics
}

// NewDistributionUseCaseWithMetrics wraps a DistributionUseCase with metrics recording.
func NewDistributionUseCaseWithMetrics(
	useCase DistributionUseCase,
	m metrics.BusinessMetrics,
) DistributionUseCase {
	return &distributionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (d *distributionUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "distribution", operation, status)
	d.metrics.RecordDuration(ctx, "distribution", operation, time.Since(start), status)
}

// Deliver records metrics for single-channel rendering.
func (d *distributionUseCaseWithMetrics) Deliver(
	ctx context.Context,
	input *distributionDomain.DeliverInput,
) (*distributionDomain.DeliverOutput, error) {
	start := time.Now()
	output, err := d.next.Deliver(ctx, input)
	d.record(ctx, "deliver_"+string(input.Channel), start, err)
	return output, err
}

// RenderQR records metrics for QR rendering.
func (d *distributionUseCaseWithMetrics) RenderQR(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	png, err := d.next.RenderQR(ctx, url)
	d.record(ctx, "render_qr", start, err)
	return png, err
}

// PrepareAll records metrics for the concurrent fan-out.
func (d *distributionUseCaseWithMetrics) PrepareAll(
	ctx context.Context,
	url, accessCode, recipientAddress string,
) (*distributionDomain.PreparedBundle, error) {
	start := time.Now()
	bundle, err := d.next.PrepareAll(ctx, url, accessCode, recipientAddress)
	d.record(ctx, "prepare_all", start, err)
	return bundle, err
}
