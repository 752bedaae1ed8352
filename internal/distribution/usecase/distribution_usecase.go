// Package usecase implements the distribution façade for minted bearer links.
package usecase

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/healthshare/internal/config"
	distributionDomain "github.com/allisson/healthshare/internal/distribution/domain"
	distributionService "github.com/allisson/healthshare/internal/distribution/service"
	apperrors "github.com/allisson/healthshare/internal/errors"
)

// DistributionUseCase renders transport payloads for bearer links. Rendering
// is pure: nothing is sent from here and nothing is stored. A failure in any
// channel is reported to the caller and never touches the minted link.
type DistributionUseCase interface {
	// Deliver renders the payload for a single channel.
	Deliver(
		ctx context.Context,
		input *distributionDomain.DeliverInput,
	) (*distributionDomain.DeliverOutput, error)

	// RenderQR renders a bearer link URL as a PNG QR image.
	RenderQR(ctx context.Context, url string) ([]byte, error)

	// PrepareAll renders every channel concurrently, best effort. Channels
	// that fail are recorded in the bundle's Failures map; the rest succeed
	// independently.
	PrepareAll(
		ctx context.Context,
		url, accessCode, recipientAddress string,
	) (*distributionDomain.PreparedBundle, error)
}

// distributionUseCase implements DistributionUseCase.
type distributionUseCase struct {
	config *config.Config
}

// NewDistributionUseCase creates a new distribution use case instance.
func NewDistributionUseCase(cfg *config.Config) DistributionUseCase {
	return &distributionUseCase{config: cfg}
}

// Deliver renders the payload for a single channel. When an access code is
// supplied, its note is rendered alongside as a separate artifact so the
// caller can hand it over via a second channel.
func (d *distributionUseCase) Deliver(
	ctx context.Context,
	input *distributionDomain.DeliverInput,
) (*distributionDomain.DeliverOutput, error) {
	output := &distributionDomain.DeliverOutput{Channel: input.Channel}

	switch input.Channel {
	case distributionDomain.ChannelEmail:
		if input.RecipientAddress == "" {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "recipient address is required for email")
		}
		output.Email = distributionService.BuildEmail(d.config.EmailFromAddress, input.RecipientAddress, input.URL)

	case distributionDomain.ChannelMessenger:
		output.Messenger = distributionService.BuildMessengerLink(d.config.MessengerDeepLinkBase, input.URL)

	case distributionDomain.ChannelQR:
		png, err := distributionService.RenderQR(input.URL)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}
		output.QRImage = png

	default:
		return nil, distributionDomain.ErrUnsupportedChannel
	}

	if input.AccessCode != "" {
		output.AccessCodeNote = distributionService.BuildAccessCodeNote(input.AccessCode)
	}

	return output, nil
}

// RenderQR renders a bearer link URL as a PNG QR image.
func (d *distributionUseCase) RenderQR(ctx context.Context, url string) ([]byte, error) {
	png, err := distributionService.RenderQR(url)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return png, nil
}

// PrepareAll renders every channel concurrently, best effort.
func (d *distributionUseCase) PrepareAll(
	ctx context.Context,
	url, accessCode, recipientAddress string,
) (*distributionDomain.PreparedBundle, error) {
	bundle := &distributionDomain.PreparedBundle{
		Failures: make(map[distributionDomain.Channel]string),
	}
	if accessCode != "" {
		bundle.AccessCodeNote = distributionService.BuildAccessCodeNote(accessCode)
	}

	var mu sync.Mutex
	fail := func(channel distributionDomain.Channel, err error) {
		mu.Lock()
		defer mu.Unlock()
		bundle.Failures[channel] = err.Error()
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		output, err := d.Deliver(ctx, &distributionDomain.DeliverInput{
			URL:              url,
			AccessCode:       accessCode,
			Channel:          distributionDomain.ChannelEmail,
			RecipientAddress: recipientAddress,
		})
		if err != nil {
			fail(distributionDomain.ChannelEmail, err)
			return nil
		}
		bundle.Email = output.Email
		return nil
	})

	group.Go(func() error {
		output, err := d.Deliver(ctx, &distributionDomain.DeliverInput{
			URL:     url,
			Channel: distributionDomain.ChannelMessenger,
		})
		if err != nil {
			fail(distributionDomain.ChannelMessenger, err)
			return nil
		}
		bundle.Messenger = output.Messenger
		return nil
	})

	group.Go(func() error {
		output, err := d.Deliver(ctx, &distributionDomain.DeliverInput{
			URL:     url,
			Channel: distributionDomain.ChannelQR,
		})
		if err != nil {
			fail(distributionDomain.ChannelQR, err)
			return nil
		}
		bundle.QRImage = output.QRImage
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if len(bundle.Failures) == 0 {
		bundle.Failures = nil
	}
	return bundle, nil
}
