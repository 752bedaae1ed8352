// Package usecase implements the bearer link codec: minting report snapshots
// into self-contained encrypted URLs and opening them with an access code.
package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/config"
	apperrors "github.com/allisson/healthshare/internal/errors"
	linkDomain "github.com/allisson/healthshare/internal/link/domain"
	linkService "github.com/allisson/healthshare/internal/link/service"
	reportsDomain "github.com/allisson/healthshare/internal/reports/domain"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
	sharingService "github.com/allisson/healthshare/internal/sharing/service"
)

// ReportGetter loads report snapshots for link minting.
type ReportGetter interface {
	Get(ctx context.Context, reportID uuid.UUID) (*reportsDomain.Report, error)
}

// CodecUseCase defines the bearer link operations. Minted links are
// irrevocable: the server keeps no record of them and expiry is enforced
// solely by the timestamp sealed into the payload.
type CodecUseCase interface {
	// Mint seals a report snapshot into an encrypted URL plus access code.
	// Only the report owner may mint links for it.
	Mint(
		ctx context.Context,
		caller sharingDomain.Identity,
		input *linkDomain.MintInput,
	) (*linkDomain.MintOutput, error)

	// Open decrypts the data parameter of a shared-report URL with the
	// presented access code. Returns ErrLinkDecryptFailed for a wrong code or
	// tampered data and ErrLinkExpired for an authentic but stale payload.
	Open(ctx context.Context, data, accessCode string) (*linkDomain.Payload, error)
}

// codecUseCase implements CodecUseCase.
type codecUseCase struct {
	config        *config.Config
	serverSecret  []byte
	reportRepo    ReportGetter
	secretService sharingService.SecretService
	now           func() time.Time
}

// NewCodecUseCase creates a new bearer link codec instance. The serverSecret
// is the resolved 32-byte link key.
func NewCodecUseCase(
	cfg *config.Config,
	serverSecret []byte,
	reportRepo ReportGetter,
	secretService sharingService.SecretService,
) CodecUseCase {
	return &codecUseCase{
		config:        cfg,
		serverSecret:  serverSecret,
		reportRepo:    reportRepo,
		secretService: secretService,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Mint loads the report, seals a snapshot of it under a key derived from the
// access code, and embeds the ciphertext in a shared-report URL.
func (c *codecUseCase) Mint(
	ctx context.Context,
	caller sharingDomain.Identity,
	input *linkDomain.MintInput,
) (*linkDomain.MintOutput, error) {
	report, err := c.reportRepo.Get(ctx, input.ReportID)
	if err != nil {
		return nil, err
	}

	if report.OwnerID != caller.UserID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "only the report owner can mint links")
	}

	accessCode := linkService.NormalizeAccessCode(input.AccessCode)
	if accessCode == "" {
		accessCode, err = c.secretService.GenerateAccessCode()
		if err != nil {
			return nil, err
		}
	}
	if len(accessCode) != sharingService.AccessCodeLength {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "access code must have 6 symbols")
	}

	ttlHours := input.TTLHours
	if ttlHours <= 0 {
		ttlHours = c.config.LinkTTLHours
	}

	now := c.now()
	payload := &linkDomain.Payload{
		ReportID:  report.ID,
		Title:     report.Title,
		Content:   report.Content,
		CreatedAt: report.CreatedAt,
		ExpiresAt: now.Add(time.Duration(ttlHours) * time.Hour),
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode link payload: %w", err)
	}

	key, err := linkService.DeriveLinkKey(c.serverSecret, accessCode)
	if err != nil {
		return nil, err
	}

	blob, err := linkService.Seal(key, plaintext)
	if err != nil {
		return nil, err
	}

	data := base64.RawURLEncoding.EncodeToString(blob)
	return &linkDomain.MintOutput{
		URL:        c.config.LinkBaseURL + "/shared-report?data=" + data,
		AccessCode: accessCode,
	}, nil
}

// Open reverses Mint. Decryption runs before the expiry check: an attacker
// probing with wrong codes learns nothing about whether a link is expired.
func (c *codecUseCase) Open(
	ctx context.Context,
	data, accessCode string,
) (*linkDomain.Payload, error) {
	blob, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, linkDomain.ErrLinkDecryptFailed
	}

	key, err := linkService.DeriveLinkKey(c.serverSecret, accessCode)
	if err != nil {
		return nil, err
	}

	plaintext, err := linkService.Open(key, blob)
	if err != nil {
		return nil, linkDomain.ErrLinkDecryptFailed
	}

	var payload linkDomain.Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, linkDomain.ErrLinkDecryptFailed
	}

	if !c.now().Before(payload.ExpiresAt) {
		return nil, linkDomain.ErrLinkExpired
	}

	return &payload, nil
}
