package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/config"
	"github.com/allisson/healthshare/internal/database"
	apperrors "github.com/allisson/healthshare/internal/errors"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
	sharingService "github.com/allisson/healthshare/internal/sharing/service"
)

// tokenUseCase implements TokenUseCase for the share token lifecycle.
type tokenUseCase struct {
	config        *config.Config
	txManager     database.TxManager
	tokenRepo     TokenRepository
	grantRepo     GrantRepository
	secretService sharingService.SecretService
	now           func() time.Time
}

// NewTokenUseCase creates a new share token use case instance.
func NewTokenUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	tokenRepo TokenRepository,
	grantRepo GrantRepository,
	secretService sharingService.SecretService,
) TokenUseCase {
	return &tokenUseCase{
		config:        cfg,
		txManager:     txManager,
		tokenRepo:     tokenRepo,
		grantRepo:     grantRepo,
		secretService: secretService,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create mints a new share token owned by the caller.
//
// The plain secret appears exactly once, on the returned token. Read paths
// never echo it; only its digest is used for lookup afterwards.
func (t *tokenUseCase) Create(
	ctx context.Context,
	caller sharingDomain.Identity,
	input *sharingDomain.CreateTokenInput,
) (*sharingDomain.ShareToken, error) {
	if strings.TrimSpace(input.Label) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "label is required")
	}
	if input.ValidityDays < 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "validity days must not be negative")
	}

	// Zero means the caller omitted the override.
	validityDays := input.ValidityDays
	if validityDays == 0 {
		validityDays = t.config.ShareTokenValidityDays
	}
	if validityDays == 0 {
		validityDays = sharingDomain.DefaultValidityDays
	}

	secret, digest, err := t.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	now := t.now()
	token := &sharingDomain.ShareToken{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       caller.UserID,
		Secret:        secret,
		SecretDigest:  digest,
		Label:         input.Label,
		RecipientHint: input.RecipientHint,
		Notes:         input.Notes,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(validityDays) * 24 * time.Hour),
		Active:        true,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

// List retrieves the owner's tokens, newest first.
func (t *tokenUseCase) List(
	ctx context.Context,
	caller sharingDomain.Identity,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*sharingDomain.ShareToken, error) {
	if caller.UserID != ownerID && !caller.IsAdmin() {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "cannot list another user's share tokens")
	}

	return t.tokenRepo.ListByOwner(ctx, ownerID, offset, limit)
}

// Deactivate permanently disables a token. Deactivation is monotonic; there
// is no reactivation path. Repeating the call on an inactive token succeeds.
func (t *tokenUseCase) Deactivate(
	ctx context.Context,
	caller sharingDomain.Identity,
	tokenID uuid.UUID,
) error {
	token, err := t.tokenRepo.Get(ctx, tokenID)
	if err != nil {
		return err
	}

	if token.OwnerID != caller.UserID && !caller.IsAdmin() {
		return sharingDomain.ErrNotTokenOwner
	}

	return t.tokenRepo.Deactivate(ctx, tokenID)
}

// GetBySecret resolves a presented secret to token metadata.
//
// Lookup goes through the secret digest index and then verifies the whole
// presented value in constant time. Unknown secrets and unusable tokens both
// map to ErrTokenNotFound so the preview endpoint leaks nothing about why.
func (t *tokenUseCase) GetBySecret(
	ctx context.Context,
	secret string,
) (*sharingDomain.ShareToken, error) {
	token, err := t.resolveSecret(ctx, secret)
	if err != nil {
		return nil, err
	}

	if !token.IsUsable(t.now()) {
		return nil, sharingDomain.ErrTokenNotFound
	}

	return token, nil
}

// Accept redeems a presented secret into a grant for the caller.
//
// Unlike the preview lookup, acceptance distinguishes a known-but-unusable
// token (ErrTokenExpired) from an unknown secret (ErrTokenNotFound) so the
// recipient gets an actionable message. Concurrent acceptance of the same
// token by the same recipient is resolved by the database unique constraint;
// exactly one call wins and the rest get ErrGrantAlreadyExists.
func (t *tokenUseCase) Accept(
	ctx context.Context,
	caller sharingDomain.Identity,
	secret string,
) (*sharingDomain.Grant, error) {
	var grant *sharingDomain.Grant

	err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
		token, err := t.resolveSecret(ctx, secret)
		if err != nil {
			return err
		}

		if !token.IsUsable(t.now()) {
			return sharingDomain.ErrTokenExpired
		}

		grant = &sharingDomain.Grant{
			ID:          uuid.Must(uuid.NewV7()),
			TokenID:     token.ID,
			RecipientID: caller.UserID,
			AcceptedAt:  t.now(),
		}

		return t.grantRepo.Create(ctx, grant)
	})
	if err != nil {
		return nil, err
	}

	return grant, nil
}

// ListGrantsForRecipient retrieves the caller's usable grants with sharer info.
// Liveness is evaluated against the backing token at read time; grants on
// deactivated or expired tokens simply stop appearing.
func (t *tokenUseCase) ListGrantsForRecipient(
	ctx context.Context,
	caller sharingDomain.Identity,
	recipientID uuid.UUID,
) ([]*sharingDomain.GrantDetail, error) {
	if caller.UserID != recipientID && !caller.IsAdmin() {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "cannot list another user's grants")
	}

	return t.grantRepo.ListDetailsByRecipient(ctx, recipientID, t.now())
}

// CleanExpired deletes tokens that expired more than the retention window ago.
func (t *tokenUseCase) CleanExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := t.now().Add(-retention)
	return t.tokenRepo.DeleteExpiredBefore(ctx, cutoff)
}

// resolveSecret finds the token for a presented secret and verifies the full
// value in constant time. Digest mismatch and verification failure are the
// same outcome: ErrTokenNotFound.
func (t *tokenUseCase) resolveSecret(
	ctx context.Context,
	secret string,
) (*sharingDomain.ShareToken, error) {
	token, err := t.tokenRepo.GetBySecretDigest(ctx, t.secretService.DigestSecret(secret))
	if err != nil {
		return nil, err
	}

	if !t.secretService.VerifySecret(secret, token.Secret) {
		return nil, sharingDomain.ErrTokenNotFound
	}

	return token, nil
}
