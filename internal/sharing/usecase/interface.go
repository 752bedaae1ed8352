// Package usecase defines business logic interfaces for delegated report sharing.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// TokenRepository defines persistence operations for share tokens.
// Implementations must support transaction-aware operations via context propagation.
type TokenRepository interface {
	// Create stores a new share token in the repository.
	Create(ctx context.Context, token *sharingDomain.ShareToken) error

	// Get retrieves a token by ID. Returns ErrTokenNotFound if not found.
	Get(ctx context.Context, tokenID uuid.UUID) (*sharingDomain.ShareToken, error)

	// GetBySecretDigest retrieves a token by the sha256 hex digest of its secret.
	GetBySecretDigest(ctx context.Context, digest string) (*sharingDomain.ShareToken, error)

	// ListByOwner retrieves tokens minted by an owner, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*sharingDomain.ShareToken, error)

	// Deactivate sets active=false for the token. Idempotent.
	Deactivate(ctx context.Context, tokenID uuid.UUID) error

	// DeleteExpiredBefore removes tokens expired before the cutoff.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// GrantRepository defines persistence operations for acceptance grants.
// Implementations must support transaction-aware operations via context propagation.
type GrantRepository interface {
	// Create stores a new grant. Returns ErrGrantAlreadyExists when the
	// (token, recipient) pair was already accepted.
	Create(ctx context.Context, grant *sharingDomain.Grant) error

	// ListDetailsByRecipient retrieves grants backed by usable tokens at the
	// given time, enriched with sharer and token metadata.
	ListDetailsByRecipient(
		ctx context.Context,
		recipientID uuid.UUID,
		now time.Time,
	) ([]*sharingDomain.GrantDetail, error)

	// ExistsLiveGrant reports whether the recipient holds a grant on a usable
	// token minted by the given owner at the given time.
	ExistsLiveGrant(ctx context.Context, ownerID, recipientID uuid.UUID, now time.Time) (bool, error)
}

// TokenUseCase defines business logic operations for the share token lifecycle:
// minting, listing, deactivation, secret-based lookup and acceptance.
type TokenUseCase interface {
	// Create mints a new share token owned by the caller. The plain secret is
	// present on the returned token and is never retrievable again.
	//
	// The validity window defaults to the configured number of days when the
	// input leaves it at zero. Returns ErrInvalidInput for a blank label or a
	// negative validity.
	Create(
		ctx context.Context,
		caller sharingDomain.Identity,
		input *sharingDomain.CreateTokenInput,
	) (*sharingDomain.ShareToken, error)

	// List retrieves the owner's tokens, newest first. Only the owner
	// themselves or an administrator may list; anyone else gets ErrForbidden.
	List(
		ctx context.Context,
		caller sharingDomain.Identity,
		ownerID uuid.UUID,
		offset, limit int,
	) ([]*sharingDomain.ShareToken, error)

	// Deactivate permanently disables a token. The operation is idempotent;
	// only the token owner or an administrator may deactivate.
	Deactivate(ctx context.Context, caller sharingDomain.Identity, tokenID uuid.UUID) error

	// GetBySecret resolves a presented secret to token metadata for the
	// acceptance preview. Unknown and unusable secrets are indistinguishable:
	// both return ErrTokenNotFound.
	GetBySecret(ctx context.Context, secret string) (*sharingDomain.ShareToken, error)

	// Accept redeems a presented secret into a grant for the caller.
	// Returns ErrTokenNotFound for unknown secrets, ErrTokenExpired for
	// known-but-unusable tokens and ErrGrantAlreadyExists when the caller
	// already accepted this token.
	Accept(
		ctx context.Context,
		caller sharingDomain.Identity,
		secret string,
	) (*sharingDomain.Grant, error)

	// ListGrantsForRecipient retrieves the caller's usable grants with sharer
	// info. Only the recipient themselves or an administrator may list.
	ListGrantsForRecipient(
		ctx context.Context,
		caller sharingDomain.Identity,
		recipientID uuid.UUID,
	) ([]*sharingDomain.GrantDetail, error)

	// CleanExpired deletes tokens that expired more than the retention window
	// ago. Grants cascade. Returns the number of deleted tokens.
	CleanExpired(ctx context.Context, retention time.Duration) (int64, error)
}

// AccessUseCase is the authorization evaluator consulted on every report
// access. It is side-effect free and performs no caching: deactivation and
// expiry take effect on the next check.
type AccessUseCase interface {
	// CanAccess reports whether the caller may read reports owned by
	// resourceOwnerID. Owners always may; non-doctors never may through
	// grants; doctors may while a live grant from the owner exists.
	CanAccess(
		ctx context.Context,
		resourceOwnerID uuid.UUID,
		caller sharingDomain.Identity,
	) (bool, error)
}
