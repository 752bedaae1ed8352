// Package domain defines the core domain models for delegated report sharing.
// A share token is an opaque bearer secret minted by a report owner; recipients
// redeem it into a grant that the authorization evaluator consults on every
// request.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultValidityDays is the default validity window for new share tokens.
const DefaultValidityDays = 7

// ShareToken represents a persistent capability token tracked server-side.
type ShareToken struct {
	// ID is the unique identifier for this token.
	ID uuid.UUID
	// OwnerID identifies the report owner that minted the token.
	OwnerID uuid.UUID
	// Secret is the opaque bearer credential. It is returned once at creation
	// and never echoed by read endpoints.
	Secret string `json:"-"`
	// SecretDigest is the sha256 hex digest of Secret, used for indexed lookup.
	SecretDigest string `json:"-"`
	// Label is a human-readable name for the token (e.g., "Dr. Smith").
	Label string
	// RecipientHint is an optional advisory email address. It is not an
	// authorization boundary; whoever presents the secret can accept.
	RecipientHint string
	// Notes holds free-form owner notes.
	Notes string
	// CreatedAt is the UTC timestamp when the token was created.
	CreatedAt time.Time
	// ExpiresAt is the UTC timestamp after which the token is unusable.
	ExpiresAt time.Time
	// Active is false once the owner deactivates the token. The transition is
	// monotonic: a deactivated token is never reactivated.
	Active bool
}

// IsUsable reports whether the token can authorize access at the given time.
func (t *ShareToken) IsUsable(now time.Time) bool {
	return t.Active && now.Before(t.ExpiresAt)
}

// CreateTokenInput contains the parameters for minting a share token.
type CreateTokenInput struct {
	OwnerID       uuid.UUID
	Label         string
	RecipientHint string
	Notes         string
	ValidityDays  int
}
