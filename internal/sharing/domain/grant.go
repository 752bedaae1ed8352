package domain

import (
	"time"

	"github.com/google/uuid"
)

// Grant records the acceptance of a share token by a concrete recipient.
// A grant has no independent expiry; its live status is derived from its
// token (active && now < expires_at). Grants are never deleted directly so
// the acceptance history survives token deactivation.
type Grant struct {
	ID          uuid.UUID
	TokenID     uuid.UUID
	RecipientID uuid.UUID
	AcceptedAt  time.Time
}

// GrantDetail is a grant enriched with sharer identity and token metadata,
// as returned to recipients listing their delegated access.
type GrantDetail struct {
	Grant
	OwnerID    uuid.UUID
	TokenLabel string
	ExpiresAt  time.Time
}
