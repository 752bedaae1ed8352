package httputil

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/healthshare/internal/errors"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// identityKey is the gin context key holding the caller identity.
const identityKey = "caller_identity"

// SetIdentity stores the caller identity in the request context. Called by
// the identity middleware after validating the gateway headers.
func SetIdentity(c *gin.Context, identity sharingDomain.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFromContext retrieves the caller identity set by the identity
// middleware. Returns ErrUnauthorized when no identity is present.
func IdentityFromContext(c *gin.Context) (sharingDomain.Identity, error) {
	value, exists := c.Get(identityKey)
	if !exists {
		return sharingDomain.Identity{}, apperrors.Wrap(apperrors.ErrUnauthorized, "missing caller identity")
	}

	identity, ok := value.(sharingDomain.Identity)
	if !ok {
		return sharingDomain.Identity{}, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid caller identity")
	}

	return identity, nil
}
