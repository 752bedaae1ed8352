package domain

import (
	"github.com/allisson/healthshare/internal/errors"
)

// Sharing domain error definitions.
var (
	// ErrTokenNotFound indicates no share token matches the given id or secret.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "share token not found")

	// ErrTokenExpired indicates the share token is inactive or past expiration.
	ErrTokenExpired = errors.Wrap(errors.ErrExpired, "share token expired or deactivated")

	// ErrGrantAlreadyExists indicates this recipient already accepted the token.
	ErrGrantAlreadyExists = errors.Wrap(errors.ErrConflict, "share token already accepted by this recipient")

	// ErrNotTokenOwner indicates the caller does not own the token being mutated.
	ErrNotTokenOwner = errors.Wrap(errors.ErrForbidden, "caller is not the token owner")
)
