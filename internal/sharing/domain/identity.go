package domain

import (
	"github.com/google/uuid"
)

// Identity describes the authenticated caller as established by the upstream
// session layer. Authentication itself happens outside this service; the
// identity arrives on trusted gateway headers and is treated as verified.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller holds the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
