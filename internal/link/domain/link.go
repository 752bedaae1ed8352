// Package domain defines the bearer link payload and its error taxonomy.
// A bearer link carries an encrypted report snapshot in the URL itself; the
// server keeps no per-link state and cannot revoke a link once minted.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/healthshare/internal/errors"
)

// Payload is the report snapshot sealed inside a bearer link. The expiration
// travels inside the ciphertext so it cannot be stripped or altered without
// failing authentication.
type Payload struct {
	ReportID  uuid.UUID `json:"report_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MintInput contains the parameters for minting a bearer link.
type MintInput struct {
	ReportID uuid.UUID
	// AccessCode optionally supplies a caller-chosen code; left empty, a
	// random 6-symbol code is generated. Normalized to uppercase either way.
	AccessCode string
	// TTLHours overrides the configured link time-to-live when positive.
	TTLHours int
}

// MintOutput is the result of minting a bearer link. The URL and the access
// code must travel over separate channels; together they open the report.
type MintOutput struct {
	URL        string
	AccessCode string
}

// Bearer link error definitions.
var (
	// ErrLinkExpired indicates the payload authenticated correctly but its
	// embedded expiration has passed.
	ErrLinkExpired = errors.Wrap(errors.ErrExpired, "link expired")

	// ErrLinkDecryptFailed indicates the payload could not be opened. A wrong
	// access code and a tampered ciphertext are indistinguishable here.
	ErrLinkDecryptFailed = errors.Wrap(errors.ErrDecryptFailed, "link could not be opened")
)
