// Package service provides supporting services for the sharing module.
package service

// SecretService generates and verifies share token secrets and bearer link
// access codes. Both draw from the same cryptographically secure random
// primitive so there is exactly one randomness path for credentials.
type SecretService interface {
	// GenerateSecret creates a new high-entropy token secret and its sha256
	// hex digest used for indexed lookup.
	GenerateSecret() (secret string, digest string, err error)

	// GenerateAccessCode creates a 6-symbol access code from the [0-9A-Z]
	// alphabet for bearer links.
	GenerateAccessCode() (string, error)

	// DigestSecret computes the sha256 hex digest of a plain secret.
	DigestSecret(secret string) string

	// VerifySecret compares a presented secret against a stored one in
	// constant time over the whole value.
	VerifySecret(presented, stored string) bool
}
