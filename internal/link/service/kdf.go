// Package service provides the cryptographic primitives behind bearer links:
// access-code key derivation and authenticated encryption of payloads.
package service

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// linkKeySize is the derived key size for AES-256-GCM.
const linkKeySize = 32

// NormalizeAccessCode uppercases and trims a presented access code so that
// codes communicated verbally ("a1b2c3") derive the same key as their
// canonical uppercase form.
func NormalizeAccessCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DeriveLinkKey derives the per-link AES-256 key from the server secret and
// the normalized access code via HKDF-SHA256. The access code contributes to
// the key itself, so a wrong code yields a key that fails AEAD
// authentication rather than a distinguishable lookup miss.
func DeriveLinkKey(serverSecret []byte, accessCode string) ([]byte, error) {
	ikm := make([]byte, 0, len(serverSecret)+1+len(accessCode))
	ikm = append(ikm, serverSecret...)
	ikm = append(ikm, '-')
	ikm = append(ikm, NormalizeAccessCode(accessCode)...)

	key := make([]byte, linkKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, nil), key); err != nil {
		return nil, fmt.Errorf("failed to derive link key: %w", err)
	}
	return key, nil
}
