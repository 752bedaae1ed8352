package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"

	apperrors "github.com/allisson/healthshare/internal/errors"
	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// accessCodeAlphabet is the 36-symbol alphabet for human-relayable access codes.
const accessCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// AccessCodeLength is the number of symbols in a generated access code.
const AccessCodeLength = 6

// secretService implements SecretService on top of crypto/rand.
type secretService struct{}

// NewSecretService creates a new SecretService instance.
func NewSecretService() SecretService {
	return &secretService{}
}

// GenerateSecret creates a cryptographically secure random secret, base64
// URL-encoded without padding to exactly SecretLength characters.
// Returns the plain secret and its sha256 hex digest.
func (s *secretService) GenerateSecret() (secret string, digest string, err error) {
	randomBytes := make([]byte, base64.RawURLEncoding.DecodedLen(sharingDomain.SecretLength))
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	secret = base64.RawURLEncoding.EncodeToString(randomBytes)
	digest = s.DigestSecret(secret)

	return secret, digest, nil
}

// GenerateAccessCode creates a cryptographically secure random access code
// drawn from the [0-9A-Z] alphabet.
func (s *secretService) GenerateAccessCode() (string, error) {
	code := make([]byte, AccessCodeLength)
	alphabetLen := big.NewInt(int64(len(accessCodeAlphabet)))

	for i := 0; i < AccessCodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random symbol: %w", err)
		}
		code[i] = accessCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}

// DigestSecret hashes a plain secret using SHA-256.
// Returns the hash as a hexadecimal string.
func (s *secretService) DigestSecret(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:])
}

// VerifySecret compares presented and stored secrets over their whole length,
// never short-circuiting on the first differing byte.
func (s *secretService) VerifySecret(presented, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}
