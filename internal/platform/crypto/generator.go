// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecureRandomString creates a cryptographically secure random string.
// n is the number of bytes of randomness; the base64 encoding makes the
// resulting string longer than n.
func GenerateSecureRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GenerateAPIKey returns an opaque token suitable for a profile API key.
// 24 bytes of randomness encode to a 32 character URL-safe string.
func GenerateAPIKey() (string, error) {
	return GenerateSecureRandomString(24)
}
