package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken creates a cryptographically secure random token.
// Returns a base64 URL-encoded string without padding, suitable for use
// as an OAuth state parameter or PKCE code verifier. There is no fallback:
// if the secure random source fails the error propagates to the caller.
func GenerateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateState creates the random state parameter for an OAuth flow attempt
func GenerateState() (string, error) {
	return GenerateSecureToken()
}

// GenerateCodeVerifier creates the high-entropy PKCE code verifier
func GenerateCodeVerifier() (string, error) {
	return GenerateSecureToken()
}
