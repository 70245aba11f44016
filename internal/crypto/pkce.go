package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// CodeChallengeS256 derives the PKCE code challenge from a verifier using
// the S256 method: base64url(sha256(verifier)), no padding. S256 is the
// only method this client supports.
func CodeChallengeS256(verifier string) string {
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// VerifyCodeChallenge reports whether challenge matches the S256 challenge
// for verifier, using a constant-time comparison.
func VerifyCodeChallenge(verifier, challenge string) bool {
	computed := CodeChallengeS256(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
