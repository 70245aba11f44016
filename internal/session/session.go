package session

import (
	"net/http"
	"time"
)

// Session holds the OAuth-derived customer credentials. The access token is
// short-lived (platform-defined expiry), the refresh token long-lived.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token's lifetime has elapsed
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Store is the single credential-storage lifecycle. Every component that
// needs customer credentials gets a Store injected rather than reading
// cookies ad hoc.
type Store interface {
	// Load reads the session from the request. A missing or undecipherable
	// session returns (nil, nil): absence is not an error.
	Load(r *http.Request) (*Session, error)

	// Save persists the session to the response
	Save(w http.ResponseWriter, s *Session) error

	// Clear removes all session credentials from the response
	Clear(w http.ResponseWriter)
}
