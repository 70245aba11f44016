package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sukhira/storefront/internal/cookie"
	"github.com/sukhira/storefront/internal/crypto"
	"github.com/sukhira/storefront/internal/log"
)

// RefreshTokenTTL is the fixed lifetime of the refresh token cookie
const RefreshTokenTTL = 30 * 24 * time.Hour

// accessPayload is what the access-token cookie seals. ExpiresAt rides along
// so the resolver can refresh proactively without an extra cookie.
type accessPayload struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CookieStore persists sessions as two encrypted HttpOnly cookies: the
// access token with its platform-returned lifetime, the refresh token with a
// fixed long lifetime. Two cookies rather than one so each expires on its
// own schedule.
type CookieStore struct {
	encryptor crypto.Encryptor
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore creates a cookie-backed session store
func NewCookieStore(encryptor crypto.Encryptor) *CookieStore {
	return &CookieStore{encryptor: encryptor}
}

// Load implements Store. Undecipherable cookies (key rotation, tampering)
// are treated the same as absent ones.
func (cs *CookieStore) Load(r *http.Request) (*Session, error) {
	sess := &Session{}

	if value, err := cookie.Get(r, cookie.AccessTokenCookie); err == nil {
		payload, err := cs.openAccess(value)
		if err != nil {
			log.LogDebugWithFields("session", "Discarding undecipherable access token cookie", map[string]any{
				"error": err.Error(),
			})
		} else {
			sess.AccessToken = payload.AccessToken
			sess.ExpiresAt = payload.ExpiresAt
		}
	}

	if value, err := cookie.Get(r, cookie.RefreshTokenCookie); err == nil {
		plaintext, err := cs.encryptor.Decrypt(value)
		if err != nil {
			log.LogDebugWithFields("session", "Discarding undecipherable refresh token cookie", map[string]any{
				"error": err.Error(),
			})
		} else {
			sess.RefreshToken = string(plaintext)
		}
	}

	if sess.AccessToken == "" && sess.RefreshToken == "" {
		return nil, nil
	}
	return sess, nil
}

// Save implements Store
func (cs *CookieStore) Save(w http.ResponseWriter, s *Session) error {
	payload, err := json.Marshal(accessPayload{
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	sealed, err := cs.encryptor.Encrypt(payload)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	cookie.Set(w, cookie.AccessTokenCookie, sealed, time.Until(s.ExpiresAt))

	if s.RefreshToken != "" {
		sealedRefresh, err := cs.encryptor.Encrypt([]byte(s.RefreshToken))
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		cookie.Set(w, cookie.RefreshTokenCookie, sealedRefresh, RefreshTokenTTL)
	}
	return nil
}

// Clear implements Store
func (cs *CookieStore) Clear(w http.ResponseWriter) {
	cookie.ClearSession(w)
}

func (cs *CookieStore) openAccess(value string) (*accessPayload, error) {
	plaintext, err := cs.encryptor.Decrypt(value)
	if err != nil {
		return nil, err
	}
	var payload accessPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session payload: %w", err)
	}
	return &payload, nil
}
