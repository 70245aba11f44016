package auth

import (
	"errors"
	"net/http"

	"github.com/sukhira/storefront/internal/customeraccount"
	"github.com/sukhira/storefront/internal/log"
	"github.com/sukhira/storefront/internal/session"
)

// Resolver turns request credentials into a customer identity. Resolution
// failure is "unauthenticated", never an error surfaced to the page.
type Resolver struct {
	accounts *customeraccount.Client
	sessions session.Store
}

// NewResolver creates a session resolver
func NewResolver(accounts *customeraccount.Client, sessions session.Store) *Resolver {
	return &Resolver{accounts: accounts, sessions: sessions}
}

// Resolve reads the persisted session and resolves it to a customer.
//
// Returns (nil, nil) when no usable credentials exist. Returns (nil, sess)
// when the token was accepted but no customer record exists. A rejected
// access token is refreshed once if a refresh token is present; if that
// fails the stale credentials are cleared — the one intentional side
// effect. Transient lookup failures degrade to unauthenticated without
// clearing, so a network blip doesn't log the customer out.
func (res *Resolver) Resolve(w http.ResponseWriter, r *http.Request) (*customeraccount.Customer, *session.Session) {
	sess, err := res.sessions.Load(r)
	if err != nil || sess == nil {
		return nil, nil
	}

	// Expired access token with a refresh token in hand: refresh before
	// the first lookup rather than burning a doomed request
	if (sess.AccessToken == "" || sess.Expired()) && sess.RefreshToken != "" {
		refreshed, ok := res.refresh(w, r, sess)
		if !ok {
			return nil, nil
		}
		sess = refreshed
	}
	if sess.AccessToken == "" {
		res.sessions.Clear(w)
		return nil, nil
	}

	customer, err := res.accounts.GetCustomer(r.Context(), sess.AccessToken)
	if errors.Is(err, customeraccount.ErrTokenRejected) && sess.RefreshToken != "" {
		refreshed, ok := res.refresh(w, r, sess)
		if !ok {
			return nil, nil
		}
		sess = refreshed
		customer, err = res.accounts.GetCustomer(r.Context(), sess.AccessToken)
	}
	if errors.Is(err, customeraccount.ErrTokenRejected) {
		log.LogInfoWithFields("auth", "Access token rejected, clearing session", nil)
		res.sessions.Clear(w)
		return nil, nil
	}
	if err != nil {
		log.LogWarnWithFields("auth", "Identity lookup failed", map[string]any{
			"error": err.Error(),
		})
		return nil, nil
	}

	return customer, sess
}

// refresh runs the refresh-token grant once and persists the result. On
// failure the stale session is cleared and the customer fails closed.
func (res *Resolver) refresh(w http.ResponseWriter, r *http.Request, sess *session.Session) (*session.Session, bool) {
	token, err := res.accounts.Refresh(r.Context(), sess.RefreshToken)
	if err != nil {
		log.LogInfoWithFields("auth", "Token refresh failed, clearing session", map[string]any{
			"error": err.Error(),
		})
		res.sessions.Clear(w)
		return nil, false
	}

	refreshed := &session.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if refreshed.RefreshToken == "" {
		// Provider did not rotate the refresh token; keep the old one
		refreshed.RefreshToken = sess.RefreshToken
	}
	if err := res.sessions.Save(w, refreshed); err != nil {
		log.LogErrorWithFields("auth", "Failed to persist refreshed session", map[string]any{
			"error": err.Error(),
		})
		return nil, false
	}

	log.LogDebugWithFields("auth", "Access token refreshed", nil)
	return refreshed, true
}
