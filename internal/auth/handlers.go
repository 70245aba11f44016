package auth

import (
	"net/http"
	"net/url"
	"time"

	"github.com/sukhira/storefront/internal/cookie"
	"github.com/sukhira/storefront/internal/customeraccount"
	jsonwriter "github.com/sukhira/storefront/internal/json"
	"github.com/sukhira/storefront/internal/log"
	"github.com/sukhira/storefront/internal/session"
)

const (
	// loginPath is where every failed flow lands, with ?error=<code>
	loginPath = "/account/login"
	// landingPath is where a successful login lands
	landingPath = "/account"
)

// Handlers serves the customer identity exchange HTTP surface
type Handlers struct {
	accounts *customeraccount.Client
	sessions session.Store
	resolver *Resolver
	baseURL  string
}

// NewHandlers creates the auth handlers
func NewHandlers(accounts *customeraccount.Client, sessions session.Store, resolver *Resolver, baseURL string) *Handlers {
	return &Handlers{
		accounts: accounts,
		sessions: sessions,
		resolver: resolver,
		baseURL:  baseURL,
	}
}

// redirectLoginError sends the browser back to the login page with a
// machine-readable error code
func (h *Handlers) redirectLoginError(w http.ResponseWriter, r *http.Request, code ErrorCode) {
	target := h.baseURL + loginPath + "?error=" + url.QueryEscape(string(code))
	http.Redirect(w, r, target, http.StatusFound)
}

// LoginHandler generates the PKCE pair, persists the transient flow state
// and redirects to the identity provider. Its only failure path is the
// secure random source.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	authURL, state, verifier, err := h.accounts.AuthorizationURL()
	if err != nil {
		log.LogErrorWithFields("auth", "Failed to build authorization URL", map[string]any{
			"error": err.Error(),
		})
		h.redirectLoginError(w, r, ErrorAuthFailed)
		return
	}

	cookie.SetFlowState(w, state, verifier)

	log.LogInfoWithFields("auth", "Starting customer login flow", map[string]any{
		"state": state,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// CallbackHandler completes the authorization-code exchange. The handler is
// a linear state machine with no branch back; every terminal state is a
// redirect, never an uncaught error.
func (h *Handlers) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// 1. Provider-reported error
	if providerErr := query.Get("error"); providerErr != "" {
		log.LogWarnWithFields("auth", "Identity provider returned an error", map[string]any{
			"error":       providerErr,
			"description": query.Get("error_description"),
		})
		h.redirectLoginError(w, r, ErrorOAuthProvider)
		return
	}

	// 2. Presence of code and state
	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		h.redirectLoginError(w, r, ErrorInvalidRequest)
		return
	}

	// 3. Exact state match against the stored flow state. CSRF defense:
	// never weakened to a prefix or substring comparison.
	storedState, err := cookie.Get(r, cookie.StateCookie)
	if err != nil || state != storedState {
		log.LogWarnWithFields("auth", "OAuth state mismatch", map[string]any{
			"haveStored": err == nil,
		})
		h.redirectLoginError(w, r, ErrorStateMismatch)
		return
	}

	// 4. Verifier presence
	verifier, err := cookie.Get(r, cookie.VerifierCookie)
	if err != nil || verifier == "" {
		h.redirectLoginError(w, r, ErrorMissingVerifier)
		return
	}

	// 5. Token exchange. The flow state is single-use: destroyed whether
	// the exchange succeeds or fails.
	token, err := h.accounts.Exchange(r.Context(), code, verifier)
	if err != nil {
		cookie.ClearFlowState(w)
		log.LogErrorWithFields("auth", "Token exchange failed", map[string]any{
			"error": err.Error(),
		})
		h.redirectLoginError(w, r, ErrorTokenExchangeFailed)
		return
	}

	// 6. Persist the session, destroy the flow state, land the customer
	sess := &session.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if err := h.sessions.Save(w, sess); err != nil {
		cookie.ClearFlowState(w)
		log.LogErrorWithFields("auth", "Failed to persist session", map[string]any{
			"error": err.Error(),
		})
		h.redirectLoginError(w, r, ErrorAuthFailed)
		return
	}
	cookie.ClearFlowState(w)

	log.LogInfoWithFields("auth", "Customer login completed", map[string]any{
		"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
	})
	http.Redirect(w, r, h.baseURL+landingPath, http.StatusFound)
}

// LogoutHandler clears the session. GET redirects home for link-based
// logout; POST answers JSON for script-based logout.
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)

	switch r.Method {
	case http.MethodGet:
		http.Redirect(w, r, h.baseURL+"/", http.StatusFound)
	case http.MethodPost:
		jsonwriter.Write(w, map[string]bool{"success": true})
	default:
		jsonwriter.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	}
}

// ProfileHandler returns the resolved customer identity: 401 without a
// session, 404 when the token is accepted but no customer record exists,
// 200 with the customer otherwise.
func (h *Handlers) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	customer, sess := h.resolver.Resolve(w, r)
	if sess == nil {
		jsonwriter.WriteUnauthorized(w, "Not logged in")
		return
	}
	if customer == nil {
		jsonwriter.WriteNotFound(w, "Customer not found")
		return
	}

	jsonwriter.Write(w, map[string]*customeraccount.Customer{"customer": customer})
}
