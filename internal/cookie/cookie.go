package cookie

import (
	"net/http"
	"time"

	"github.com/sukhira/storefront/internal/envutil"
	"github.com/sukhira/storefront/internal/log"
)

// Cookie names used by the customer identity exchange
const (
	AccessTokenCookie  = "customer_access_token"
	RefreshTokenCookie = "customer_refresh_token"
	StateCookie        = "oauth_state"
	VerifierCookie     = "oauth_code_verifier"
)

// FlowStateTTL is how long the transient OAuth flow cookies remain valid
const FlowStateTTL = 10 * time.Minute

// Set sets an HttpOnly cookie with the security settings used for all
// credential storage: secure transport outside dev, SameSite=Lax so the
// IdP redirect back to the callback still carries it.
func Set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	secure := !envutil.IsDev()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})

	log.LogTraceWithFields("cookie", "Cookie set", map[string]any{
		"name":     name,
		"maxAge":   maxAge.String(),
		"secure":   secure,
		"sameSite": "Lax",
	})
}

// SetFlowState persists the transient OAuth state and code verifier,
// scoped to FlowStateTTL
func SetFlowState(w http.ResponseWriter, state, verifier string) {
	Set(w, StateCookie, state, FlowStateTTL)
	Set(w, VerifierCookie, verifier, FlowStateTTL)
}

// Clear removes a cookie by setting MaxAge to -1
func Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// ClearFlowState removes the transient OAuth flow cookies
func ClearFlowState(w http.ResponseWriter) {
	Clear(w, StateCookie)
	Clear(w, VerifierCookie)
}

// ClearSession removes the access and refresh token cookies
func ClearSession(w http.ResponseWriter) {
	Clear(w, AccessTokenCookie)
	Clear(w, RefreshTokenCookie)
	log.LogTraceWithFields("cookie", "Session cookies cleared", nil)
}

// Get retrieves a cookie value from the request
func Get(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
