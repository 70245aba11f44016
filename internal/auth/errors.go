package auth

// ErrorCode is a machine-readable login failure code, appended to the login
// page URL as ?error=<code>. The callback handler never surfaces a raw
// error to the browser; every failure becomes one of these.
type ErrorCode string

const (
	// ErrorOAuthProvider: the identity provider returned an error parameter
	ErrorOAuthProvider ErrorCode = "oauth_error"
	// ErrorInvalidRequest: code or state missing from the callback
	ErrorInvalidRequest ErrorCode = "invalid_request"
	// ErrorStateMismatch: returned state differs from the stored state.
	// Possible CSRF; the code is never exchanged.
	ErrorStateMismatch ErrorCode = "state_mismatch"
	// ErrorMissingVerifier: flow state expired before the callback arrived
	ErrorMissingVerifier ErrorCode = "missing_verifier"
	// ErrorTokenExchangeFailed: the provider rejected the code exchange
	ErrorTokenExchangeFailed ErrorCode = "token_exchange_failed"
	// ErrorAuthFailed: the flow could not be started
	ErrorAuthFailed ErrorCode = "auth_failed"
)
