package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukhira/storefront/internal/config"
	"github.com/sukhira/storefront/internal/cookie"
	"github.com/sukhira/storefront/internal/crypto"
	"github.com/sukhira/storefront/internal/customeraccount"
	"github.com/sukhira/storefront/internal/session"
)

const testBaseURL = "https://shop.example.com"

// fakeProvider stands in for the identity provider: a token endpoint that
// records every exchange it sees plus a customer GraphQL endpoint.
type fakeProvider struct {
	server *httptest.Server

	tokenHits    atomic.Int64
	tokenFails   bool
	lastCode     string
	lastVerifier string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		fp.tokenHits.Add(1)
		require.NoError(t, r.ParseForm())
		fp.lastCode = r.PostForm.Get("code")
		fp.lastVerifier = r.PostForm.Get("code_verifier")

		w.Header().Set("Content-Type", "application/json")
		if fp.tokenFails {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"tok_abc","refresh_token":"ref_xyz","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("POST /account/customer/api/2024-01/graphql", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"customer":{"id":"gid://shopify/Customer/1","firstName":"Ada"}}}`)
	})

	fp.server = httptest.NewServer(mux)
	t.Cleanup(fp.server.Close)
	return fp
}

func newTestHandlers(t *testing.T, fp *fakeProvider) (*Handlers, session.Store) {
	t.Helper()
	cfg := config.CustomerAccountConfig{
		ClientID:    "shp_client",
		AuthDomain:  fp.server.URL,
		RedirectURI: testBaseURL + "/auth/callback",
	}
	accounts := customeraccount.NewClient(cfg)

	enc, err := crypto.NewEncryptor([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)
	store := session.NewCookieStore(enc)

	resolver := NewResolver(accounts, store)
	return NewHandlers(accounts, store, resolver, testBaseURL), store
}

// loginError extracts the ?error code from a login redirect
func loginError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, loginPath, location.Path)
	return location.Query().Get("error")
}

func flowCookies(rec *httptest.ResponseRecorder) (state, verifier *http.Cookie) {
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case cookie.StateCookie:
			state = c
		case cookie.VerifierCookie:
			verifier = c
		}
	}
	return state, verifier
}

func TestLoginRedirectsToProviderWithPKCE(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.LoginHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/oauth/authorize", location.Path)

	query := location.Query()
	assert.Equal(t, "shp_client", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, testBaseURL+"/auth/callback", query.Get("redirect_uri"))
	assert.Equal(t, customeraccount.Scopes, query.Get("scope"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))

	stateCookie, verifierCookie := flowCookies(rec)
	require.NotNil(t, stateCookie)
	require.NotNil(t, verifierCookie)
	assert.Equal(t, query.Get("state"), stateCookie.Value)
	assert.Equal(t, crypto.CodeChallengeS256(verifierCookie.Value), query.Get("code_challenge"))
	assert.True(t, stateCookie.HttpOnly)
	assert.True(t, verifierCookie.HttpOnly)
}

func TestLoginGeneratesFreshStatePerAttempt(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	states := map[string]bool{}
	for range 5 {
		rec := httptest.NewRecorder()
		handlers.LoginHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
		stateCookie, _ := flowCookies(rec)
		require.NotNil(t, stateCookie)
		states[stateCookie.Value] = true
	}
	assert.Len(t, states, 5)
}

func callbackRequest(target, state, verifier string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: cookie.StateCookie, Value: state})
	}
	if verifier != "" {
		req.AddCookie(&http.Cookie{Name: cookie.VerifierCookie, Value: verifier})
	}
	return req
}

func TestCallbackSuccess(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, store := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.CallbackHandler(rec, callbackRequest("/auth/callback?code=abc&state=s123", "s123", "v456"))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testBaseURL+landingPath, rec.Header().Get("Location"))
	assert.Equal(t, int64(1), fp.tokenHits.Load())
	assert.Equal(t, "abc", fp.lastCode)
	assert.Equal(t, "v456", fp.lastVerifier)

	// Flow state is single-use: destroyed after the exchange
	stateCookie, verifierCookie := flowCookies(rec)
	require.NotNil(t, stateCookie)
	require.NotNil(t, verifierCookie)
	assert.Less(t, stateCookie.MaxAge, 0)
	assert.Less(t, verifierCookie.MaxAge, 0)

	// The session cookies must round-trip to the exchanged tokens
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			next.AddCookie(c)
		}
	}
	sess, err := store.Load(next)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok_abc", sess.AccessToken)
	assert.Equal(t, "ref_xyz", sess.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 30*time.Second)
}

func TestCallbackProviderError(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.CallbackHandler(rec, callbackRequest("/auth/callback?error=access_denied&error_description=denied", "s123", "v456"))

	assert.Equal(t, string(ErrorOAuthProvider), loginError(t, rec))
	assert.Equal(t, int64(0), fp.tokenHits.Load())
}

func TestCallbackMissingParams(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	for _, target := range []string{
		"/auth/callback",
		"/auth/callback?code=abc",
		"/auth/callback?state=s123",
	} {
		rec := httptest.NewRecorder()
		handlers.CallbackHandler(rec, callbackRequest(target, "s123", "v456"))
		assert.Equal(t, string(ErrorInvalidRequest), loginError(t, rec), "target %s", target)
	}
	assert.Equal(t, int64(0), fp.tokenHits.Load())
}

func TestCallbackStateMismatchNeverReachesTokenEndpoint(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.CallbackHandler(rec, callbackRequest("/auth/callback?code=abc&state=forged", "s123", "v456"))

	assert.Equal(t, string(ErrorStateMismatch), loginError(t, rec))
	assert.Equal(t, int64(0), fp.tokenHits.Load())
}

func TestCallbackMissingStateCookie(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.CallbackHandler(rec, callbackRequest("/auth/callback?code=abc&state=s123", "", "v456"))

	assert.Equal(t, string(ErrorStateMismatch), loginError(t, rec))
	assert.Equal(t, int64(0), fp.tokenHits.Load())
}

func TestCallbackMissingVerifier(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.CallbackHandler(rec, callbackRequest("/auth/callback?code=abc&state=s123", "s123", ""))

	assert.Equal(t, string(ErrorMissingVerifier), loginError(t, rec))
	assert.Equal(t, int64(0), fp.tokenHits.Load())
}

func TestCallbackExchangeFailure(t *testing.T) {
	fp := newFakeProvider(t)
	fp.tokenFails = true
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.CallbackHandler(rec, callbackRequest("/auth/callback?code=abc&state=s123", "s123", "v456"))

	assert.Equal(t, string(ErrorTokenExchangeFailed), loginError(t, rec))
	assert.Equal(t, int64(1), fp.tokenHits.Load())

	// A failed exchange still destroys the flow state
	stateCookie, verifierCookie := flowCookies(rec)
	require.NotNil(t, stateCookie)
	require.NotNil(t, verifierCookie)
	assert.Less(t, stateCookie.MaxAge, 0)
	assert.Less(t, verifierCookie.MaxAge, 0)

	// No credentials may be persisted on failure
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, cookie.AccessTokenCookie, c.Name)
		assert.NotEqual(t, cookie.RefreshTokenCookie, c.Name)
	}
}

func TestLogoutGetRedirectsHome(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.LogoutHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testBaseURL+"/", rec.Header().Get("Location"))

	names := map[string]int{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = c.MaxAge
	}
	assert.Less(t, names[cookie.AccessTokenCookie], 0)
	assert.Less(t, names[cookie.RefreshTokenCookie], 0)
}

func TestLogoutPostAnswersJSON(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.LogoutHandler(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["success"])
}

func TestProfileWithoutSession(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, _ := newTestHandlers(t, fp)

	rec := httptest.NewRecorder()
	handlers.ProfileHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileWithSession(t *testing.T) {
	fp := newFakeProvider(t)
	handlers, store := newTestHandlers(t, fp)

	saveRec := httptest.NewRecorder()
	require.NoError(t, store.Save(saveRec, &session.Session{
		AccessToken: "tok_abc",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	for _, c := range saveRec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}

	rec := httptest.NewRecorder()
	handlers.ProfileHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Customer customeraccount.Customer `json:"customer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "gid://shopify/Customer/1", body.Customer.ID)
	assert.Equal(t, "Ada", body.Customer.FirstName)
}
