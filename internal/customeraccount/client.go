package customeraccount

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sukhira/storefront/internal/config"
	"github.com/sukhira/storefront/internal/crypto"
	"github.com/sukhira/storefront/internal/log"
	"golang.org/x/oauth2"
)

// Scopes requested from the Customer Account identity provider. Fixed,
// platform-defined.
const Scopes = "openid email customer-account-api:full"

// requestTimeout bounds every upstream round-trip
const requestTimeout = 15 * time.Second

// ErrTokenRejected indicates the platform rejected the bearer token
// (expired or revoked). Callers treat this as "unauthenticated", not as a
// hard failure.
var ErrTokenRejected = errors.New("customer access token rejected")

// Client talks to the platform's Customer Account surface: the OAuth
// authorization/token endpoints and the bearer-authenticated GraphQL API.
type Client struct {
	cfg         config.CustomerAccountConfig
	oauthConfig oauth2.Config
	httpClient  *http.Client
}

// NewClient creates a Customer Account client
func NewClient(cfg config.CustomerAccountConfig) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = requestTimeout
	retryClient.Logger = nil

	return &Client{
		cfg: cfg,
		oauthConfig: oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      []string{Scopes},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthorizeEndpoint(),
				TokenURL: cfg.TokenEndpoint(),
			},
		},
		httpClient: retryClient.StandardClient(),
	}
}

// AuthorizationURL builds the identity provider authorization URL for a new
// flow attempt. The caller must persist state and verifier where the
// callback handler can read them back.
func (c *Client) AuthorizationURL() (authURL, state, verifier string, err error) {
	state, err = crypto.GenerateState()
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate state: %w", err)
	}
	verifier, err = crypto.GenerateCodeVerifier()
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	authURL = c.oauthConfig.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", crypto.CodeChallengeS256(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	return authURL, state, verifier, nil
}

// Exchange trades an authorization code plus its PKCE verifier for tokens
func (c *Client) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx = c.withHTTPClient(ctx)
	token, err := c.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// Response body is the only diagnostic the provider gives us
			log.LogErrorWithFields("customeraccount", "Token exchange rejected", map[string]any{
				"status": retrieveErr.Response.StatusCode,
				"body":   string(retrieveErr.Body),
			})
		}
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, nil
}

// Refresh trades a refresh token for a new access token
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ctx = c.withHTTPClient(ctx)
	source := c.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return token, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
