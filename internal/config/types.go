package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sukhira/storefront/internal/urlutil"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// UnmarshalJSON resolves secrets at parse time. A secret is either a plain
// string or an environment reference {"$env": "VAR_NAME"}; the latter is the
// only form accepted for values that must never be committed to the config
// file.
func (s *Secret) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*s = Secret(plain)
		return nil
	}

	var ref struct {
		Env string `json:"$env"`
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return fmt.Errorf("secret must be a string or {\"$env\": \"VAR_NAME\"}: %w", err)
	}
	if ref.Env == "" {
		return fmt.Errorf("secret env reference is missing $env key")
	}

	value, ok := os.LookupEnv(ref.Env)
	if !ok {
		return fmt.Errorf("environment variable %s is not set", ref.Env)
	}
	*s = Secret(value)
	return nil
}

// ServerConfig configures this application's HTTP surface
type ServerConfig struct {
	// BaseURL is the externally visible origin, used to build redirect targets
	BaseURL string `json:"baseURL"`
	Addr    string `json:"addr"`
}

// StorefrontConfig configures access to the platform's Storefront GraphQL API
type StorefrontConfig struct {
	StoreDomain string `json:"storeDomain"`
	APIVersion  string `json:"apiVersion,omitempty"`
	AccessToken Secret `json:"accessToken"`
}

// Endpoint returns the Storefront GraphQL endpoint for the configured store.
// StoreDomain is normally a bare host; a full origin is accepted for local
// mock endpoints.
func (c StorefrontConfig) Endpoint() string {
	version := c.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	base := c.StoreDomain
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return urlutil.MustJoinPath(base, "api", version, "graphql.json")
}

// CustomerAccountConfig configures the Customer Account OAuth client
type CustomerAccountConfig struct {
	ClientID string `json:"clientId"`
	// AuthDomain is the identity provider origin, e.g. https://shopify.com/<shop>
	AuthDomain  string `json:"authDomain"`
	RedirectURI string `json:"redirectUri"`
	APIVersion  string `json:"apiVersion,omitempty"`
	// CookieEncryptionKey seals credential cookies; must decode to 32 bytes
	CookieEncryptionKey Secret `json:"cookieEncryptionKey"`
}

// GraphQLEndpoint returns the Customer Account API GraphQL endpoint
func (c CustomerAccountConfig) GraphQLEndpoint() string {
	version := c.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	return urlutil.MustJoinPath(c.AuthDomain, "account", "customer", "api", version, "graphql")
}

// AuthorizeEndpoint returns the identity provider's authorization endpoint
func (c CustomerAccountConfig) AuthorizeEndpoint() string {
	return urlutil.MustJoinPath(c.AuthDomain, "auth", "oauth", "authorize")
}

// TokenEndpoint returns the identity provider's token endpoint
func (c CustomerAccountConfig) TokenEndpoint() string {
	return urlutil.MustJoinPath(c.AuthDomain, "auth", "oauth", "token")
}

// LimitsConfig holds client-side policy limits, not hard protocol limits
type LimitsConfig struct {
	MaxWishlistItems int `json:"maxWishlistItems,omitempty"`
}

// DefaultAPIVersion is the platform API version both GraphQL surfaces default to
const DefaultAPIVersion = "2024-01"

// DefaultMaxWishlistItems bounds the wishlist payload sent to the remote store
const DefaultMaxWishlistItems = 100

// Config is the complete application configuration
type Config struct {
	Version         string                `json:"version"`
	Server          ServerConfig          `json:"server"`
	Storefront      StorefrontConfig      `json:"storefront"`
	CustomerAccount CustomerAccountConfig `json:"customerAccount"`
	Limits          LimitsConfig          `json:"limits,omitempty"`
}

// MaxWishlistItems returns the configured wishlist bound or the default
func (c Config) MaxWishlistItems() int {
	if c.Limits.MaxWishlistItems > 0 {
		return c.Limits.MaxWishlistItems
	}
	return DefaultMaxWishlistItems
}
