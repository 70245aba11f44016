package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Load loads and processes the config with immediate env var resolution
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		return Config{}, fmt.Errorf("config version is required")
	}
	if version != "v1" {
		return Config{}, fmt.Errorf("unsupported config version: %s", version)
	}

	if err := validateRawConfig(rawConfig); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	// Parse directly into the typed Config struct; Secret.UnmarshalJSON
	// resolves env vars immediately
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validateRawConfig validates the config structure before environment
// resolution. Secrets must use env references so the config file can be
// committed without leaking credentials.
func validateRawConfig(rawConfig map[string]any) error {
	secretFields := []struct {
		section string
		key     string
	}{
		{"storefront", "accessToken"},
		{"customerAccount", "cookieEncryptionKey"},
	}

	for _, field := range secretFields {
		section, ok := rawConfig[field.section].(map[string]any)
		if !ok {
			continue
		}
		value, exists := section[field.key]
		if !exists {
			continue
		}
		if _, isString := value.(string); isString {
			return fmt.Errorf("%s.%s must use environment variable reference for security", field.section, field.key)
		}
		if refMap, isMap := value.(map[string]any); isMap {
			if _, hasEnv := refMap["$env"]; !hasEnv {
				return fmt.Errorf("%s.%s must use {\"$env\": \"VAR_NAME\"} format", field.section, field.key)
			}
		}
	}
	return nil
}

// ValidateConfig validates the resolved configuration
func ValidateConfig(config *Config) error {
	if config.Server.BaseURL == "" {
		return fmt.Errorf("server.baseURL is required")
	}
	if _, err := url.Parse(config.Server.BaseURL); err != nil {
		return fmt.Errorf("server.baseURL is not a valid URL: %w", err)
	}
	if config.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if config.Storefront.StoreDomain == "" {
		return fmt.Errorf("storefront.storeDomain is required")
	}
	if config.Storefront.AccessToken == "" {
		return fmt.Errorf("storefront.accessToken is required")
	}

	ca := config.CustomerAccount
	if ca.ClientID == "" {
		return fmt.Errorf("customerAccount.clientId is required")
	}
	if !strings.HasPrefix(ca.AuthDomain, "https://") {
		return fmt.Errorf("customerAccount.authDomain must be an https origin")
	}
	if ca.RedirectURI == "" {
		return fmt.Errorf("customerAccount.redirectUri is required")
	}
	if _, err := DecodeEncryptionKey(ca.CookieEncryptionKey); err != nil {
		return err
	}

	if config.Limits.MaxWishlistItems < 0 {
		return fmt.Errorf("limits.maxWishlistItems must not be negative")
	}

	return nil
}

// DecodeEncryptionKey decodes the cookie encryption key. The key is either
// raw 32 bytes or the base64 encoding of 32 bytes.
func DecodeEncryptionKey(secret Secret) ([]byte, error) {
	raw := string(secret)
	if raw == "" {
		return nil, fmt.Errorf("customerAccount.cookieEncryptionKey is required")
	}
	if len(raw) == 32 {
		return []byte(raw), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	return nil, fmt.Errorf("customerAccount.cookieEncryptionKey must be 32 bytes (raw or base64)")
}
