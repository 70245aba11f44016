package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sukhira/storefront/internal/config"
	"github.com/sukhira/storefront/internal/ioutil"
	"github.com/sukhira/storefront/internal/log"
)

// ErrNotFound indicates the requested resource does not exist on the
// platform (unknown handle, stale cart id)
var ErrNotFound = errors.New("resource not found")

// requestTimeout bounds every Storefront API round-trip
const requestTimeout = 15 * time.Second

// Client is a typed client for the platform's Storefront GraphQL API
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a Storefront API client
func NewClient(cfg config.StorefrontConfig) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = requestTimeout
	retryClient.Logger = nil

	return &Client{
		endpoint:    cfg.Endpoint(),
		accessToken: string(cfg.AccessToken),
		httpClient:  retryClient.StandardClient(),
	}
}

type graphqlError struct {
	Message string `json:"message"`
}

// do executes a query and decodes the "data" object into out
func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	payload := map[string]any{"query": query}
	if len(variables) > 0 {
		payload["variables"] = variables
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storefront API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.LogErrorWithFields("commerce", "Storefront API error", map[string]any{
			"status": resp.StatusCode,
			"body":   ioutil.ReadLimited(resp.Body, 1024),
		})
		return fmt.Errorf("storefront API returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode storefront API response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, gqlErr := range envelope.Errors {
			messages[i] = gqlErr.Message
		}
		return fmt.Errorf("storefront API error: %s", strings.Join(messages, ", "))
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode storefront API data: %w", err)
		}
	}
	return nil
}
