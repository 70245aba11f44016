package customeraccount

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sukhira/storefront/internal/ioutil"
	"github.com/sukhira/storefront/internal/log"
)

// Customer is the identity resolved from an access token. Derived, never
// cached beyond request scope.
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Order is a past customer order as reported by the platform
type Order struct {
	ID              string      `json:"id"`
	Number          int         `json:"number"`
	ProcessedAt     string      `json:"processedAt"`
	FinancialStatus string      `json:"financialStatus"`
	TotalPrice      Money       `json:"totalPrice"`
	LineItems       []OrderLine `json:"lineItems"`
}

// OrderLine is a single line of an order
type OrderLine struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    Money  `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Money is an amount in a currency, passed through as the platform's strings
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

const customerQuery = `
query {
  customer {
    id
    firstName
    lastName
    emailAddress { emailAddress }
    phoneNumber { phoneNumber }
  }
}`

const ordersQuery = `
query {
  customer {
    orders(first: 20) {
      edges {
        node {
          id
          number
          processedAt
          financialStatus
          totalPrice { amount currencyCode }
          lineItems(first: 10) {
            edges {
              node {
                title
                quantity
                image { url }
                price { amount currencyCode }
              }
            }
          }
        }
      }
    }
  }
}`

const metafieldQuery = `
query customerMetafield($namespace: String!, $key: String!) {
  customer {
    metafield(namespace: $namespace, key: $key) {
      value
    }
  }
}`

const metafieldSetMutation = `
mutation customerMetafieldsSet($metafields: [CustomerMetafieldsSetInput!]!) {
  customerMetafieldsSet(metafields: $metafields) {
    metafields { key value }
    userErrors { field message }
  }
}`

// GetCustomer resolves the customer identity behind an access token.
// Returns (nil, nil) when the token is accepted but no customer record
// exists; returns ErrTokenRejected when the platform refuses the token.
func (c *Client) GetCustomer(ctx context.Context, accessToken string) (*Customer, error) {
	var result struct {
		Customer *struct {
			ID           string `json:"id"`
			FirstName    string `json:"firstName"`
			LastName     string `json:"lastName"`
			EmailAddress *struct {
				EmailAddress string `json:"emailAddress"`
			} `json:"emailAddress"`
			PhoneNumber *struct {
				PhoneNumber string `json:"phoneNumber"`
			} `json:"phoneNumber"`
		} `json:"customer"`
	}

	if err := c.graphql(ctx, accessToken, customerQuery, nil, &result); err != nil {
		return nil, err
	}
	if result.Customer == nil {
		return nil, nil
	}

	customer := &Customer{
		ID:        result.Customer.ID,
		FirstName: result.Customer.FirstName,
		LastName:  result.Customer.LastName,
	}
	if result.Customer.EmailAddress != nil {
		customer.Email = result.Customer.EmailAddress.EmailAddress
	}
	if result.Customer.PhoneNumber != nil {
		customer.Phone = result.Customer.PhoneNumber.PhoneNumber
	}
	return customer, nil
}

// GetOrders fetches the customer's recent orders
func (c *Client) GetOrders(ctx context.Context, accessToken string) ([]Order, error) {
	var result struct {
		Customer *struct {
			Orders struct {
				Edges []struct {
					Node struct {
						ID              string `json:"id"`
						Number          int    `json:"number"`
						ProcessedAt     string `json:"processedAt"`
						FinancialStatus string `json:"financialStatus"`
						TotalPrice      Money  `json:"totalPrice"`
						LineItems       struct {
							Edges []struct {
								Node struct {
									Title    string `json:"title"`
									Quantity int    `json:"quantity"`
									Image    *struct {
										URL string `json:"url"`
									} `json:"image"`
									Price Money `json:"price"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"lineItems"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"orders"`
		} `json:"customer"`
	}

	if err := c.graphql(ctx, accessToken, ordersQuery, nil, &result); err != nil {
		return nil, err
	}
	if result.Customer == nil {
		return nil, nil
	}

	orders := make([]Order, 0, len(result.Customer.Orders.Edges))
	for _, edge := range result.Customer.Orders.Edges {
		node := edge.Node
		order := Order{
			ID:              node.ID,
			Number:          node.Number,
			ProcessedAt:     node.ProcessedAt,
			FinancialStatus: node.FinancialStatus,
			TotalPrice:      node.TotalPrice,
		}
		for _, lineEdge := range node.LineItems.Edges {
			line := OrderLine{
				Title:    lineEdge.Node.Title,
				Quantity: lineEdge.Node.Quantity,
				Price:    lineEdge.Node.Price,
			}
			if lineEdge.Node.Image != nil {
				line.ImageURL = lineEdge.Node.Image.URL
			}
			order.LineItems = append(order.LineItems, line)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// GetMetafield reads a customer metafield value. Returns "" when the
// metafield is unset.
func (c *Client) GetMetafield(ctx context.Context, accessToken, namespace, key string) (string, error) {
	var result struct {
		Customer *struct {
			Metafield *struct {
				Value string `json:"value"`
			} `json:"metafield"`
		} `json:"customer"`
	}

	variables := map[string]any{"namespace": namespace, "key": key}
	if err := c.graphql(ctx, accessToken, metafieldQuery, variables, &result); err != nil {
		return "", err
	}
	if result.Customer == nil || result.Customer.Metafield == nil {
		return "", nil
	}
	return result.Customer.Metafield.Value, nil
}

// SetMetafield writes a customer metafield value
func (c *Client) SetMetafield(ctx context.Context, accessToken, namespace, key, fieldType, value string) error {
	var result struct {
		CustomerMetafieldsSet struct {
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
		} `json:"customerMetafieldsSet"`
	}

	variables := map[string]any{
		"metafields": []map[string]any{
			{
				"namespace": namespace,
				"key":       key,
				"type":      fieldType,
				"value":     value,
			},
		},
	}
	if err := c.graphql(ctx, accessToken, metafieldSetMutation, variables, &result); err != nil {
		return err
	}
	if userErrors := result.CustomerMetafieldsSet.UserErrors; len(userErrors) > 0 {
		return fmt.Errorf("metafield write rejected: %s", userErrors[0].Message)
	}
	return nil
}

type graphqlError struct {
	Message string `json:"message"`
}

// graphql executes a bearer-authenticated query against the Customer
// Account API and decodes the "data" object into out
func (c *Client) graphql(ctx context.Context, accessToken, query string, variables map[string]any, out any) error {
	payload := map[string]any{"query": query}
	if len(variables) > 0 {
		payload["variables"] = variables
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphQLEndpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("customer API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrTokenRejected
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("customer API returned status %d: %s", resp.StatusCode, ioutil.ReadLimited(resp.Body, 1024))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode customer API response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		log.LogWarnWithFields("customeraccount", "Customer API returned errors", map[string]any{
			"first": envelope.Errors[0].Message,
			"count": len(envelope.Errors),
		})
		// Access-restriction errors arrive as GraphQL errors with a 200.
		// The distinction matters: a restricted token is "unauthenticated",
		// an unset field is just null data.
		return ErrTokenRejected
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode customer API data: %w", err)
		}
	}
	return nil
}
