package commerce

import (
	"context"
	"fmt"
)

// rawCart mirrors the connection-shaped cart before flattening
type rawCart struct {
	ID            string          `json:"id"`
	CheckoutURL   string          `json:"checkoutUrl"`
	TotalQuantity int             `json:"totalQuantity"`
	Cost          CartCost        `json:"cost"`
	Lines         edges[CartLine] `json:"lines"`
}

func (r *rawCart) toCart() *Cart {
	return &Cart{
		ID:            r.ID,
		CheckoutURL:   r.CheckoutURL,
		TotalQuantity: r.TotalQuantity,
		Cost:          r.Cost,
		Lines:         r.Lines.nodes(),
	}
}

type cartMutationResult struct {
	Cart       *rawCart `json:"cart"`
	UserErrors []struct {
		Field   []string `json:"field"`
		Message string   `json:"message"`
	} `json:"userErrors"`
}

func (r cartMutationResult) cart(operation string) (*Cart, error) {
	if len(r.UserErrors) > 0 {
		return nil, fmt.Errorf("%s rejected: %s", operation, r.UserErrors[0].Message)
	}
	if r.Cart == nil {
		return nil, fmt.Errorf("%s returned no cart", operation)
	}
	return r.Cart.toCart(), nil
}

// CreateCart creates a platform cart with the given initial lines. The
// returned cart id is the client's only durable handle on the cart.
func (c *Client) CreateCart(ctx context.Context, lines []CartLineInput) (*Cart, error) {
	var result struct {
		CartCreate cartMutationResult `json:"cartCreate"`
	}
	variables := map[string]any{
		"input": map[string]any{"lines": lines},
	}
	if err := c.do(ctx, createCartMutation, variables, &result); err != nil {
		return nil, err
	}
	return result.CartCreate.cart("cart create")
}

// GetCart fetches a cart by id. Expired or deleted carts return ErrNotFound
// so the caller can discard its stored id.
func (c *Client) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	var result struct {
		Cart *rawCart `json:"cart"`
	}
	variables := map[string]any{"cartId": cartID}
	if err := c.do(ctx, getCartQuery, variables, &result); err != nil {
		return nil, err
	}
	if result.Cart == nil {
		return nil, fmt.Errorf("cart %q: %w", cartID, ErrNotFound)
	}
	return result.Cart.toCart(), nil
}

// AddCartLines adds lines to an existing cart
func (c *Client) AddCartLines(ctx context.Context, cartID string, lines []CartLineInput) (*Cart, error) {
	var result struct {
		CartLinesAdd cartMutationResult `json:"cartLinesAdd"`
	}
	variables := map[string]any{"cartId": cartID, "lines": lines}
	if err := c.do(ctx, addToCartMutation, variables, &result); err != nil {
		return nil, err
	}
	return result.CartLinesAdd.cart("cart lines add")
}

// UpdateCartLines changes quantities of existing lines
func (c *Client) UpdateCartLines(ctx context.Context, cartID string, lines []CartLineUpdate) (*Cart, error) {
	var result struct {
		CartLinesUpdate cartMutationResult `json:"cartLinesUpdate"`
	}
	variables := map[string]any{"cartId": cartID, "lines": lines}
	if err := c.do(ctx, updateCartLinesMutation, variables, &result); err != nil {
		return nil, err
	}
	return result.CartLinesUpdate.cart("cart lines update")
}

// RemoveCartLines removes lines from a cart
func (c *Client) RemoveCartLines(ctx context.Context, cartID string, lineIDs []string) (*Cart, error) {
	var result struct {
		CartLinesRemove cartMutationResult `json:"cartLinesRemove"`
	}
	variables := map[string]any{"cartId": cartID, "lineIds": lineIDs}
	if err := c.do(ctx, removeFromCartMutation, variables, &result); err != nil {
		return nil, err
	}
	return result.CartLinesRemove.cart("cart lines remove")
}
