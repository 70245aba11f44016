package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sukhira/storefront/internal/commerce"
	jsonwriter "github.com/sukhira/storefront/internal/json"
	"github.com/sukhira/storefront/internal/log"
)

// CartHandlers serves the cart pass-through API. Carts are platform-owned;
// the browser holds only the cart id, passed in the request body or query
// (ids are gid URIs and don't fit in a path segment). All totals come back
// from the platform.
type CartHandlers struct {
	commerce *commerce.Client
}

// NewCartHandlers creates cart handlers
func NewCartHandlers(client *commerce.Client) *CartHandlers {
	return &CartHandlers{commerce: client}
}

type cartRequest struct {
	CartID  string                    `json:"cartId"`
	Lines   []commerce.CartLineInput  `json:"lines,omitempty"`
	Updates []commerce.CartLineUpdate `json:"updates,omitempty"`
	LineIDs []string                  `json:"lineIds,omitempty"`
}

func decodeCartRequest(w http.ResponseWriter, r *http.Request) (*cartRequest, bool) {
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request body")
		return nil, false
	}
	return &req, true
}

func (h *CartHandlers) writeCart(w http.ResponseWriter, cart *commerce.Cart, err error) {
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			// Stale cart id: tell the client to drop it and start over
			jsonwriter.WriteNotFound(w, "Cart not found")
			return
		}
		log.LogErrorWithFields("cart", "Cart operation failed", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteBadGateway(w, "Cart operation failed")
		return
	}
	jsonwriter.Write(w, map[string]*commerce.Cart{"cart": cart})
}

// CreateHandler creates a cart with its initial lines
func (h *CartHandlers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCartRequest(w, r)
	if !ok {
		return
	}
	if len(req.Lines) == 0 {
		jsonwriter.WriteBadRequest(w, "At least one line is required")
		return
	}

	cart, err := h.commerce.CreateCart(r.Context(), req.Lines)
	h.writeCart(w, cart, err)
}

// GetHandler fetches a cart by id (?id=)
func (h *CartHandlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	cartID := r.URL.Query().Get("id")
	if cartID == "" {
		jsonwriter.WriteBadRequest(w, "Cart id is required")
		return
	}

	cart, err := h.commerce.GetCart(r.Context(), cartID)
	h.writeCart(w, cart, err)
}

// AddLinesHandler adds lines to an existing cart
func (h *CartHandlers) AddLinesHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCartRequest(w, r)
	if !ok {
		return
	}
	if req.CartID == "" || len(req.Lines) == 0 {
		jsonwriter.WriteBadRequest(w, "Cart id and lines are required")
		return
	}

	cart, err := h.commerce.AddCartLines(r.Context(), req.CartID, req.Lines)
	h.writeCart(w, cart, err)
}

// UpdateLinesHandler changes line quantities
func (h *CartHandlers) UpdateLinesHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCartRequest(w, r)
	if !ok {
		return
	}
	if req.CartID == "" || len(req.Updates) == 0 {
		jsonwriter.WriteBadRequest(w, "Cart id and updates are required")
		return
	}

	cart, err := h.commerce.UpdateCartLines(r.Context(), req.CartID, req.Updates)
	h.writeCart(w, cart, err)
}

// RemoveLinesHandler removes lines from a cart
func (h *CartHandlers) RemoveLinesHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCartRequest(w, r)
	if !ok {
		return
	}
	if req.CartID == "" || len(req.LineIDs) == 0 {
		jsonwriter.WriteBadRequest(w, "Cart id and line ids are required")
		return
	}

	cart, err := h.commerce.RemoveCartLines(r.Context(), req.CartID, req.LineIDs)
	h.writeCart(w, cart, err)
}
