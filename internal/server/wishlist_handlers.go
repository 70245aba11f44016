package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sukhira/storefront/internal/auth"
	"github.com/sukhira/storefront/internal/customeraccount"
	jsonwriter "github.com/sukhira/storefront/internal/json"
	"github.com/sukhira/storefront/internal/log"
	"github.com/sukhira/storefront/internal/wishlist"
)

// WishlistHandlers serves the remote wishlist once a session exists. The
// pre-login list lives in the browser; /sync is the one-time hand-off.
type WishlistHandlers struct {
	resolver *auth.Resolver
	service  *wishlist.Service
}

// NewWishlistHandlers creates wishlist handlers
func NewWishlistHandlers(resolver *auth.Resolver, service *wishlist.Service) *WishlistHandlers {
	return &WishlistHandlers{resolver: resolver, service: service}
}

type wishlistRequest struct {
	Items []wishlist.Item `json:"items"`
}

// GetHandler returns the remote wishlist
func (h *WishlistHandlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	_, sess := h.resolver.Resolve(w, r)
	if sess == nil {
		jsonwriter.WriteUnauthorized(w, "Not logged in")
		return
	}

	items, err := h.service.Get(r.Context(), sess.AccessToken)
	if err != nil {
		log.LogErrorWithFields("wishlist", "Failed to read remote wishlist", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteBadGateway(w, "Failed to read wishlist")
		return
	}
	jsonwriter.Write(w, map[string]any{"items": items})
}

// PutHandler replaces the remote wishlist. Used for all post-login add and
// remove mutations; the local-storage path is dead while a session exists.
func (h *WishlistHandlers) PutHandler(w http.ResponseWriter, r *http.Request) {
	_, sess := h.resolver.Resolve(w, r)
	if sess == nil {
		jsonwriter.WriteUnauthorized(w, "Not logged in")
		return
	}

	req, ok := decodeWishlistRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.Put(r.Context(), sess.AccessToken, req.Items); err != nil {
		if errors.Is(err, wishlist.ErrTooManyItems) {
			jsonwriter.WriteBadRequest(w, "Wishlist exceeds maximum size")
			return
		}
		log.LogErrorWithFields("wishlist", "Failed to write remote wishlist", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteBadGateway(w, "Failed to save wishlist")
		return
	}
	jsonwriter.Write(w, map[string]any{"items": req.Items})
}

// SyncHandler merges the browser's pre-login list into the remote list,
// exactly once per login event. On failure the client must keep its local
// list — the merge is not retried and nothing is lost.
func (h *WishlistHandlers) SyncHandler(w http.ResponseWriter, r *http.Request) {
	_, sess := h.resolver.Resolve(w, r)
	if sess == nil {
		jsonwriter.WriteUnauthorized(w, "Not logged in")
		return
	}

	req, ok := decodeWishlistRequest(w, r)
	if !ok {
		return
	}

	merged, err := h.service.Sync(r.Context(), sess.AccessToken, req.Items)
	if err != nil {
		if errors.Is(err, wishlist.ErrTooManyItems) {
			jsonwriter.WriteBadRequest(w, "Wishlist exceeds maximum size")
			return
		}
		log.LogErrorWithFields("wishlist", "Wishlist sync failed", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteBadGateway(w, "Wishlist sync failed, local items preserved")
		return
	}
	jsonwriter.Write(w, map[string]any{"items": merged, "synced": true})
}

func decodeWishlistRequest(w http.ResponseWriter, r *http.Request) (*wishlistRequest, bool) {
	var req wishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request body")
		return nil, false
	}
	if req.Items == nil {
		req.Items = []wishlist.Item{}
	}
	return &req, true
}

// OrdersHandlers serves the customer's order history
type OrdersHandlers struct {
	resolver *auth.Resolver
	accounts *customeraccount.Client
}

// NewOrdersHandlers creates order-history handlers
func NewOrdersHandlers(resolver *auth.Resolver, accounts *customeraccount.Client) *OrdersHandlers {
	return &OrdersHandlers{resolver: resolver, accounts: accounts}
}

// GetHandler lists the customer's recent orders
func (h *OrdersHandlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	_, sess := h.resolver.Resolve(w, r)
	if sess == nil {
		jsonwriter.WriteUnauthorized(w, "Not logged in")
		return
	}

	orders, err := h.accounts.GetOrders(r.Context(), sess.AccessToken)
	if err != nil {
		log.LogErrorWithFields("orders", "Failed to fetch orders", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteBadGateway(w, "Failed to fetch orders")
		return
	}
	if orders == nil {
		orders = []customeraccount.Order{}
	}
	jsonwriter.Write(w, map[string]any{"orders": orders})
}
