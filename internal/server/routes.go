package server

import (
	"net/http"

	"github.com/sukhira/storefront/internal/auth"
)

// Routes holds the handler groups the router wires up
type Routes struct {
	Auth     *auth.Handlers
	Catalog  *CatalogHandlers
	Cart     *CartHandlers
	Wishlist *WishlistHandlers
	Orders   *OrdersHandlers
}

// NewRouter builds the application's HTTP surface with logging and panic
// recovery applied to every route
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health", NewHealthHandler())

	// Customer identity exchange
	mux.HandleFunc("GET /auth/login", routes.Auth.LoginHandler)
	mux.HandleFunc("GET /auth/callback", routes.Auth.CallbackHandler)
	mux.HandleFunc("GET /auth/logout", routes.Auth.LogoutHandler)
	mux.HandleFunc("POST /auth/logout", routes.Auth.LogoutHandler)
	mux.HandleFunc("GET /auth/profile", routes.Auth.ProfileHandler)

	// Catalog pass-through
	mux.HandleFunc("GET /api/products", routes.Catalog.ProductsHandler)
	mux.HandleFunc("GET /api/products/{handle}", routes.Catalog.ProductHandler)
	mux.HandleFunc("GET /api/collections", routes.Catalog.CollectionsHandler)
	mux.HandleFunc("GET /api/collections/{handle}", routes.Catalog.CollectionHandler)
	mux.HandleFunc("GET /api/search", routes.Catalog.SearchHandler)
	mux.HandleFunc("GET /api/search/predictive", routes.Catalog.PredictiveSearchHandler)
	mux.HandleFunc("GET /api/featured", routes.Catalog.FeaturedHandler)

	// Cart pass-through
	mux.HandleFunc("POST /api/cart", routes.Cart.CreateHandler)
	mux.HandleFunc("GET /api/cart", routes.Cart.GetHandler)
	mux.HandleFunc("POST /api/cart/lines", routes.Cart.AddLinesHandler)
	mux.HandleFunc("PUT /api/cart/lines", routes.Cart.UpdateLinesHandler)
	mux.HandleFunc("DELETE /api/cart/lines", routes.Cart.RemoveLinesHandler)

	// Wishlist and account
	mux.HandleFunc("GET /api/wishlist", routes.Wishlist.GetHandler)
	mux.HandleFunc("PUT /api/wishlist", routes.Wishlist.PutHandler)
	mux.HandleFunc("POST /api/wishlist/sync", routes.Wishlist.SyncHandler)
	mux.HandleFunc("GET /api/account/orders", routes.Orders.GetHandler)

	return LoggingMiddleware(RecoverMiddleware(mux))
}
