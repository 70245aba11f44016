package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sukhira/storefront/internal/commerce"
	jsonwriter "github.com/sukhira/storefront/internal/json"
	"github.com/sukhira/storefront/internal/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// predictiveLimit bounds typeahead suggestions per result type
	predictiveLimit = 6
)

// CatalogHandlers serves the typed catalog pass-through API
type CatalogHandlers struct {
	catalog *commerce.Catalog
}

// NewCatalogHandlers creates catalog handlers over a caching catalog reader
func NewCatalogHandlers(catalog *commerce.Catalog) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// pageSize parses the "first" query parameter with bounds
func pageSize(r *http.Request) int {
	raw := r.URL.Query().Get("first")
	if raw == "" {
		return defaultPageSize
	}
	first, err := strconv.Atoi(raw)
	if err != nil || first < 1 {
		return defaultPageSize
	}
	if first > maxPageSize {
		return maxPageSize
	}
	return first
}

func writeUpstreamError(w http.ResponseWriter, operation string, err error) {
	if errors.Is(err, commerce.ErrNotFound) {
		jsonwriter.WriteNotFound(w, "Not found")
		return
	}
	log.LogErrorWithFields("catalog", "Upstream request failed", map[string]any{
		"operation": operation,
		"error":     err.Error(),
	})
	jsonwriter.WriteBadGateway(w, "Storefront API request failed")
}

// ProductsHandler lists products
func (h *CatalogHandlers) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetProducts(r.Context(), pageSize(r))
	if err != nil {
		writeUpstreamError(w, "products", err)
		return
	}
	jsonwriter.Write(w, map[string]any{"products": products})
}

// ProductHandler fetches a single product by handle
func (h *CatalogHandlers) ProductHandler(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	if handle == "" {
		jsonwriter.WriteBadRequest(w, "Product handle is required")
		return
	}

	product, err := h.catalog.GetProductByHandle(r.Context(), handle)
	if err != nil {
		writeUpstreamError(w, "product", err)
		return
	}
	jsonwriter.Write(w, map[string]any{"product": product})
}

// CollectionsHandler lists collections
func (h *CatalogHandlers) CollectionsHandler(w http.ResponseWriter, r *http.Request) {
	collections, err := h.catalog.GetCollections(r.Context(), pageSize(r))
	if err != nil {
		writeUpstreamError(w, "collections", err)
		return
	}
	jsonwriter.Write(w, map[string]any{"collections": collections})
}

// CollectionHandler fetches a collection and its products by handle
func (h *CatalogHandlers) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	if handle == "" {
		jsonwriter.WriteBadRequest(w, "Collection handle is required")
		return
	}

	collection, err := h.catalog.GetCollectionProducts(r.Context(), handle, pageSize(r))
	if err != nil {
		writeUpstreamError(w, "collection", err)
		return
	}
	jsonwriter.Write(w, map[string]any{"collection": collection})
}

// SearchHandler runs a product search
func (h *CatalogHandlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonwriter.WriteBadRequest(w, "Search query is required")
		return
	}

	products, err := h.catalog.SearchProducts(r.Context(), query, pageSize(r))
	if err != nil {
		writeUpstreamError(w, "search", err)
		return
	}
	jsonwriter.Write(w, map[string]any{"products": products})
}

// PredictiveSearchHandler returns typeahead suggestions while the customer
// is still typing
func (h *CatalogHandlers) PredictiveSearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonwriter.WriteBadRequest(w, "Search query is required")
		return
	}

	products, err := h.catalog.PredictiveSearch(r.Context(), query, predictiveLimit)
	if err != nil {
		writeUpstreamError(w, "predictive search", err)
		return
	}
	jsonwriter.Write(w, map[string]any{"products": products})
}

// FeaturedHandler returns the homepage payload: collections and newest
// products, fetched concurrently
func (h *CatalogHandlers) FeaturedHandler(w http.ResponseWriter, r *http.Request) {
	var (
		collections []commerce.Collection
		products    []commerce.Product
	)

	group, ctx := errgroup.WithContext(r.Context())
	group.Go(func() error {
		var err error
		collections, err = h.catalog.GetCollections(ctx, defaultPageSize)
		return err
	})
	group.Go(func() error {
		var err error
		products, err = h.catalog.GetProducts(ctx, defaultPageSize)
		return err
	})
	if err := group.Wait(); err != nil {
		writeUpstreamError(w, "featured", err)
		return
	}

	jsonwriter.Write(w, map[string]any{
		"collections": collections,
		"products":    products,
	})
}
