package commerce

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sukhira/storefront/internal/log"
)

const (
	catalogCacheSize = 256
	catalogCacheTTL  = 5 * time.Minute
)

// Catalog wraps the Storefront client with a short-TTL read cache for the
// handle-addressed catalog queries. Cart operations never cache.
type Catalog struct {
	client      *Client
	products    *expirable.LRU[string, *Product]
	collections *expirable.LRU[string, *CollectionWithProducts]
}

// NewCatalog creates a caching catalog reader over a Storefront client
func NewCatalog(client *Client) *Catalog {
	return &Catalog{
		client:      client,
		products:    expirable.NewLRU[string, *Product](catalogCacheSize, nil, catalogCacheTTL),
		collections: expirable.NewLRU[string, *CollectionWithProducts](catalogCacheSize, nil, catalogCacheTTL),
	}
}

// GetProductByHandle returns a product, served from cache when fresh
func (cat *Catalog) GetProductByHandle(ctx context.Context, handle string) (*Product, error) {
	if product, ok := cat.products.Get(handle); ok {
		log.LogTraceWithFields("catalog", "Product cache hit", map[string]any{"handle": handle})
		return product, nil
	}

	product, err := cat.client.GetProductByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	cat.products.Add(handle, product)
	return product, nil
}

// GetCollectionProducts returns a collection with products, cached
func (cat *Catalog) GetCollectionProducts(ctx context.Context, handle string, first int) (*CollectionWithProducts, error) {
	if collection, ok := cat.collections.Get(handle); ok && len(collection.Products) >= first {
		log.LogTraceWithFields("catalog", "Collection cache hit", map[string]any{"handle": handle})
		return collection, nil
	}

	collection, err := cat.client.GetCollectionProducts(ctx, handle, first)
	if err != nil {
		return nil, err
	}
	cat.collections.Add(handle, collection)
	return collection, nil
}

// GetProducts lists products, uncached (sort order and page size vary)
func (cat *Catalog) GetProducts(ctx context.Context, first int) ([]Product, error) {
	return cat.client.GetProducts(ctx, first)
}

// GetCollections lists collections, uncached
func (cat *Catalog) GetCollections(ctx context.Context, first int) ([]Collection, error) {
	return cat.client.GetCollections(ctx, first)
}

// SearchProducts runs a search, uncached
func (cat *Catalog) SearchProducts(ctx context.Context, query string, first int) ([]Product, error) {
	return cat.client.SearchProducts(ctx, query, first)
}

// PredictiveSearch returns typeahead suggestions, uncached (queries are
// per-keystroke and rarely repeat)
func (cat *Catalog) PredictiveSearch(ctx context.Context, query string, limit int) ([]Product, error) {
	return cat.client.PredictiveSearch(ctx, query, limit)
}
