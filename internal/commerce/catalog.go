package commerce

import (
	"context"
	"fmt"
)

// rawProduct mirrors the connection-shaped product the API returns before
// flattening into Product
type rawProduct struct {
	ID               string                `json:"id"`
	Handle           string                `json:"handle"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Vendor           string                `json:"vendor"`
	ProductType      string                `json:"productType"`
	Tags             []string              `json:"tags"`
	AvailableForSale bool                  `json:"availableForSale"`
	PriceRange       PriceRange            `json:"priceRange"`
	FeaturedImage    *Image                `json:"featuredImage"`
	Images           edges[Image]          `json:"images"`
	Variants         edges[ProductVariant] `json:"variants"`
}

func (r rawProduct) toProduct() Product {
	return Product{
		ID:               r.ID,
		Handle:           r.Handle,
		Title:            r.Title,
		Description:      r.Description,
		Vendor:           r.Vendor,
		ProductType:      r.ProductType,
		Tags:             r.Tags,
		AvailableForSale: r.AvailableForSale,
		PriceRange:       r.PriceRange,
		FeaturedImage:    r.FeaturedImage,
		Images:           r.Images.nodes(),
		Variants:         r.Variants.nodes(),
	}
}

func toProducts(raw []rawProduct) []Product {
	products := make([]Product, 0, len(raw))
	for _, r := range raw {
		products = append(products, r.toProduct())
	}
	return products
}

// GetProducts lists catalog products
func (c *Client) GetProducts(ctx context.Context, first int) ([]Product, error) {
	var result struct {
		Products edges[rawProduct] `json:"products"`
	}
	variables := map[string]any{"first": first}
	if err := c.do(ctx, getProductsQuery, variables, &result); err != nil {
		return nil, err
	}
	return toProducts(result.Products.nodes()), nil
}

// GetProductByHandle fetches a single product. Unknown handles return
// ErrNotFound.
func (c *Client) GetProductByHandle(ctx context.Context, handle string) (*Product, error) {
	var result struct {
		Product *rawProduct `json:"product"`
	}
	variables := map[string]any{"handle": handle}
	if err := c.do(ctx, getProductByHandleQuery, variables, &result); err != nil {
		return nil, err
	}
	if result.Product == nil {
		return nil, fmt.Errorf("product %q: %w", handle, ErrNotFound)
	}
	product := result.Product.toProduct()
	return &product, nil
}

// GetCollections lists collections
func (c *Client) GetCollections(ctx context.Context, first int) ([]Collection, error) {
	var result struct {
		Collections edges[Collection] `json:"collections"`
	}
	variables := map[string]any{"first": first}
	if err := c.do(ctx, getCollectionsQuery, variables, &result); err != nil {
		return nil, err
	}
	return result.Collections.nodes(), nil
}

// CollectionWithProducts is a collection plus its first page of products
type CollectionWithProducts struct {
	Collection
	Products []Product `json:"products"`
}

// GetCollectionProducts fetches a collection and its products. Unknown
// handles return ErrNotFound.
func (c *Client) GetCollectionProducts(ctx context.Context, handle string, first int) (*CollectionWithProducts, error) {
	var result struct {
		Collection *struct {
			Collection
			Products edges[rawProduct] `json:"products"`
		} `json:"collection"`
	}
	variables := map[string]any{"handle": handle, "first": first}
	if err := c.do(ctx, getCollectionProductsQuery, variables, &result); err != nil {
		return nil, err
	}
	if result.Collection == nil {
		return nil, fmt.Errorf("collection %q: %w", handle, ErrNotFound)
	}
	return &CollectionWithProducts{
		Collection: result.Collection.Collection,
		Products:   toProducts(result.Collection.Products.nodes()),
	}, nil
}

// SearchProducts runs a full-text product search
func (c *Client) SearchProducts(ctx context.Context, query string, first int) ([]Product, error) {
	var result struct {
		Search edges[rawProduct] `json:"search"`
	}
	variables := map[string]any{"query": query, "first": first}
	if err := c.do(ctx, searchProductsQuery, variables, &result); err != nil {
		return nil, err
	}
	return toProducts(result.Search.nodes()), nil
}

// PredictiveSearch returns lightweight product suggestions for typeahead.
// The platform returns a plain list here, not a connection, and only card
// fields are selected.
func (c *Client) PredictiveSearch(ctx context.Context, query string, limit int) ([]Product, error) {
	var result struct {
		PredictiveSearch *struct {
			Products []rawProduct `json:"products"`
		} `json:"predictiveSearch"`
	}
	variables := map[string]any{"query": query, "limit": limit}
	if err := c.do(ctx, predictiveSearchQuery, variables, &result); err != nil {
		return nil, err
	}
	if result.PredictiveSearch == nil {
		return []Product{}, nil
	}
	return toProducts(result.PredictiveSearch.Products), nil
}
