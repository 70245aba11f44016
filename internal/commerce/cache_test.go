package commerce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCachesProductsByHandle(t *testing.T) {
	stub := newStubStorefront(t, `{"data":{"product":`+productJSON+`}}`)
	catalog := NewCatalog(stub.client())

	first, err := catalog.GetProductByHandle(context.Background(), "blue-shirt")
	require.NoError(t, err)
	second, err := catalog.GetProductByHandle(context.Background(), "blue-shirt")
	require.NoError(t, err)

	assert.Equal(t, 1, stub.hits)
	assert.Same(t, first, second)
}

func TestCatalogDoesNotCacheMisses(t *testing.T) {
	stub := newStubStorefront(t, `{"data":{"product":null}}`)
	catalog := NewCatalog(stub.client())

	_, err := catalog.GetProductByHandle(context.Background(), "gone")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = catalog.GetProductByHandle(context.Background(), "gone")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 2, stub.hits)
}

const collectionJSON = `{
  "id": "gid://shopify/Collection/1",
  "handle": "summer",
  "title": "Summer",
  "products": {"edges": [{"node": ` + productJSON + `}]}
}`

func TestCatalogCollectionCacheHonorsPageSize(t *testing.T) {
	stub := newStubStorefront(t, `{"data":{"collection":`+collectionJSON+`}}`)
	catalog := NewCatalog(stub.client())

	// A cached page serves any request it covers
	_, err := catalog.GetCollectionProducts(context.Background(), "summer", 1)
	require.NoError(t, err)
	_, err = catalog.GetCollectionProducts(context.Background(), "summer", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.hits)

	// A larger page than the cached one goes back upstream
	_, err = catalog.GetCollectionProducts(context.Background(), "summer", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.hits)
}

func TestCatalogListsAreUncached(t *testing.T) {
	stub := newStubStorefront(t, `{"data":{"products":{"edges":[]}}}`)
	catalog := NewCatalog(stub.client())

	_, err := catalog.GetProducts(context.Background(), 10)
	require.NoError(t, err)
	_, err = catalog.GetProducts(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, stub.hits)
}
