package commerce

// Storefront API query strings. The schema is a pass-through contract owned
// by the platform; these select the fields the typed structs decode.

const productFields = `
  id
  handle
  title
  description
  vendor
  productType
  tags
  availableForSale
  priceRange {
    minVariantPrice { amount currencyCode }
    maxVariantPrice { amount currencyCode }
  }
  featuredImage { url altText width height }
  images(first: 10) {
    edges { node { url altText width height } }
  }
  variants(first: 50) {
    edges {
      node {
        id
        title
        availableForSale
        quantityAvailable
        price { amount currencyCode }
        compareAtPrice { amount currencyCode }
        selectedOptions { name value }
        image { url altText width height }
      }
    }
  }
`

const cartFields = `
  id
  checkoutUrl
  totalQuantity
  cost {
    subtotalAmount { amount currencyCode }
    totalAmount { amount currencyCode }
    totalTaxAmount { amount currencyCode }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            price { amount currencyCode }
            image { url altText }
            product {
              id
              handle
              title
              featuredImage { url altText }
            }
          }
        }
      }
    }
  }
`

const getProductsQuery = `
query getProducts($first: Int!, $sortKey: ProductSortKeys, $reverse: Boolean) {
  products(first: $first, sortKey: $sortKey, reverse: $reverse) {
    edges { node {` + productFields + `} }
  }
}`

const getProductByHandleQuery = `
query getProductByHandle($handle: String!) {
  product(handle: $handle) {` + productFields + `}
}`

const getCollectionsQuery = `
query getCollections($first: Int!) {
  collections(first: $first) {
    edges {
      node {
        id
        handle
        title
        description
        image { url altText width height }
      }
    }
  }
}`

const getCollectionProductsQuery = `
query getCollectionProducts($handle: String!, $first: Int!) {
  collection(handle: $handle) {
    id
    handle
    title
    description
    image { url altText width height }
    products(first: $first) {
      edges { node {` + productFields + `} }
    }
  }
}`

const searchProductsQuery = `
query searchProducts($query: String!, $first: Int!) {
  search(query: $query, first: $first, types: [PRODUCT]) {
    edges {
      node {
        ... on Product {` + productFields + `}
      }
    }
  }
}`

const predictiveSearchQuery = `
query predictiveSearch($query: String!, $limit: Int!) {
  predictiveSearch(query: $query, limit: $limit, limitScope: EACH) {
    products {
      id
      handle
      title
      vendor
      priceRange {
        minVariantPrice { amount currencyCode }
      }
      featuredImage { url altText width height }
    }
  }
}`

const createCartMutation = `
mutation createCart($input: CartInput!) {
  cartCreate(input: $input) {
    cart {` + cartFields + `}
    userErrors { field message }
  }
}`

const getCartQuery = `
query getCart($cartId: ID!) {
  cart(id: $cartId) {` + cartFields + `}
}`

const addToCartMutation = `
mutation addToCart($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart {` + cartFields + `}
    userErrors { field message }
  }
}`

const updateCartLinesMutation = `
mutation updateCartLines($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart {` + cartFields + `}
    userErrors { field message }
  }
}`

const removeFromCartMutation = `
mutation removeFromCart($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart {` + cartFields + `}
    userErrors { field message }
  }
}`
