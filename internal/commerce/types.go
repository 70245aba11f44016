package commerce

// Money is an amount in a currency. Amounts stay strings end to end: all
// cart math is computed by the platform.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Image is a product or collection image
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// SelectedOption is a variant option pair, e.g. Size=M
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductVariant is a purchasable variant of a product
type ProductVariant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	AvailableForSale  bool             `json:"availableForSale"`
	QuantityAvailable int              `json:"quantityAvailable"`
	Price             Money            `json:"price"`
	CompareAtPrice    *Money           `json:"compareAtPrice,omitempty"`
	SelectedOptions   []SelectedOption `json:"selectedOptions,omitempty"`
	Image             *Image           `json:"image,omitempty"`
}

// PriceRange is the min/max variant price of a product
type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
	MaxVariantPrice Money `json:"maxVariantPrice"`
}

// Product is a catalog product
type Product struct {
	ID               string           `json:"id"`
	Handle           string           `json:"handle"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Vendor           string           `json:"vendor,omitempty"`
	ProductType      string           `json:"productType,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	AvailableForSale bool             `json:"availableForSale"`
	PriceRange       PriceRange       `json:"priceRange"`
	FeaturedImage    *Image           `json:"featuredImage,omitempty"`
	Images           []Image          `json:"images,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
}

// Collection is a curated group of products
type Collection struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       *Image `json:"image,omitempty"`
}

// CartLine is one line of a cart, quantity of a single variant
type CartLine struct {
	ID          string `json:"id"`
	Quantity    int    `json:"quantity"`
	Merchandise struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Price   Money  `json:"price"`
		Image   *Image `json:"image,omitempty"`
		Product struct {
			ID            string `json:"id"`
			Handle        string `json:"handle"`
			Title         string `json:"title"`
			FeaturedImage *Image `json:"featuredImage,omitempty"`
		} `json:"product"`
	} `json:"merchandise"`
}

// CartCost holds the platform-computed cart totals
type CartCost struct {
	SubtotalAmount Money  `json:"subtotalAmount"`
	TotalAmount    Money  `json:"totalAmount"`
	TotalTaxAmount *Money `json:"totalTaxAmount,omitempty"`
}

// Cart is the platform-owned cart. The client keeps only its ID.
type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	TotalQuantity int        `json:"totalQuantity"`
	Cost          CartCost   `json:"cost"`
	Lines         []CartLine `json:"lines"`
}

// CartLineInput is a line to add to a cart
type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// CartLineUpdate changes the quantity of an existing line
type CartLineUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// edges is the GraphQL connection wrapper the platform uses everywhere
type edges[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

// nodes flattens a connection into its nodes
func (e edges[T]) nodes() []T {
	out := make([]T, 0, len(e.Edges))
	for _, edge := range e.Edges {
		out = append(out, edge.Node)
	}
	return out
}
