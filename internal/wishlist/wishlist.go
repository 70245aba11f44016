package wishlist

// Item is a wishlist entry. Price is a captured display snapshot, not an
// authoritative price.
type Item struct {
	ProductID string `json:"productId"`
	Handle    string `json:"handle"`
	Title     string `json:"title"`
	Image     string `json:"image,omitempty"`
	Price     string `json:"price,omitempty"`
	VariantID string `json:"variantId,omitempty"`
}

// Merge combines a pre-login local list with the remote authoritative list:
// remote ∪ (local \ remote), keyed by product id. Remote entries always win
// on conflict and keep their order; local-only entries append after.
func Merge(local, remote []Item) []Item {
	merged := make([]Item, 0, len(remote)+len(local))
	seen := make(map[string]struct{}, len(remote))

	for _, item := range remote {
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		merged = append(merged, item)
	}
	for _, item := range local {
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}

// Contains reports whether items holds an entry for productID
func Contains(items []Item, productID string) bool {
	for _, item := range items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Remove returns items without the entry for productID
func Remove(items []Item, productID string) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
