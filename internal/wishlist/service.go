package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sukhira/storefront/internal/log"
)

// Metafield coordinates of the remote wishlist on the customer record
const (
	MetafieldNamespace = "custom"
	MetafieldKey       = "wishlist"
	metafieldType      = "json"
)

// ErrTooManyItems indicates a list exceeds the configured size policy.
// Enforced before any remote call so an unbounded payload never leaves the
// client.
var ErrTooManyItems = errors.New("wishlist exceeds maximum size")

// MetafieldStore is the slice of the Customer Account client the service
// needs
type MetafieldStore interface {
	GetMetafield(ctx context.Context, accessToken, namespace, key string) (string, error)
	SetMetafield(ctx context.Context, accessToken, namespace, key, fieldType, value string) error
}

// Service owns the remote wishlist once a session exists. Before login the
// list lives in the browser; Sync is the one-time authority hand-off.
type Service struct {
	store    MetafieldStore
	maxItems int
}

// NewService creates a wishlist service
func NewService(store MetafieldStore, maxItems int) *Service {
	return &Service{store: store, maxItems: maxItems}
}

// MaxItems returns the size policy bound
func (s *Service) MaxItems() int {
	return s.maxItems
}

// Get reads the remote wishlist. An unset metafield is an empty list.
func (s *Service) Get(ctx context.Context, accessToken string) ([]Item, error) {
	value, err := s.store.GetMetafield(ctx, accessToken, MetafieldNamespace, MetafieldKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read wishlist: %w", err)
	}
	if value == "" {
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		// A corrupt metafield would otherwise lock the customer out of
		// their wishlist forever; start over instead.
		log.LogWarnWithFields("wishlist", "Discarding unparseable remote wishlist", map[string]any{
			"error": err.Error(),
		})
		return []Item{}, nil
	}
	return items, nil
}

// Put replaces the remote wishlist
func (s *Service) Put(ctx context.Context, accessToken string, items []Item) error {
	if len(items) > s.maxItems {
		return fmt.Errorf("%w: %d > %d", ErrTooManyItems, len(items), s.maxItems)
	}

	value, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal wishlist: %w", err)
	}
	if err := s.store.SetMetafield(ctx, accessToken, MetafieldNamespace, MetafieldKey, metafieldType, string(value)); err != nil {
		return fmt.Errorf("failed to write wishlist: %w", err)
	}
	return nil
}

// Sync is the single login-time transition: merge the browser's pre-login
// list into the remote authoritative list and write the result back. On any
// failure the caller must keep its local list so no data is lost; the merge
// is never retried here.
func (s *Service) Sync(ctx context.Context, accessToken string, local []Item) ([]Item, error) {
	if len(local) > s.maxItems {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyItems, len(local), s.maxItems)
	}

	remote, err := s.Get(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	merged := Merge(local, remote)
	if len(merged) > s.maxItems {
		// Remote entries win the size budget too; local overflow is dropped
		log.LogWarnWithFields("wishlist", "Truncating merged wishlist to size policy", map[string]any{
			"merged": len(merged),
			"max":    s.maxItems,
		})
		merged = merged[:s.maxItems]
	}

	if err := s.Put(ctx, accessToken, merged); err != nil {
		return nil, err
	}

	log.LogInfoWithFields("wishlist", "Wishlist merged on login", map[string]any{
		"local":  len(local),
		"remote": len(remote),
		"merged": len(merged),
	})
	return merged, nil
}
