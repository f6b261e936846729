package cart

import (
	"context"

	"github.com/anigawade45/grocery-market/internal/market"
)

type Repo interface {
	// Get returns market.ErrNotFound (wrapped) when the buyer has no cart yet.
	Get(ctx context.Context, buyerID string) (market.Cart, error)
	// AddItem creates the cart lazily; an existing line item adds quantities.
	AddItem(ctx context.Context, buyerID, productID string, qty int) error
	// SetItemQty returns market.ErrNotFound when the cart or line item is absent.
	SetItemQty(ctx context.Context, buyerID, productID string, qty int) error
	// RemoveItem is a no-op success when the item is absent.
	RemoveItem(ctx context.Context, buyerID, productID string) error
	// Clear deletes the cart entirely; idempotent.
	Clear(ctx context.Context, buyerID string) error
	ProductExists(ctx context.Context, productID string) (bool, error)
}
