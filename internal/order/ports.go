package order

import (
	"context"

	"github.com/anigawade45/grocery-market/internal/market"
)

type Store interface {
	// CartLines returns the buyer's cart joined with product supplier/price/stock,
	// in insertion order. Empty slice when there is no cart.
	CartLines(ctx context.Context, buyerID string) ([]market.CartLine, error)
	// Create commits the order insert, the per-item stock decrement and the
	// cart delete in one transaction. A stock shortfall aborts everything and
	// returns market.ErrInvariant (wrapped).
	Create(ctx context.Context, o market.Order) (market.Order, error)
	Get(ctx context.Context, orderID string) (market.Order, error)
	UpdateItems(ctx context.Context, orderID string, items []market.OrderItem, totalCents int) error
	UpdateStatus(ctx context.Context, orderID string, st market.Status) error
	// Cancel restores stock for every line item and marks the order cancelled,
	// atomically.
	Cancel(ctx context.Context, orderID string) error
}
