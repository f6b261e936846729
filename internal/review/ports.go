package review

import (
	"context"

	"github.com/anigawade45/grocery-market/internal/market"
)

type Store interface {
	Product(ctx context.Context, productID string) (market.Product, error)
	// HasDeliveredPurchase reports whether the buyer has a delivered order
	// containing the product.
	HasDeliveredPurchase(ctx context.Context, buyerID, productID string) (bool, error)
	ReviewExists(ctx context.Context, buyerID, productID string) (bool, error)
	Create(ctx context.Context, rv market.Review) error
	Get(ctx context.Context, id string) (market.Review, error)
	Update(ctx context.Context, rv market.Review) error
	Delete(ctx context.Context, id string) error
	// Ratings returns every rating for the product, for full-set recomputation.
	Ratings(ctx context.Context, productID string) ([]int, error)
	SetRating(ctx context.Context, productID string, avg float64, count int) error
}
