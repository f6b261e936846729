package review

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/anigawade45/grocery-market/internal/notify"
	"github.com/google/uuid"
)

type Service struct {
	store  Store
	sender notify.Sender
}

func NewService(store Store, sender notify.Sender) *Service {
	return &Service{store: store, sender: sender}
}

func (s *Service) Create(ctx context.Context, buyerID, productID string, rating int, comment string) (market.Review, error) {
	if rating < 1 || rating > 5 {
		return market.Review{}, market.Validationf("rating must be 1..5, got %d", rating)
	}
	if _, err := s.store.Product(ctx, productID); err != nil {
		return market.Review{}, err
	}
	bought, err := s.store.HasDeliveredPurchase(ctx, buyerID, productID)
	if err != nil {
		return market.Review{}, err
	}
	if !bought {
		return market.Review{}, market.Invariantf("buyer %s has no delivered order containing product %s", buyerID, productID)
	}
	exists, err := s.store.ReviewExists(ctx, buyerID, productID)
	if err != nil {
		return market.Review{}, err
	}
	if exists {
		return market.Review{}, market.Invariantf("buyer %s already reviewed product %s", buyerID, productID)
	}

	now := time.Now().UTC()
	rv := market.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		BuyerID:   buyerID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, rv); err != nil {
		return market.Review{}, err
	}
	if err := s.Recompute(ctx, productID); err != nil {
		return market.Review{}, err
	}
	return rv, nil
}

func (s *Service) Update(ctx context.Context, buyerID, reviewID string, rating *int, comment *string) (market.Review, error) {
	rv, err := s.store.Get(ctx, reviewID)
	if err != nil {
		return market.Review{}, err
	}
	if rv.BuyerID != buyerID {
		return market.Review{}, market.Ownershipf("review %s does not belong to buyer %s", reviewID, buyerID)
	}
	if rating != nil {
		if *rating < 1 || *rating > 5 {
			return market.Review{}, market.Validationf("rating must be 1..5, got %d", *rating)
		}
		rv.Rating = *rating
	}
	if comment != nil {
		rv.Comment = strings.TrimSpace(*comment)
	}
	rv.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, rv); err != nil {
		return market.Review{}, err
	}
	if err := s.Recompute(ctx, rv.ProductID); err != nil {
		return market.Review{}, err
	}
	return rv, nil
}

// Reply lets the product's supplier attach a reply. No rating change, no
// recomputation.
func (s *Service) Reply(ctx context.Context, supplierID, reviewID, reply string) (market.Review, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return market.Review{}, market.Validationf("reply is empty")
	}
	rv, err := s.store.Get(ctx, reviewID)
	if err != nil {
		return market.Review{}, err
	}
	p, err := s.store.Product(ctx, rv.ProductID)
	if err != nil {
		return market.Review{}, err
	}
	if p.SupplierID != supplierID {
		return market.Review{}, market.Ownershipf("product %s does not belong to supplier %s", rv.ProductID, supplierID)
	}
	rv.SupplierReply = reply
	rv.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, rv); err != nil {
		return market.Review{}, err
	}
	s.sender.Send(ctx, rv.BuyerID, notify.TypeReviewReply,
		fmt.Sprintf("the supplier replied to your review of product %s", rv.ProductID))
	return rv, nil
}

// Delete is hard, no tombstone.
func (s *Service) Delete(ctx context.Context, buyerID, reviewID string) error {
	rv, err := s.store.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if rv.BuyerID != buyerID {
		return market.Ownershipf("review %s does not belong to buyer %s", reviewID, buyerID)
	}
	if err := s.store.Delete(ctx, reviewID); err != nil {
		return err
	}
	return s.Recompute(ctx, rv.ProductID)
}

// Recompute reads the full review set and writes the arithmetic mean (one
// decimal) and count onto the product. Idempotent, last write wins.
func (s *Service) Recompute(ctx context.Context, productID string) error {
	ratings, err := s.store.Ratings(ctx, productID)
	if err != nil {
		return err
	}
	avg := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		avg = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	}
	return s.store.SetRating(ctx, productID, avg, len(ratings))
}
