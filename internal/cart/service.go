package cart

import (
	"context"
	"errors"

	"github.com/anigawade45/grocery-market/internal/market"
)

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Add(ctx context.Context, buyerID, productID string, qty int) (market.Cart, error) {
	if qty < 1 {
		return market.Cart{}, market.Validationf("quantity must be at least 1, got %d", qty)
	}
	ok, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return market.Cart{}, err
	}
	if !ok {
		return market.Cart{}, market.Validationf("product %s does not exist", productID)
	}
	if err := s.repo.AddItem(ctx, buyerID, productID, qty); err != nil {
		return market.Cart{}, err
	}
	return s.View(ctx, buyerID)
}

func (s *Service) Update(ctx context.Context, buyerID, productID string, qty int) (market.Cart, error) {
	if qty < 1 {
		return market.Cart{}, market.Validationf("quantity must be at least 1, got %d", qty)
	}
	if err := s.repo.SetItemQty(ctx, buyerID, productID, qty); err != nil {
		return market.Cart{}, err
	}
	return s.View(ctx, buyerID)
}

func (s *Service) Remove(ctx context.Context, buyerID, productID string) (market.Cart, error) {
	if err := s.repo.RemoveItem(ctx, buyerID, productID); err != nil {
		return market.Cart{}, err
	}
	return s.View(ctx, buyerID)
}

func (s *Service) Clear(ctx context.Context, buyerID string) error {
	return s.repo.Clear(ctx, buyerID)
}

// View never fails on a missing cart: an empty representation is returned.
func (s *Service) View(ctx context.Context, buyerID string) (market.Cart, error) {
	c, err := s.repo.Get(ctx, buyerID)
	if errors.Is(err, market.ErrNotFound) {
		return market.Cart{BuyerID: buyerID, Items: []market.CartItem{}}, nil
	}
	if err != nil {
		return market.Cart{}, err
	}
	if c.Items == nil {
		c.Items = []market.CartItem{}
	}
	return c, nil
}
