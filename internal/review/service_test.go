package review

import (
	"context"
	"errors"
	"testing"

	"github.com/anigawade45/grocery-market/internal/market"
)

type fakeStore struct {
	products  map[string]market.Product
	delivered map[string]bool // buyerID+"/"+productID
	reviews   map[string]market.Review
	avg       float64
	count     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  map[string]market.Product{},
		delivered: map[string]bool{},
		reviews:   map[string]market.Review{},
	}
}

func (f *fakeStore) Product(ctx context.Context, productID string) (market.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return market.Product{}, market.NotFoundf("product %s", productID)
	}
	return p, nil
}

func (f *fakeStore) HasDeliveredPurchase(ctx context.Context, buyerID, productID string) (bool, error) {
	return f.delivered[buyerID+"/"+productID], nil
}

func (f *fakeStore) ReviewExists(ctx context.Context, buyerID, productID string) (bool, error) {
	for _, rv := range f.reviews {
		if rv.BuyerID == buyerID && rv.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Create(ctx context.Context, rv market.Review) error {
	f.reviews[rv.ID] = rv
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (market.Review, error) {
	rv, ok := f.reviews[id]
	if !ok {
		return market.Review{}, market.NotFoundf("review %s", id)
	}
	return rv, nil
}

func (f *fakeStore) Update(ctx context.Context, rv market.Review) error {
	f.reviews[rv.ID] = rv
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	delete(f.reviews, id)
	return nil
}

func (f *fakeStore) Ratings(ctx context.Context, productID string) ([]int, error) {
	var out []int
	for _, rv := range f.reviews {
		if rv.ProductID == productID {
			out = append(out, rv.Rating)
		}
	}
	return out, nil
}

func (f *fakeStore) SetRating(ctx context.Context, productID string, avg float64, count int) error {
	f.avg, f.count = avg, count
	return nil
}

type fakeSender struct{ sent []string }

func (f *fakeSender) Send(ctx context.Context, userID, typ, message string) {
	f.sent = append(f.sent, userID+"/"+typ)
}

func seeded() *fakeStore {
	store := newFakeStore()
	store.products["p1"] = market.Product{ID: "p1", SupplierID: "supplier-1"}
	for _, b := range []string{"b1", "b2", "b3"} {
		store.delivered[b+"/p1"] = true
	}
	return store
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("rating out of range", func(t *testing.T) {
		svc := NewService(seeded(), &fakeSender{})
		for _, r := range []int{0, 6, -1} {
			if _, err := svc.Create(ctx, "b1", "p1", r, ""); !errors.Is(err, market.ErrValidation) {
				t.Fatalf("rating %d: expected ErrValidation, got %v", r, err)
			}
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := NewService(seeded(), &fakeSender{})
		_, err := svc.Create(ctx, "b1", "missing", 4, "")
		if !errors.Is(err, market.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("no delivered purchase", func(t *testing.T) {
		svc := NewService(seeded(), &fakeSender{})
		_, err := svc.Create(ctx, "stranger", "p1", 4, "")
		if !errors.Is(err, market.ErrInvariant) {
			t.Fatalf("expected ErrInvariant, got %v", err)
		}
	})

	t.Run("second review for same buyer and product", func(t *testing.T) {
		store := seeded()
		svc := NewService(store, &fakeSender{})
		if _, err := svc.Create(ctx, "b1", "p1", 4, "good"); err != nil {
			t.Fatalf("first review: %v", err)
		}
		_, err := svc.Create(ctx, "b1", "p1", 5, "changed my mind")
		if !errors.Is(err, market.ErrInvariant) {
			t.Fatalf("expected ErrInvariant, got %v", err)
		}
		if len(store.reviews) != 1 {
			t.Fatalf("expected one review, got %d", len(store.reviews))
		}
	})
}

func TestRatingRecompute(t *testing.T) {
	ctx := context.Background()
	store := seeded()
	svc := NewService(store, &fakeSender{})

	var third market.Review
	for buyer, rating := range map[string]int{"b1": 5, "b2": 4, "b3": 3} {
		rv, err := svc.Create(ctx, buyer, "p1", rating, "")
		if err != nil {
			t.Fatalf("create %s: %v", buyer, err)
		}
		if rating == 3 {
			third = rv
		}
	}
	if store.avg != 4.0 || store.count != 3 {
		t.Fatalf("expected avg=4.0 count=3, got avg=%v count=%d", store.avg, store.count)
	}

	if err := svc.Delete(ctx, "b3", third.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.avg != 4.5 || store.count != 2 {
		t.Fatalf("expected avg=4.5 count=2 after delete, got avg=%v count=%d", store.avg, store.count)
	}
}

func TestRecomputeEmptySet(t *testing.T) {
	store := seeded()
	svc := NewService(store, &fakeSender{})
	store.avg, store.count = 9, 9

	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if store.avg != 0 || store.count != 0 {
		t.Fatalf("expected zeroed rating, got avg=%v count=%d", store.avg, store.count)
	}
}

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()
	store := seeded()
	svc := NewService(store, &fakeSender{})

	rv, err := svc.Create(ctx, "b1", "p1", 2, "meh")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("owner edit triggers recompute", func(t *testing.T) {
		rating := 5
		got, err := svc.Update(ctx, "b1", rv.ID, &rating, nil)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.Rating != 5 || got.Comment != "meh" {
			t.Fatalf("unexpected review: %+v", got)
		}
		if store.avg != 5.0 || store.count != 1 {
			t.Fatalf("expected avg=5.0 count=1, got avg=%v count=%d", store.avg, store.count)
		}
	})

	t.Run("non-owner edit is rejected", func(t *testing.T) {
		rating := 1
		_, err := svc.Update(ctx, "b2", rv.ID, &rating, nil)
		if !errors.Is(err, market.ErrOwnership) {
			t.Fatalf("expected ErrOwnership, got %v", err)
		}
	})
}

func TestSupplierReply(t *testing.T) {
	ctx := context.Background()
	store := seeded()
	sender := &fakeSender{}
	svc := NewService(store, sender)

	rv, err := svc.Create(ctx, "b1", "p1", 4, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("product supplier may reply", func(t *testing.T) {
		got, err := svc.Reply(ctx, "supplier-1", rv.ID, "thanks!")
		if err != nil {
			t.Fatalf("reply: %v", err)
		}
		if got.SupplierReply != "thanks!" {
			t.Fatalf("unexpected reply: %q", got.SupplierReply)
		}
		if len(sender.sent) != 1 || sender.sent[0] != "b1/review_reply" {
			t.Fatalf("expected buyer notification, got %v", sender.sent)
		}
	})

	t.Run("foreign supplier is rejected", func(t *testing.T) {
		_, err := svc.Reply(ctx, "supplier-2", rv.ID, "hi")
		if !errors.Is(err, market.ErrOwnership) {
			t.Fatalf("expected ErrOwnership, got %v", err)
		}
	})
}
