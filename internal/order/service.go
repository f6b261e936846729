package order

import (
	"context"
	"fmt"
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

// Place converts the buyer's current cart into a pending order. Prices are
// snapshotted from the product table, the total is computed server-side, and
// the order insert + stock decrement + cart delete commit together or not at
// all. The cart must hold products of exactly one supplier.
func (s *Service) Place(ctx context.Context, buyerID string, deliveryDate time.Time) (market.Order, error) {
	if deliveryDate.IsZero() {
		return market.Order{}, market.Validationf("delivery_date is required")
	}
	if deliveryDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return market.Order{}, market.Validationf("delivery_date %s is in the past", deliveryDate.Format("2006-01-02"))
	}

	lines, err := s.store.CartLines(ctx, buyerID)
	if err != nil {
		return market.Order{}, err
	}
	if len(lines) == 0 {
		return market.Order{}, market.Validationf("cart is empty")
	}

	supplierID := lines[0].SupplierID
	for _, l := range lines[1:] {
		if l.SupplierID != supplierID {
			return market.Order{}, market.Invariantf("cart spans multiple suppliers (%s, %s)", supplierID, l.SupplierID)
		}
	}

	now := time.Now().UTC()
	o := market.Order{
		ID:            uuid.NewString(),
		BuyerID:       buyerID,
		SupplierID:    supplierID,
		Status:        market.StatusPending,
		PaymentStatus: market.PaymentUnpaid,
		DeliveryDate:  deliveryDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, l := range lines {
		o.Items = append(o.Items, market.OrderItem{
			ProductID:  l.ProductID,
			Qty:        l.Qty,
			PriceCents: l.PriceCents,
		})
	}
	o.TotalCents = o.Total()

	created, err := s.store.Create(ctx, o)
	if err != nil {
		return market.Order{}, err
	}

	s.sender.Send(ctx, supplierID, notify.TypeOrderPlaced,
		fmt.Sprintf("new order %s placed, total %d cents", created.ID, created.TotalCents))
	return created, nil
}

// Get is visible to the order's buyer and supplier only.
func (s *Service) Get(ctx context.Context, callerID, orderID string) (market.Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return market.Order{}, err
	}
	if callerID != o.BuyerID && callerID != o.SupplierID {
		return market.Order{}, market.Ownershipf("order %s does not belong to caller", orderID)
	}
	return o, nil
}

// ModifyItems replaces line-item quantities before dispatch. Every entry must
// reference a line already on the order; prices stay at their creation-time
// snapshot and the total is recomputed from those snapshots. A caller-declared
// total that disagrees with the recomputation is rejected outright.
func (s *Service) ModifyItems(ctx context.Context, buyerID, orderID string, items []market.CartItem, declaredTotal *int) (market.Order, error) {
	if len(items) == 0 {
		return market.Order{}, market.Validationf("item list is empty")
	}

	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return market.Order{}, err
	}
	if o.BuyerID != buyerID {
		return market.Order{}, market.Ownershipf("order %s does not belong to buyer %s", orderID, buyerID)
	}
	if !o.Status.Mutable() {
		return market.Order{}, market.Invariantf("order %s is %s and can no longer change", orderID, o.Status)
	}

	snapshot := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		snapshot[it.ProductID] = it.PriceCents
	}

	next := make([]market.OrderItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		price, ok := snapshot[it.ProductID]
		if !ok {
			return market.Order{}, market.Validationf("product %s is not on order %s", it.ProductID, orderID)
		}
		if it.Qty < 1 {
			return market.Order{}, market.Validationf("quantity must be at least 1 for product %s", it.ProductID)
		}
		if seen[it.ProductID] {
			return market.Order{}, market.Validationf("product %s listed twice", it.ProductID)
		}
		seen[it.ProductID] = true
		next = append(next, market.OrderItem{ProductID: it.ProductID, Qty: it.Qty, PriceCents: price})
	}

	total := 0
	for _, it := range next {
		total += it.PriceCents * it.Qty
	}
	if declaredTotal != nil && *declaredTotal != total {
		return market.Order{}, market.Invariantf("total mismatch: declared %d, computed %d", *declaredTotal, total)
	}

	if err := s.store.UpdateItems(ctx, orderID, next, total); err != nil {
		return market.Order{}, err
	}
	o.Items = next
	o.TotalCents = total
	return o, nil
}

// UpdateStatus applies a supplier fulfillment transition.
func (s *Service) UpdateStatus(ctx context.Context, supplierID, orderID string, next market.Status) (market.Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return market.Order{}, err
	}
	if o.SupplierID != supplierID {
		return market.Order{}, market.Ownershipf("order %s does not belong to supplier %s", orderID, supplierID)
	}
	if !market.CanTransition(o.Status, next) {
		return market.Order{}, market.Invariantf("cannot transition order %s from %s to %s", orderID, o.Status, next)
	}
	if err := s.store.UpdateStatus(ctx, orderID, next); err != nil {
		return market.Order{}, err
	}
	o.Status = next

	s.sender.Send(ctx, o.BuyerID, notify.TypeOrderStatus,
		fmt.Sprintf("order %s is now %s", orderID, next))
	return o, nil
}

// Cancel is allowed to buyer or supplier while the order is still mutable.
// Stock consumed by the order is restored in the same transaction.
func (s *Service) Cancel(ctx context.Context, callerID, orderID string) (market.Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return market.Order{}, err
	}
	if callerID != o.BuyerID && callerID != o.SupplierID {
		return market.Order{}, market.Ownershipf("order %s does not belong to caller", orderID)
	}
	if !o.Status.Mutable() {
		return market.Order{}, market.Invariantf("order %s is %s and cannot be cancelled", orderID, o.Status)
	}
	if err := s.store.Cancel(ctx, orderID); err != nil {
		return market.Order{}, err
	}
	o.Status = market.StatusCancelled

	counterpart := o.SupplierID
	if callerID == o.SupplierID {
		counterpart = o.BuyerID
	}
	s.sender.Send(ctx, counterpart, notify.TypeOrderCancelled,
		fmt.Sprintf("order %s was cancelled", orderID))
	return o, nil
}
