package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anigawade45/grocery-market/internal/market"
	"go.uber.org/zap"
)

type fakeStore struct {
	byPayment map[string]string
	created   []market.Order
	createErr error
	lookups   int
}

func (f *fakeStore) OrderIDByPayment(ctx context.Context, paymentID string) (string, error) {
	f.lookups++
	return f.byPayment[paymentID], nil
}

func (f *fakeStore) CreatePaidOrder(ctx context.Context, o market.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byPayment[o.PaymentID]; ok {
		return ErrAlreadyExists
	}
	f.byPayment[o.PaymentID] = o.ID
	f.created = append(f.created, o)
	return nil
}

type fakeSender struct {
	sent []string // "userID/type"
}

func (f *fakeSender) Send(ctx context.Context, userID, typ, message string) {
	f.sent = append(f.sent, userID+"/"+typ)
}

func successEvent() Event {
	return Event{
		Type:       EventPaymentSucceeded,
		TxID:       "tx-1",
		BuyerID:    "buyer-1",
		SupplierID: "supplier-1",
		Items: []EventItem{
			{ProductID: "p1", Qty: 2, UnitPriceCents: 3000},
			{ProductID: "p2", Qty: 1, UnitPriceCents: 2000},
		},
		TotalCents: 8000,
	}
}

func newEngine(store Store, sender *fakeSender) *Engine {
	return &Engine{Store: store, Sender: sender, Log: zap.NewNop(), LeadDays: 3}
}

func TestReconcileCreatesOrderOnce(t *testing.T) {
	store := &fakeStore{byPayment: map[string]string{}}
	sender := &fakeSender{}
	e := newEngine(store, sender)

	res, err := e.Reconcile(context.Background(), successEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Duplicate || res.OrderID == "" {
		t.Fatalf("expected fresh order, got %+v", res)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 created order, got %d", len(store.created))
	}

	o := store.created[0]
	if o.Status != market.StatusProcessing {
		t.Errorf("expected status processing, got %s", o.Status)
	}
	if o.PaymentStatus != market.PaymentPaid {
		t.Errorf("expected payment status paid, got %s", o.PaymentStatus)
	}
	if o.PaymentID != "tx-1" {
		t.Errorf("expected payment id tx-1, got %s", o.PaymentID)
	}
	if o.TotalCents != 8000 {
		t.Errorf("expected total 8000, got %d", o.TotalCents)
	}
	if len(o.Items) != 2 || o.Items[0].PriceCents != 3000 {
		t.Errorf("unexpected items: %+v", o.Items)
	}
	wantDelivery := time.Now().UTC().AddDate(0, 0, 3)
	if d := o.DeliveryDate.Sub(wantDelivery); d < -time.Minute || d > time.Minute {
		t.Errorf("expected delivery ~3 days out, got %s", o.DeliveryDate)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "supplier-1/order_paid" {
		t.Errorf("expected supplier notification, got %v", sender.sent)
	}
}

func TestReconcileReplayIsNoOp(t *testing.T) {
	store := &fakeStore{byPayment: map[string]string{}}
	sender := &fakeSender{}
	e := newEngine(store, sender)

	first, err := e.Reconcile(context.Background(), successEvent())
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := e.Reconcile(context.Background(), successEvent())
	if err != nil {
		t.Fatalf("replay must be a no-op success, got %v", err)
	}
	if !second.Duplicate {
		t.Fatal("expected replay to be flagged duplicate")
	}
	if second.OrderID != first.OrderID {
		t.Fatalf("expected same order id, got %s and %s", first.OrderID, second.OrderID)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(store.created))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(sender.sent))
	}
}

func TestReconcileLosesCreationRace(t *testing.T) {
	// lookup misses, create collides: a concurrent redelivery committed first
	store := &fakeStore{
		byPayment: map[string]string{"tx-1": "existing-order"},
		createErr: ErrAlreadyExists,
	}
	sender := &fakeSender{}
	e := newEngine(store, sender)
	e.Store = raceStore{store}

	res, err := e.Reconcile(context.Background(), successEvent())
	if err != nil {
		t.Fatalf("expected idempotent success, got %v", err)
	}
	if !res.Duplicate || res.OrderID != "existing-order" {
		t.Fatalf("expected duplicate with existing order id, got %+v", res)
	}
	if len(sender.sent) != 0 {
		t.Fatal("duplicate must not re-notify")
	}
}

// raceStore misses the first lookup so Reconcile attempts the create.
type raceStore struct{ inner *fakeStore }

func (r raceStore) OrderIDByPayment(ctx context.Context, paymentID string) (string, error) {
	r.inner.lookups++
	if r.inner.lookups == 1 {
		return "", nil
	}
	return r.inner.byPayment[paymentID], nil
}

func (r raceStore) CreatePaidOrder(ctx context.Context, o market.Order) error {
	return r.inner.createErr
}

func TestReconcileNonSuccessIsAcknowledged(t *testing.T) {
	store := &fakeStore{byPayment: map[string]string{}}
	sender := &fakeSender{}
	e := newEngine(store, sender)

	res, err := e.Reconcile(context.Background(), Event{Type: EventPaymentExpired, TxID: "tx-9"})
	if err != nil {
		t.Fatalf("expected ack, got %v", err)
	}
	if res.OrderID != "" || len(store.created) != 0 || len(sender.sent) != 0 {
		t.Fatal("non-success events must not touch state")
	}
}

func TestReconcileStoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection reset")
	store := &fakeStore{byPayment: map[string]string{}, createErr: storeErr}
	sender := &fakeSender{}
	e := newEngine(store, sender)

	_, err := e.Reconcile(context.Background(), successEvent())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("failed reconciliation must not notify")
	}
}
