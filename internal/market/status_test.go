package market

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusDelivered},
		{StatusProcessing, StatusCancelled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusDelivered}, // must pass through processing
		{StatusDelivered, StatusCancelled},
		{StatusDelivered, StatusProcessing},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusDelivered},
		{StatusProcessing, StatusPending},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestStatusMutable(t *testing.T) {
	if !StatusPending.Mutable() || !StatusProcessing.Mutable() {
		t.Error("pending and processing must be mutable")
	}
	if StatusDelivered.Mutable() || StatusCancelled.Mutable() {
		t.Error("terminal states must be immutable")
	}
}

func TestOrderTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductID: "a", Qty: 2, PriceCents: 3000},
		{ProductID: "b", Qty: 1, PriceCents: 2000},
	}}
	if got := o.Total(); got != 8000 {
		t.Fatalf("expected total 8000, got %d", got)
	}
}
