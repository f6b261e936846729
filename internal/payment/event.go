package payment

import (
	"encoding/json"

	"github.com/anigawade45/grocery-market/internal/market"
)

// Gateway event types.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventPaymentExpired   = "payment.expired"
)

type EventItem struct {
	ProductID      string `json:"product_id"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
}

// Event is the gateway webhook payload. The gateway gives no schema
// guarantee, so nothing here is trusted until ParseEvent has checked it.
type Event struct {
	Type       string      `json:"type"`
	TxID       string      `json:"transaction_id"`
	BuyerID    string      `json:"buyer_id"`
	SupplierID string      `json:"supplier_id"`
	Items      []EventItem `json:"items"`
	TotalCents int         `json:"total_cents"`
}

// ParseEvent decodes and fully validates an untrusted webhook body. Success
// events must carry every field the reconciliation needs; the declared total
// must match the itemized sum.
func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, market.Validationf("malformed event body")
	}
	if ev.Type == "" {
		return Event{}, market.Validationf("event type is missing")
	}
	if ev.TxID == "" {
		return Event{}, market.Validationf("transaction_id is missing")
	}
	if ev.Type != EventPaymentSucceeded {
		// failed/expired/unknown carry no order payload to validate
		return ev, nil
	}

	if ev.BuyerID == "" {
		return Event{}, market.Validationf("buyer_id is missing")
	}
	if ev.SupplierID == "" {
		return Event{}, market.Validationf("supplier_id is missing")
	}
	if len(ev.Items) == 0 {
		return Event{}, market.Validationf("item list is empty")
	}
	sum := 0
	for i, it := range ev.Items {
		if it.ProductID == "" {
			return Event{}, market.Validationf("items[%d].product_id is missing", i)
		}
		if it.Qty < 1 {
			return Event{}, market.Validationf("items[%d].qty must be at least 1, got %d", i, it.Qty)
		}
		if it.UnitPriceCents < 0 {
			return Event{}, market.Validationf("items[%d].unit_price_cents is negative", i)
		}
		sum += it.Qty * it.UnitPriceCents
	}
	if ev.TotalCents != sum {
		return Event{}, market.Validationf("declared total %d does not match itemized sum %d", ev.TotalCents, sum)
	}
	return ev, nil
}
