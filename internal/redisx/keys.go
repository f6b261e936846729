package redisx

import "time"

const (
	// Idempotency fast-path for reconciliation: idem:payment:{gateway_tx_id} -> order_id.
	// Postgres (unique index on orders.payment_id) stays the source of truth.
	KeyIdemPayment = "idem:payment:%s"

	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
