package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OrderStatus is the cached status entry. Owner ids travel with the status
// so read paths can enforce ownership without touching Postgres.
type OrderStatus struct {
	Status     string `json:"status"`
	BuyerID    string `json:"buyer_id"`
	SupplierID string `json:"supplier_id"`
}

// StatusCache reads and writes order status entries. Best effort on both
// sides: a nil client or a stale entry shape reads as a miss.
type StatusCache struct{ Client *redis.Client }

func (c *StatusCache) Get(ctx context.Context, orderID string) (OrderStatus, bool) {
	if c == nil || c.Client == nil {
		return OrderStatus{}, false
	}
	s, err := c.Client.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Result()
	if err != nil || s == "" {
		return OrderStatus{}, false
	}
	var st OrderStatus
	if json.Unmarshal([]byte(s), &st) != nil || st.BuyerID == "" {
		return OrderStatus{}, false
	}
	return st, true
}

func (c *StatusCache) Set(ctx context.Context, orderID string, st OrderStatus) {
	if c == nil || c.Client == nil {
		return
	}
	b, err := json.Marshal(st)
	if err != nil {
		return
	}
	_ = c.Client.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderID), b, TTLStatusCache).Err()
}
