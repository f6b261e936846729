package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/anigawade45/grocery-market/internal/notify"
	"github.com/anigawade45/grocery-market/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrAlreadyExists signals a concurrent reconciliation of the same payment
// committed first; callers treat it as the idempotent no-op.
var ErrAlreadyExists = errors.New("order already exists for payment")

type Store interface {
	// OrderIDByPayment returns "" when no order carries the payment id.
	OrderIDByPayment(ctx context.Context, paymentID string) (string, error)
	// CreatePaidOrder commits the order insert, the per-item atomic stock
	// decrement and the buyer's cart delete in one transaction, or nothing.
	// A duplicate payment id surfaces as ErrAlreadyExists.
	CreatePaidOrder(ctx context.Context, o market.Order) error
}

type Result struct {
	OrderID   string
	Duplicate bool
}

// Engine turns a verified gateway event into durable commercial state exactly
// once, keyed on the gateway transaction id.
type Engine struct {
	Store    Store
	Redis    *redis.Client // optional fast-path; Postgres stays the truth
	Sender   notify.Sender
	Log      *zap.Logger
	LeadDays int
}

func (e *Engine) Reconcile(ctx context.Context, ev Event) (Result, error) {
	if ev.Type != EventPaymentSucceeded {
		// no order exists yet in these flows, nothing to compensate
		e.Log.Info("payment event acknowledged without action",
			zap.String("type", ev.Type), zap.String("transaction_id", ev.TxID))
		return Result{}, nil
	}

	idemKey := fmt.Sprintf(redisx.KeyIdemPayment, ev.TxID)
	if e.Redis != nil {
		if id, err := e.Redis.Get(ctx, idemKey).Result(); err == nil && id != "" {
			return Result{OrderID: id, Duplicate: true}, nil
		}
	}
	if id, err := e.Store.OrderIDByPayment(ctx, ev.TxID); err != nil {
		return Result{}, err
	} else if id != "" {
		e.markReconciled(ctx, idemKey, id, ev.BuyerID, ev.SupplierID)
		return Result{OrderID: id, Duplicate: true}, nil
	}

	now := time.Now().UTC()
	lead := e.LeadDays
	if lead <= 0 {
		lead = 3
	}
	o := market.Order{
		ID:            uuid.NewString(),
		BuyerID:       ev.BuyerID,
		SupplierID:    ev.SupplierID,
		Status:        market.StatusProcessing,
		PaymentStatus: market.PaymentPaid,
		PaymentID:     ev.TxID,
		TotalCents:    ev.TotalCents,
		DeliveryDate:  now.AddDate(0, 0, lead),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, it := range ev.Items {
		o.Items = append(o.Items, market.OrderItem{
			ProductID:  it.ProductID,
			Qty:        it.Qty,
			PriceCents: it.UnitPriceCents,
		})
	}

	if err := e.Store.CreatePaidOrder(ctx, o); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// lost the race against a redelivery of the same event
			id, lerr := e.Store.OrderIDByPayment(ctx, ev.TxID)
			if lerr != nil {
				return Result{}, lerr
			}
			e.markReconciled(ctx, idemKey, id, ev.BuyerID, ev.SupplierID)
			return Result{OrderID: id, Duplicate: true}, nil
		}
		return Result{}, err
	}

	// post-commit, best effort only: the order is already durable
	e.markReconciled(ctx, idemKey, o.ID, o.BuyerID, o.SupplierID)
	e.Sender.Send(ctx, ev.SupplierID, notify.TypeOrderPaid,
		fmt.Sprintf("order %s paid, total %d cents", o.ID, o.TotalCents))

	e.Log.Info("payment reconciled",
		zap.String("order_id", o.ID),
		zap.String("transaction_id", ev.TxID),
		zap.Int("total_cents", o.TotalCents),
	)
	return Result{OrderID: o.ID}, nil
}

func (e *Engine) markReconciled(ctx context.Context, idemKey, orderID, buyerID, supplierID string) {
	if e.Redis == nil {
		return
	}
	_ = e.Redis.Set(ctx, idemKey, orderID, redisx.TTLIdempotency).Err()
	(&redisx.StatusCache{Client: e.Redis}).Set(ctx, orderID, redisx.OrderStatus{
		Status:     string(market.StatusProcessing),
		BuyerID:    buyerID,
		SupplierID: supplierID,
	})
}
