package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

func (r *PGStore) OrderIDByPayment(ctx context.Context, paymentID string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx, `SELECT id FROM orders WHERE payment_id=$1`, paymentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreatePaidOrder: insert order -> atomic stock decrement per item -> delete
// the buyer's cart, one transaction. The decrement is a plain counter update
// (stock may go negative; oversell is absorbed by supplier fulfillment), but
// it is atomic against competing reconciliations. The unique index on
// payment_id makes a concurrent duplicate abort here instead of committing a
// second order.
func (r *PGStore) CreatePaidOrder(ctx context.Context, o market.Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, supplier_id, status, payment_status, payment_id, total_cents, delivery_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.BuyerID, o.SupplierID, o.Status, o.PaymentStatus, o.PaymentID, o.TotalCents, o.DeliveryDate); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("payment %s: %w", o.PaymentID, ErrAlreadyExists)
		}
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price_cents)
			VALUES ($1, $2, $3, $4)`,
			o.ID, it.ProductID, it.Qty, it.PriceCents); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return market.NotFoundf("product %s", it.ProductID)
			}
			return err
		}
		ct, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
			it.ProductID, it.Qty)
		if err != nil {
			return err
		}
		if ct.RowsAffected() != 1 {
			return market.NotFoundf("product %s", it.ProductID)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE buyer_id=$1`, o.BuyerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
