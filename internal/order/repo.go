package order

import (
	"context"
	"errors"

	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

func (r *PGStore) CartLines(ctx context.Context, buyerID string) ([]market.CartLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.product_id, p.supplier_id, ci.qty, p.price_cents, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.CartLine
	for rows.Next() {
		var l market.CartLine
		if err := rows.Scan(&l.ProductID, &l.SupplierID, &l.Qty, &l.PriceCents, &l.Stock); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Create: lock stock per product (FOR UPDATE) -> decrement -> insert order +
// items -> delete the cart. Any shortfall or failure rolls everything back.
func (r *PGStore) Create(ctx context.Context, o market.Order) (market.Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return market.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, it := range o.Items {
		var stock int
		if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&stock); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return market.Order{}, market.NotFoundf("product %s", it.ProductID)
			}
			return market.Order{}, err
		}
		if stock < it.Qty {
			return market.Order{}, market.Invariantf("insufficient stock for product %s: need %d, have %d", it.ProductID, it.Qty, stock)
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`, it.ProductID, it.Qty); err != nil {
			return market.Order{}, err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, supplier_id, status, payment_status, total_cents, delivery_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.BuyerID, o.SupplierID, o.Status, o.PaymentStatus, o.TotalCents, o.DeliveryDate); err != nil {
		return market.Order{}, err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price_cents)
			VALUES ($1, $2, $3, $4)`,
			o.ID, it.ProductID, it.Qty, it.PriceCents); err != nil {
			return market.Order{}, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE buyer_id=$1`, o.BuyerID); err != nil {
		return market.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return market.Order{}, err
	}
	return o, nil
}

func (r *PGStore) Get(ctx context.Context, orderID string) (market.Order, error) {
	var o market.Order
	var paymentID *string
	err := r.DB.QueryRow(ctx, `
		SELECT id, buyer_id, supplier_id, status, payment_status, payment_id,
		       total_cents, delivery_date, created_at, updated_at
		FROM orders WHERE id=$1`, orderID).Scan(
		&o.ID, &o.BuyerID, &o.SupplierID, &o.Status, &o.PaymentStatus, &paymentID,
		&o.TotalCents, &o.DeliveryDate, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return market.Order{}, market.NotFoundf("order %s", orderID)
	}
	if err != nil {
		return market.Order{}, err
	}
	if paymentID != nil {
		o.PaymentID = *paymentID
	}

	rows, err := r.DB.Query(ctx, `
		SELECT product_id, qty, price_cents FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return market.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it market.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Qty, &it.PriceCents); err != nil {
			return market.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// UpdateItems rewrites the order's lines and settles the stock delta against
// the quantities already consumed, so a later cancel restores exactly what
// the order holds now.
func (r *PGStore) UpdateItems(ctx context.Context, orderID string, items []market.OrderItem, totalCents int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	prev := map[string]int{}
	rows, err := tx.Query(ctx, `SELECT product_id, qty FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var pid string
		var qty int
		if err := rows.Scan(&pid, &qty); err != nil {
			rows.Close()
			return err
		}
		prev[pid] = qty
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, it := range items {
		delta := it.Qty - prev[it.ProductID]
		if delta == 0 {
			continue
		}
		if delta > 0 {
			var stock int
			if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&stock); err != nil {
				return err
			}
			if stock < delta {
				return market.Invariantf("insufficient stock for product %s: need %d more, have %d", it.ProductID, delta, stock)
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`, it.ProductID, delta); err != nil {
			return err
		}
	}

	kept := make(map[string]bool, len(items))
	for _, it := range items {
		kept[it.ProductID] = true
	}
	for pid, qty := range prev {
		if kept[pid] {
			continue
		}
		// line dropped entirely, give its stock back
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`, pid, qty); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price_cents)
			VALUES ($1, $2, $3, $4)`,
			orderID, it.ProductID, it.Qty, it.PriceCents); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET total_cents=$2, updated_at=now() WHERE id=$1`, orderID, totalCents); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGStore) UpdateStatus(ctx context.Context, orderID string, st market.Status) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, st)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return market.NotFoundf("order %s", orderID)
	}
	return nil
}

// Cancel restores consumed stock and marks the order cancelled in one tx.
func (r *PGStore) Cancel(ctx context.Context, orderID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT product_id, qty FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	type rec struct {
		pid string
		qty int
	}
	var recs []rec
	for rows.Next() {
		var x rec
		if err := rows.Scan(&x.pid, &x.qty); err != nil {
			rows.Close()
			return err
		}
		recs = append(recs, x)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, x := range recs {
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`, x.pid, x.qty); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, market.StatusCancelled); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
