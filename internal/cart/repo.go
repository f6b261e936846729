package cart

import (
	"context"
	"errors"

	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGRepo struct{ DB *pgxpool.Pool }

var _ Repo = (*PGRepo)(nil)

func (r *PGRepo) Get(ctx context.Context, buyerID string) (market.Cart, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM carts WHERE buyer_id=$1)`, buyerID).Scan(&exists)
	if err != nil {
		return market.Cart{}, err
	}
	if !exists {
		return market.Cart{}, market.NotFoundf("cart for buyer %s", buyerID)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT product_id, qty FROM cart_items
		WHERE cart_id=$1 ORDER BY position`, buyerID)
	if err != nil {
		return market.Cart{}, err
	}
	defer rows.Close()

	c := market.Cart{BuyerID: buyerID}
	for rows.Next() {
		var it market.CartItem
		if err := rows.Scan(&it.ProductID, &it.Qty); err != nil {
			return market.Cart{}, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

func (r *PGRepo) AddItem(ctx context.Context, buyerID, productID string, qty int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO carts(buyer_id) VALUES ($1)
		ON CONFLICT (buyer_id) DO NOTHING`, buyerID); err != nil {
		return err
	}
	// existing item adds quantities, new item appends at the tail
	if _, err := tx.Exec(ctx, `
		INSERT INTO cart_items(cart_id, product_id, qty, position)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM cart_items WHERE cart_id=$1))
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty`,
		buyerID, productID, qty); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) SetItemQty(ctx context.Context, buyerID, productID string, qty int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE cart_items SET qty=$3
		WHERE cart_id=$1 AND product_id=$2`, buyerID, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return market.NotFoundf("cart item %s", productID)
	}
	return nil
}

func (r *PGRepo) RemoveItem(ctx context.Context, buyerID, productID string) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2`, buyerID, productID)
	return err
}

func (r *PGRepo) Clear(ctx context.Context, buyerID string) error {
	// cart_items cascade on carts delete
	_, err := r.DB.Exec(ctx, `DELETE FROM carts WHERE buyer_id=$1`, buyerID)
	return err
}

func (r *PGRepo) ProductExists(ctx context.Context, productID string) (bool, error) {
	var id string
	err := r.DB.QueryRow(ctx, `SELECT id FROM products WHERE id=$1`, productID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
