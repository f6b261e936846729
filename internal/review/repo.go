package review

import (
	"context"
	"errors"

	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

func (r *PGStore) Product(ctx context.Context, productID string) (market.Product, error) {
	var p market.Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, supplier_id, name, price_cents, stock, rating_avg, rating_count, created_at, updated_at
		FROM products WHERE id=$1`, productID).Scan(
		&p.ID, &p.SupplierID, &p.Name, &p.PriceCents, &p.Stock, &p.RatingAvg, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return market.Product{}, market.NotFoundf("product %s", productID)
	}
	if err != nil {
		return market.Product{}, err
	}
	return p, nil
}

func (r *PGStore) HasDeliveredPurchase(ctx context.Context, buyerID, productID string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.buyer_id=$1 AND oi.product_id=$2 AND o.status=$3`,
		buyerID, productID, market.StatusDelivered).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGStore) ReviewExists(ctx context.Context, buyerID, productID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM reviews WHERE buyer_id=$1 AND product_id=$2)`,
		buyerID, productID).Scan(&exists)
	return exists, err
}

func (r *PGStore) Create(ctx context.Context, rv market.Review) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO reviews(id, product_id, buyer_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)`,
		rv.ID, rv.ProductID, rv.BuyerID, rv.Rating, rv.Comment)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// unique(product_id, buyer_id) lost a race
		return market.Invariantf("buyer %s already reviewed product %s", rv.BuyerID, rv.ProductID)
	}
	return err
}

func (r *PGStore) Get(ctx context.Context, id string) (market.Review, error) {
	var rv market.Review
	var comment, reply *string
	err := r.DB.QueryRow(ctx, `
		SELECT id, product_id, buyer_id, rating, comment, supplier_reply, created_at, updated_at
		FROM reviews WHERE id=$1`, id).Scan(
		&rv.ID, &rv.ProductID, &rv.BuyerID, &rv.Rating, &comment, &reply, &rv.CreatedAt, &rv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return market.Review{}, market.NotFoundf("review %s", id)
	}
	if err != nil {
		return market.Review{}, err
	}
	if comment != nil {
		rv.Comment = *comment
	}
	if reply != nil {
		rv.SupplierReply = *reply
	}
	return rv, nil
}

func (r *PGStore) Update(ctx context.Context, rv market.Review) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE reviews SET rating=$2, comment=$3, supplier_reply=$4, updated_at=now()
		WHERE id=$1`, rv.ID, rv.Rating, rv.Comment, rv.SupplierReply)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return market.NotFoundf("review %s", rv.ID)
	}
	return nil
}

func (r *PGStore) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	return err
}

func (r *PGStore) Ratings(ctx context.Context, productID string) ([]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT rating FROM reviews WHERE product_id=$1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGStore) SetRating(ctx context.Context, productID string, avg float64, count int) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE products SET rating_avg=$2, rating_count=$3, updated_at=now()
		WHERE id=$1`, productID, avg, count)
	return err
}
