package shop

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartRepo persists carts as a carts row plus cart_items keyed by
// (buyer_id, product_id). Put replaces the line set wholesale under the
// buyer's row lock, so same-buyer writers serialize at the database too.
type CartRepo struct{ DB *pgxpool.Pool }

func (r *CartRepo) GetOrCreate(ctx context.Context, buyerID string) (Cart, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Cart{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO carts(buyer_id) VALUES ($1) ON CONFLICT (buyer_id) DO NOTHING`,
		buyerID); err != nil {
		return Cart{}, err
	}

	cart := Cart{BuyerID: buyerID}
	if err := tx.QueryRow(ctx, `SELECT updated_at FROM carts WHERE buyer_id=$1`, buyerID).
		Scan(&cart.UpdatedAt); err != nil {
		return Cart{}, err
	}

	rows, err := tx.Query(ctx,
		`SELECT product_id, qty FROM cart_items WHERE buyer_id=$1 ORDER BY product_id`, buyerID)
	if err != nil {
		return Cart{}, err
	}
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ProductID, &l.Qty); err != nil {
			rows.Close()
			return Cart{}, err
		}
		cart.Lines = append(cart.Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Cart{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

func (r *CartRepo) Put(ctx context.Context, cart Cart) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO carts(buyer_id, updated_at) VALUES ($1, now())
		ON CONFLICT (buyer_id) DO UPDATE SET updated_at = now()
	`, cart.BuyerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE buyer_id=$1`, cart.BuyerID); err != nil {
		return err
	}
	for _, l := range cart.Lines {
		if _, err := tx.Exec(ctx,
			`INSERT INTO cart_items(buyer_id, product_id, qty) VALUES ($1,$2,$3)`,
			cart.BuyerID, l.ProductID, l.Qty); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *CartRepo) Clear(ctx context.Context, buyerID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE buyer_id=$1`, buyerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE carts SET updated_at = now() WHERE buyer_id=$1`, buyerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
