package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepo struct{ DB *pgxpool.Pool }

// Create writes the order header and its line snapshot in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, status, total_cents, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, o.ID, o.BuyerID, string(o.Status), o.TotalCents, o.CreatedAt, o.UpdatedAt); err != nil {
		return err
	}
	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price_cents)
			VALUES ($1,$2,$3,$4)`,
			o.ID, l.ProductID, l.Qty, l.PriceCents); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *OrderRepo) ByID(ctx context.Context, orderID string) (Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `SELECT id, buyer_id, status, total_cents, created_at, updated_at
	                           FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.BuyerID, &status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, NotFoundf("order %s not found", orderID)
	}
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)

	o.Lines, err = r.lines(ctx, o.ID)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) ByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, buyer_id, status, total_cents, created_at, updated_at
	                              FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.BuyerID, &status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Lines, err = r.lines(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepo) lines(ctx context.Context, orderID string) ([]OrderLine, error) {
	rows, err := r.DB.Query(ctx, `SELECT product_id, qty, price_cents
	                              FROM order_items WHERE order_id=$1 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ProductID, &l.Qty, &l.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SetStatus applies from->to only if the row still holds from, so two
// concurrent settlements cannot both win.
func (r *OrderRepo) SetStatus(ctx context.Context, orderID string, from, to Status) error {
	if !CanTransition(from, to) {
		return Statef("cannot transition %s to %s", from, to)
	}
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		orderID, string(from), string(to))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var cur string
		err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&cur)
		if errors.Is(err, pgx.ErrNoRows) {
			return NotFoundf("order %s not found", orderID)
		}
		if err != nil {
			return err
		}
		return Statef("order already processed")
	}
	return nil
}
