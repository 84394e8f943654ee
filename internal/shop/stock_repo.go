package shop

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepo implements StockLedger and Catalog on the products table.
type ProductRepo struct{ DB *pgxpool.Pool }

func (r *ProductRepo) Available(ctx context.Context, productID string) (int, error) {
	var stock int
	err := r.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, NotFoundf("product %s not found", productID)
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// Reserve locks product rows FOR UPDATE in product-id order (two checkouts
// touching the same products always lock in the same order, no deadlock),
// verifies every line against live stock, then decrements all of them in one
// commit. Any shortfall rolls the whole batch back.
func (r *ProductRepo) Reserve(ctx context.Context, lines []CartLine) error {
	if len(lines) == 0 {
		return Validationf("nothing to reserve")
	}
	sorted := make([]CartLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var shortfalls []Shortfall
	for _, it := range sorted {
		var stock int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return NotFoundf("product %s not found", it.ProductID)
		}
		if err != nil {
			return err
		}
		if stock < it.Qty {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: it.ProductID, Required: it.Qty, Available: stock,
			})
			continue
		}
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
			it.ProductID, it.Qty); err != nil {
			return err
		}
	}

	if len(shortfalls) > 0 {
		return InsufficientStock(shortfalls) // rollback via defer
	}
	return tx.Commit(ctx)
}

func (r *ProductRepo) Restock(ctx context.Context, productID string, qty int) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`,
		productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFoundf("product %s not found", productID)
	}
	return nil
}

func (r *ProductRepo) Product(ctx context.Context, productID string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `SELECT id, name, category, price_cents, stock, image_url, created_at, updated_at
	                           FROM products WHERE id=$1`, productID).
		Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, NotFoundf("product %s not found", productID)
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) Products(ctx context.Context, page, limit int) ([]Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	rows, err := r.DB.Query(ctx, `SELECT id, name, category, price_cents, stock, image_url, created_at, updated_at
	                              FROM products ORDER BY name LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
