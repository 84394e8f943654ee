package shop

import "context"

// CartStore persists one cart per buyer. GetOrCreate never reports a
// missing cart: the empty cart is created and persisted on first read.
type CartStore interface {
	GetOrCreate(ctx context.Context, buyerID string) (Cart, error)
	Put(ctx context.Context, cart Cart) error
	Clear(ctx context.Context, buyerID string) error
}

// StockLedger is the only globally shared mutable resource. Reserve applies
// to the whole line list as one unit: either every decrement commits or none
// does, and stock never goes below zero under any interleaving.
type StockLedger interface {
	Available(ctx context.Context, productID string) (int, error)
	Reserve(ctx context.Context, lines []CartLine) error
	Restock(ctx context.Context, productID string, qty int) error
}

// Catalog is the read-side product contract (price/stock lookups).
type Catalog interface {
	Product(ctx context.Context, productID string) (Product, error)
	Products(ctx context.Context, page, limit int) ([]Product, error)
}

// OrderStore is append-mostly: orders are created by the checkout
// coordinator, status moves only via SetStatus, nothing is deleted.
type OrderStore interface {
	Create(ctx context.Context, o Order) error
	ByID(ctx context.Context, orderID string) (Order, error)
	ByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	SetStatus(ctx context.Context, orderID string, from, to Status) error
}
