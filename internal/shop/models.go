package shop

import "time"

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CartLine is a soft claim: no stock is removed until checkout commits.
type CartLine struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// Cart holds at most one line per product. One cart per buyer, created
// lazily, cleared (not deleted) on successful checkout.
type Cart struct {
	BuyerID   string     `json:"buyer_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) indexOf(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Qty returns the current quantity of a product in the cart (0 if absent).
func (c *Cart) Qty(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Lines[i].Qty
	}
	return 0
}

// OrderLine snapshots the unit price at checkout time; later price edits
// never change an existing order.
type OrderLine struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type Order struct {
	ID         string      `json:"id"`
	BuyerID    string      `json:"buyer_id"`
	Lines      []OrderLine `json:"lines"`
	TotalCents int         `json:"total_cents"`
	Status     Status      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
