// Package memstore provides in-memory implementations of the shop ports,
// used by the test suites and as seedable fixtures.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
)

// Ledger keeps one lock per product. Reserve acquires the locks of the
// requested products in sorted id order, so overlapping reservations
// serialize without deadlock while disjoint ones never contend.
type Ledger struct {
	mu       sync.RWMutex // guards the map, not the entries
	products map[string]*productEntry
}

type productEntry struct {
	mu sync.Mutex
	p  shop.Product
}

func NewLedger(seed ...shop.Product) *Ledger {
	l := &Ledger{products: make(map[string]*productEntry)}
	for _, p := range seed {
		l.products[p.ID] = &productEntry{p: p}
	}
	return l
}

// Add inserts or replaces a product (fixture helper).
func (l *Ledger) Add(p shop.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.products[p.ID] = &productEntry{p: p}
}

func (l *Ledger) entry(productID string) (*productEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.products[productID]
	return e, ok
}

func (l *Ledger) Available(ctx context.Context, productID string) (int, error) {
	e, ok := l.entry(productID)
	if !ok {
		return 0, shop.NotFoundf("product %s not found", productID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.p.Stock, nil
}

func (l *Ledger) Reserve(ctx context.Context, lines []shop.CartLine) error {
	if len(lines) == 0 {
		return shop.Validationf("nothing to reserve")
	}

	// Merge repeats so each product locks exactly once.
	need := make(map[string]int, len(lines))
	ids := make([]string, 0, len(lines))
	for _, it := range lines {
		if _, seen := need[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		need[it.ProductID] += it.Qty
	}
	sort.Strings(ids)

	entries := make([]*productEntry, len(ids))
	for i, id := range ids {
		e, ok := l.entry(id)
		if !ok {
			return shop.NotFoundf("product %s not found", id)
		}
		entries[i] = e
	}

	for _, e := range entries {
		e.mu.Lock()
	}
	defer func() {
		for _, e := range entries {
			e.mu.Unlock()
		}
	}()

	// First pass: validate everything against live stock.
	var shortfalls []shop.Shortfall
	for i, id := range ids {
		if entries[i].p.Stock < need[id] {
			shortfalls = append(shortfalls, shop.Shortfall{
				ProductID: id, Required: need[id], Available: entries[i].p.Stock,
			})
		}
	}
	if len(shortfalls) > 0 {
		return shop.InsufficientStock(shortfalls)
	}

	// Second pass: apply all decrements together.
	for i, id := range ids {
		entries[i].p.Stock -= need[id]
	}
	return nil
}

func (l *Ledger) Restock(ctx context.Context, productID string, qty int) error {
	e, ok := l.entry(productID)
	if !ok {
		return shop.NotFoundf("product %s not found", productID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.p.Stock += qty
	return nil
}

func (l *Ledger) Product(ctx context.Context, productID string) (shop.Product, error) {
	e, ok := l.entry(productID)
	if !ok {
		return shop.Product{}, shop.NotFoundf("product %s not found", productID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.p, nil
}

func (l *Ledger) Products(ctx context.Context, page, limit int) ([]shop.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	l.mu.RLock()
	all := make([]shop.Product, 0, len(l.products))
	for _, e := range l.products {
		e.mu.Lock()
		all = append(all, e.p)
		e.mu.Unlock()
	}
	l.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})

	start := (page - 1) * limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}
