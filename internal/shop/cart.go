package shop

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// CartService mutates per-buyer carts. Same-buyer mutations are serialized
// through a striped lock so concurrent adds never lose updates; different
// buyers land on independent stripes.
type CartService struct {
	Carts CartStore
	Stock StockLedger

	locks [32]sync.Mutex
}

func NewCartService(carts CartStore, stock StockLedger) *CartService {
	return &CartService{Carts: carts, Stock: stock}
}

func (s *CartService) buyerLock(buyerID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(buyerID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// AddItem merges into an existing line or inserts a new one. The stock check
// here is advisory only; the ledger enforces the real bound at checkout.
func (s *CartService) AddItem(ctx context.Context, in AddItemInput) (Cart, error) {
	if err := in.Validate(); err != nil {
		return Cart{}, err
	}

	mu := s.buyerLock(in.BuyerID)
	mu.Lock()
	defer mu.Unlock()

	stock, err := s.Stock.Available(ctx, in.ProductID)
	if err != nil {
		return Cart{}, err
	}

	cart, err := s.Carts.GetOrCreate(ctx, in.BuyerID)
	if err != nil {
		return Cart{}, err
	}

	want := cart.Qty(in.ProductID) + in.Qty
	if want > stock {
		return Cart{}, InsufficientStock([]Shortfall{
			{ProductID: in.ProductID, Required: want, Available: stock},
		})
	}

	if i := cart.indexOf(in.ProductID); i >= 0 {
		cart.Lines[i].Qty = want
	} else {
		cart.Lines = append(cart.Lines, CartLine{ProductID: in.ProductID, Qty: in.Qty})
	}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.Carts.Put(ctx, cart); err != nil {
		return Cart{}, Internal("persist cart", err)
	}
	return cart, nil
}

// RemoveItem drops the line entirely when no quantity is given, otherwise
// decrements it, removing the line once it reaches zero.
func (s *CartService) RemoveItem(ctx context.Context, in RemoveItemInput) (Cart, error) {
	if err := in.Validate(); err != nil {
		return Cart{}, err
	}

	mu := s.buyerLock(in.BuyerID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.Carts.GetOrCreate(ctx, in.BuyerID)
	if err != nil {
		return Cart{}, err
	}

	i := cart.indexOf(in.ProductID)
	if i < 0 {
		return Cart{}, NotFoundf("product %s not in cart", in.ProductID)
	}

	switch {
	case in.Qty == 0 || in.Qty == cart.Lines[i].Qty:
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	case in.Qty > cart.Lines[i].Qty:
		return Cart{}, Validationf("cannot remove %d of product %s, cart has %d",
			in.Qty, in.ProductID, cart.Lines[i].Qty)
	default:
		cart.Lines[i].Qty -= in.Qty
	}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.Carts.Put(ctx, cart); err != nil {
		return Cart{}, Internal("persist cart", err)
	}
	return cart, nil
}

// Get returns the buyer's cart, creating an empty one on first read.
func (s *CartService) Get(ctx context.Context, buyerID string) (Cart, error) {
	if buyerID == "" {
		return Cart{}, Validationf("missing buyer id")
	}
	return s.Carts.GetOrCreate(ctx, buyerID)
}
