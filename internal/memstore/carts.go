package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
)

type CartStore struct {
	mu    sync.Mutex
	carts map[string]shop.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]shop.Cart)}
}

func (s *CartStore) GetOrCreate(ctx context.Context, buyerID string) (shop.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[buyerID]
	if !ok {
		c = shop.Cart{BuyerID: buyerID, UpdatedAt: time.Now().UTC()}
		s.carts[buyerID] = c
	}
	return cloneCart(c), nil
}

func (s *CartStore) Put(ctx context.Context, cart shop.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.BuyerID] = cloneCart(cart)
	return nil
}

func (s *CartStore) Clear(ctx context.Context, buyerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.carts[buyerID]
	c.BuyerID = buyerID
	c.Lines = nil
	c.UpdatedAt = time.Now().UTC()
	s.carts[buyerID] = c
	return nil
}

func cloneCart(c shop.Cart) shop.Cart {
	out := c
	if c.Lines != nil {
		out.Lines = make([]shop.CartLine, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}
