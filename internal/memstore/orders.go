package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
)

type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]shop.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]shop.Order)}
}

func (s *OrderStore) Create(ctx context.Context, o shop.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		return shop.Internal("order "+o.ID+" already exists", nil)
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *OrderStore) ByID(ctx context.Context, orderID string) (shop.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return shop.Order{}, shop.NotFoundf("order %s not found", orderID)
	}
	return cloneOrder(o), nil
}

func (s *OrderStore) ByBuyer(ctx context.Context, buyerID string) ([]shop.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []shop.Order
	for _, o := range s.orders {
		if o.BuyerID == buyerID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *OrderStore) SetStatus(ctx context.Context, orderID string, from, to shop.Status) error {
	if !shop.CanTransition(from, to) {
		return shop.Statef("cannot transition %s to %s", from, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return shop.NotFoundf("order %s not found", orderID)
	}
	if o.Status != from {
		return shop.Statef("order already processed")
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	s.orders[orderID] = o
	return nil
}

func cloneOrder(o shop.Order) shop.Order {
	out := o
	if o.Lines != nil {
		out.Lines = make([]shop.OrderLine, len(o.Lines))
		copy(out.Lines, o.Lines)
	}
	return out
}
