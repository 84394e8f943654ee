package memstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ariefcatur/go-shop-checkout.git/internal/memstore"
	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
	"golang.org/x/sync/errgroup"
)

func product(id string, stock int) shop.Product {
	return shop.Product{ID: id, Name: id, Category: "book", PriceCents: 100, Stock: stock}
}

func available(t *testing.T, l *memstore.Ledger, id string) int {
	t.Helper()
	n, err := l.Available(context.Background(), id)
	if err != nil {
		t.Fatalf("Available(%s): %v", id, err)
	}
	return n
}

func TestReserveDecrementsAllLines(t *testing.T) {
	l := memstore.NewLedger(product("a", 10), product("b", 4))

	err := l.Reserve(context.Background(), []shop.CartLine{
		{ProductID: "a", Qty: 3},
		{ProductID: "b", Qty: 4},
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if got := available(t, l, "a"); got != 7 {
		t.Fatalf("a stock = %d, want 7", got)
	}
	if got := available(t, l, "b"); got != 0 {
		t.Fatalf("b stock = %d, want 0", got)
	}
}

func TestReserveRollsBackWholeBatch(t *testing.T) {
	l := memstore.NewLedger(product("a", 10), product("b", 1))

	err := l.Reserve(context.Background(), []shop.CartLine{
		{ProductID: "a", Qty: 5},
		{ProductID: "b", Qty: 2},
	})
	if shop.KindOf(err) != shop.KindStock {
		t.Fatalf("err = %v, want stock error", err)
	}

	var se *shop.Error
	if !errors.As(err, &se) || len(se.Shortfalls) != 1 || se.Shortfalls[0].ProductID != "b" {
		t.Fatalf("shortfalls = %+v, want one for b", se)
	}

	// nothing was consumed
	if got := available(t, l, "a"); got != 10 {
		t.Fatalf("a stock = %d, want 10", got)
	}
	if got := available(t, l, "b"); got != 1 {
		t.Fatalf("b stock = %d, want 1", got)
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	l := memstore.NewLedger(product("a", 10))

	err := l.Reserve(context.Background(), []shop.CartLine{
		{ProductID: "a", Qty: 1},
		{ProductID: "ghost", Qty: 1},
	})
	if shop.KindOf(err) != shop.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
	if got := available(t, l, "a"); got != 10 {
		t.Fatalf("a stock = %d, want 10", got)
	}
}

func TestReserveContention(t *testing.T) {
	// stock 5, two simultaneous requests for 3: exactly one may win
	l := memstore.NewLedger(product("x", 5))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.Reserve(context.Background(), []shop.CartLine{{ProductID: "x", Qty: 3}})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if shop.KindOf(err) != shop.KindStock {
			t.Fatalf("loser err = %v, want stock error", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if got := available(t, l, "x"); got != 2 {
		t.Fatalf("x stock = %d, want 2", got)
	}
}

func TestReserveNeverOversells(t *testing.T) {
	l := memstore.NewLedger(product("x", 60), product("y", 1000))

	var mu sync.Mutex
	wins := 0
	g := new(errgroup.Group)
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			err := l.Reserve(context.Background(), []shop.CartLine{
				{ProductID: "x", Qty: 1},
				{ProductID: "y", Qty: 2},
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return nil
			}
			if shop.KindOf(err) != shop.KindStock {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if wins != 60 {
		t.Fatalf("wins = %d, want 60", wins)
	}
	if got := available(t, l, "x"); got != 0 {
		t.Fatalf("x stock = %d, want 0", got)
	}
	if got := available(t, l, "y"); got != 1000-60*2 {
		t.Fatalf("y stock = %d, want %d", got, 1000-60*2)
	}
}

func TestRestock(t *testing.T) {
	l := memstore.NewLedger(product("a", 2))

	if err := l.Restock(context.Background(), "a", 5); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if got := available(t, l, "a"); got != 7 {
		t.Fatalf("a stock = %d, want 7", got)
	}

	if err := l.Restock(context.Background(), "ghost", 1); shop.KindOf(err) != shop.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestProductsPaging(t *testing.T) {
	l := memstore.NewLedger(product("a", 1), product("b", 1), product("c", 1))

	ps, err := l.Products(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(ps) != 2 || ps[0].ID != "a" || ps[1].ID != "b" {
		t.Fatalf("page 1 = %+v", ps)
	}

	ps, err = l.Products(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(ps) != 1 || ps[0].ID != "c" {
		t.Fatalf("page 2 = %+v", ps)
	}
}
