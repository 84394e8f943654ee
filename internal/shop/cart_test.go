package shop_test

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-shop-checkout.git/internal/memstore"
	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
	"golang.org/x/sync/errgroup"
)

func newCartFixture(products ...shop.Product) (*shop.CartService, *memstore.Ledger) {
	ledger := memstore.NewLedger(products...)
	return shop.NewCartService(memstore.NewCartStore(), ledger), ledger
}

func book(id string, stock int) shop.Product {
	return shop.Product{ID: id, Name: "Book " + id, Category: "book", PriceCents: 1500, Stock: stock}
}

func TestAddItemMergesLines(t *testing.T) {
	svc, _ := newCartFixture(book("p1", 10))
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: 3})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(cart.Lines))
	}
	if cart.Lines[0].Qty != 5 {
		t.Fatalf("qty = %d, want 5", cart.Lines[0].Qty)
	}
}

func TestAddItemRespectsStockBound(t *testing.T) {
	svc, _ := newCartFixture(book("p1", 5))
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: 3}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	_, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: 3})
	if shop.KindOf(err) != shop.KindStock {
		t.Fatalf("err = %v, want stock error", err)
	}

	// the bound is per buyer: another buyer can still claim up to stock
	if _, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b2", ProductID: "p1", Qty: 5}); err != nil {
		t.Fatalf("AddItem other buyer: %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newCartFixture(book("p1", 5))

	_, err := svc.AddItem(context.Background(), shop.AddItemInput{BuyerID: "b1", ProductID: "ghost", Qty: 1})
	if shop.KindOf(err) != shop.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestAddItemRejectsBadQuantity(t *testing.T) {
	svc, _ := newCartFixture(book("p1", 5))

	for _, qty := range []int{0, -1} {
		_, err := svc.AddItem(context.Background(), shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: qty})
		if shop.KindOf(err) != shop.KindValidation {
			t.Fatalf("qty %d: err = %v, want validation error", qty, err)
		}
	}
}

func TestRemoveItemWholeLine(t *testing.T) {
	svc, _ := newCartFixture(book("p1", 10))
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: 4}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.RemoveItem(ctx, shop.RemoveItemInput{BuyerID: "b1", ProductID: "p1"})
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("lines = %d, want 0", len(cart.Lines))
	}
}

func TestRemoveItemPartial(t *testing.T) {
	svc, _ := newCartFixture(book("p1", 10))
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: 5}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	cart, err := svc.RemoveItem(ctx, shop.RemoveItemInput{BuyerID: "b1", ProductID: "p1", Qty: 2})
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if cart.Qty("p1") != 3 {
		t.Fatalf("qty = %d, want 3", cart.Qty("p1"))
	}

	// decrementing to zero drops the line
	cart, err = svc.RemoveItem(ctx, shop.RemoveItemInput{BuyerID: "b1", ProductID: "p1", Qty: 3})
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("lines = %d, want 0", len(cart.Lines))
	}
}

func TestRemoveItemErrors(t *testing.T) {
	svc, _ := newCartFixture(book("p1", 10))
	ctx := context.Background()

	_, err := svc.RemoveItem(ctx, shop.RemoveItemInput{BuyerID: "b1", ProductID: "p1"})
	if shop.KindOf(err) != shop.KindNotFound {
		t.Fatalf("missing line: err = %v, want not found", err)
	}

	if _, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	_, err = svc.RemoveItem(ctx, shop.RemoveItemInput{BuyerID: "b1", ProductID: "p1", Qty: 3})
	if shop.KindOf(err) != shop.KindValidation {
		t.Fatalf("over-remove: err = %v, want validation error", err)
	}
}

func TestGetCreatesEmptyCart(t *testing.T) {
	svc, _ := newCartFixture()

	cart, err := svc.Get(context.Background(), "fresh-buyer")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cart.BuyerID != "fresh-buyer" || len(cart.Lines) != 0 {
		t.Fatalf("cart = %+v, want empty cart for fresh-buyer", cart)
	}
}

func TestConcurrentAddsSameBuyer(t *testing.T) {
	svc, _ := newCartFixture(book("p1", 1000))
	ctx := context.Background()

	const n = 100
	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(ctx, shop.AddItemInput{BuyerID: "b1", ProductID: "p1", Qty: 1})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddItem: %v", err)
	}

	cart, err := svc.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cart.Qty("p1") != n {
		t.Fatalf("qty = %d, want %d (lost updates)", cart.Qty("p1"), n)
	}
}
