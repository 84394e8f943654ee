package compensate_test

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-shop-checkout.git/internal/compensate"
	kafkax "github.com/ariefcatur/go-shop-checkout.git/internal/kafka"
	"github.com/ariefcatur/go-shop-checkout.git/internal/memstore"
	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
	kafkago "github.com/segmentio/kafka-go"
)

func settledMessage(eventType string, status shop.Status, lines []shop.ItemQty) kafkago.Message {
	env := shop.Envelope{
		EventID:       "ev-1",
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "checkout-api-test",
		CorrelationID: "o1",
		Payload: kafkax.MustMarshal(shop.OrderSettledPayload{
			OrderID: "o1",
			BuyerID: "b1",
			Status:  status,
			Lines:   lines,
		}),
	}
	return kafkago.Message{Key: shop.PartitionKey("o1"), Value: kafkax.MustMarshal(env)}
}

func available(t *testing.T, ledger *memstore.Ledger, id string) int {
	t.Helper()
	n, err := ledger.Available(context.Background(), id)
	if err != nil {
		t.Fatalf("Available(%s): %v", id, err)
	}
	return n
}

func TestCancelledSettlementRestocks(t *testing.T) {
	ledger := memstore.NewLedger(
		shop.Product{ID: "p1", Name: "Course", Category: "course", PriceCents: 100, Stock: 3},
		shop.Product{ID: "p2", Name: "Book", Category: "book", PriceCents: 200, Stock: 0},
	)
	svc := &compensate.Service{Stock: ledger, ServiceName: "compensator-test"}

	msg := settledMessage(shop.EventOrderSettled, shop.StatusCancelled, []shop.ItemQty{
		{ProductID: "p1", Qty: 2},
		{ProductID: "p2", Qty: 1},
	})
	if err := svc.HandleOrderSettled(context.Background(), msg); err != nil {
		t.Fatalf("HandleOrderSettled: %v", err)
	}

	if got := available(t, ledger, "p1"); got != 5 {
		t.Fatalf("p1 stock = %d, want 5", got)
	}
	if got := available(t, ledger, "p2"); got != 1 {
		t.Fatalf("p2 stock = %d, want 1", got)
	}
}

func TestCompletedSettlementLeavesStockAlone(t *testing.T) {
	ledger := memstore.NewLedger(shop.Product{ID: "p1", Name: "Course", Category: "course", PriceCents: 100, Stock: 3})
	svc := &compensate.Service{Stock: ledger}

	msg := settledMessage(shop.EventOrderSettled, shop.StatusCompleted, []shop.ItemQty{{ProductID: "p1", Qty: 2}})
	if err := svc.HandleOrderSettled(context.Background(), msg); err != nil {
		t.Fatalf("HandleOrderSettled: %v", err)
	}
	if got := available(t, ledger, "p1"); got != 3 {
		t.Fatalf("p1 stock = %d, want 3", got)
	}
}

func TestForeignEventTypeIgnored(t *testing.T) {
	ledger := memstore.NewLedger(shop.Product{ID: "p1", Name: "Course", Category: "course", PriceCents: 100, Stock: 3})
	svc := &compensate.Service{Stock: ledger}

	msg := settledMessage(shop.EventCheckoutCommitted, shop.StatusCancelled, []shop.ItemQty{{ProductID: "p1", Qty: 2}})
	if err := svc.HandleOrderSettled(context.Background(), msg); err != nil {
		t.Fatalf("HandleOrderSettled: %v", err)
	}
	if got := available(t, ledger, "p1"); got != 3 {
		t.Fatalf("p1 stock = %d, want 3", got)
	}
}

func TestMalformedEnvelopeRejected(t *testing.T) {
	svc := &compensate.Service{Stock: memstore.NewLedger()}

	msg := kafkago.Message{Key: []byte("o1"), Value: []byte(`{not json`)}
	if err := svc.HandleOrderSettled(context.Background(), msg); err == nil {
		t.Fatal("want error for malformed envelope")
	}
}

func TestUnknownProductSurfacesError(t *testing.T) {
	svc := &compensate.Service{Stock: memstore.NewLedger()}

	msg := settledMessage(shop.EventOrderSettled, shop.StatusCancelled, []shop.ItemQty{{ProductID: "ghost", Qty: 1}})
	err := svc.HandleOrderSettled(context.Background(), msg)
	if err == nil {
		t.Fatal("want error for unknown product")
	}
}
