package shop

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

type checkoutState string

const (
	checkoutEmpty      checkoutState = "EMPTY"
	checkoutValidating checkoutState = "VALIDATING"
	checkoutReserving  checkoutState = "RESERVING"
	checkoutCommitted  checkoutState = "COMMITTED"
	checkoutAborted    checkoutState = "ABORTED"
)

var checkoutNext = map[checkoutState]map[checkoutState]bool{
	checkoutEmpty:      {checkoutValidating: true},
	checkoutValidating: {checkoutReserving: true, checkoutAborted: true},
	checkoutReserving:  {checkoutCommitted: true, checkoutAborted: true},
	checkoutCommitted:  {},
	checkoutAborted:    {},
}

type checkoutFlow struct{ state checkoutState }

func (f *checkoutFlow) to(next checkoutState) {
	if !checkoutNext[f.state][next] {
		// linear flow below makes this unreachable; keep the guard anyway
		log.Printf("illegal checkout transition %s -> %s", f.state, next)
		return
	}
	f.state = next
}

// Coordinator turns a cart into a durable order as one logical transaction:
// snapshot prices, reserve all stock atomically, persist the order, clear
// the cart. Stock is never left consumed without a matching order.
type Coordinator struct {
	Carts   CartStore
	Stock   StockLedger
	Catalog Catalog
	Orders  OrderStore
}

func (c *Coordinator) Checkout(ctx context.Context, buyerID string) (Order, error) {
	if buyerID == "" {
		return Order{}, Validationf("missing buyer id")
	}

	flow := &checkoutFlow{state: checkoutEmpty}
	flow.to(checkoutValidating)

	cart, err := c.Carts.GetOrCreate(ctx, buyerID)
	if err != nil {
		flow.to(checkoutAborted)
		return Order{}, err
	}
	if len(cart.Lines) == 0 {
		flow.to(checkoutAborted)
		return Order{}, Validationf("cart empty")
	}

	// Snapshot unit prices now; the order total is immune to later edits.
	now := time.Now().UTC()
	lines := make([]OrderLine, 0, len(cart.Lines))
	total := 0
	for _, l := range cart.Lines {
		p, err := c.Catalog.Product(ctx, l.ProductID)
		if err != nil {
			flow.to(checkoutAborted)
			if KindOf(err) == KindNotFound {
				return Order{}, Validationf("cart references unknown product %s", l.ProductID)
			}
			return Order{}, err
		}
		lines = append(lines, OrderLine{ProductID: l.ProductID, Qty: l.Qty, PriceCents: p.PriceCents})
		total += l.Qty * p.PriceCents
	}

	flow.to(checkoutReserving)
	if err := c.Stock.Reserve(ctx, cart.Lines); err != nil {
		flow.to(checkoutAborted)
		return Order{}, err
	}

	order := Order{
		ID:         uuid.NewString(),
		BuyerID:    buyerID,
		Lines:      lines,
		TotalCents: total,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.Orders.Create(ctx, order); err != nil {
		// Reservation without a durable order would lose stock; roll it back
		// even when the caller's context is already gone.
		comp := context.WithoutCancel(ctx)
		for _, l := range cart.Lines {
			if rerr := c.Stock.Restock(comp, l.ProductID, l.Qty); rerr != nil {
				log.Printf("restock %s x%d after failed order persist: %v", l.ProductID, l.Qty, rerr)
			}
		}
		flow.to(checkoutAborted)
		return Order{}, Internal("persist order", err)
	}
	flow.to(checkoutCommitted)

	// The order is durable; a failed clear is retried out-of-band and must
	// never trigger re-reservation here.
	if err := c.Carts.Clear(context.WithoutCancel(ctx), buyerID); err != nil {
		log.Printf("clear cart %s after checkout %s: %v", buyerID, order.ID, err)
	}

	return order, nil
}
