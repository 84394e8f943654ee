// Package compensate restocks the stock consumed by orders whose payment
// was cancelled, driven by order.settled events.
package compensate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/go-shop-checkout.git/internal/redisx"
	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Service struct {
	Stock       shop.StockLedger
	Redis       *redis.Client // optional event dedup
	ServiceName string
}

// HandleOrderSettled: dipasang sebagai handler consumer.
func (s *Service) HandleOrderSettled(ctx context.Context, m kafkago.Message) error {
	var env shop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != shop.EventOrderSettled {
		return nil
	} // ignore

	// dedup via Redis (pakai event_id)
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "compensator", env.EventID)
		exists, _ := redisx.Exists(ctx, s.Redis, dkey)
		if exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	var p shop.OrderSettledPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return err
	}
	if p.Status != shop.StatusCancelled {
		return nil
	}

	// Cancelled settlement: the reserved stock goes back on the shelf.
	for _, l := range p.Lines {
		if err := s.Stock.Restock(ctx, l.ProductID, l.Qty); err != nil {
			return fmt.Errorf("restock %s x%d for order %s: %w", l.ProductID, l.Qty, p.OrderID, err)
		}
	}
	return nil
}
