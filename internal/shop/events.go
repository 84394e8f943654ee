package shop

import (
	"encoding/json"
	"time"
)

const (
	EventCheckoutCommitted = "CheckoutCommitted"
	EventOrderSettled      = "OrderSettled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type CheckoutCommittedPayload struct {
	OrderID    string      `json:"order_id"`
	BuyerID    string      `json:"buyer_id"`
	Lines      []OrderLine `json:"lines"`
	TotalCents int         `json:"total_cents"`
}

// OrderSettledPayload carries the line quantities so the compensator can
// restock cancelled orders without a lookup.
type OrderSettledPayload struct {
	OrderID string    `json:"order_id"`
	BuyerID string    `json:"buyer_id"`
	Status  Status    `json:"status"`
	Lines   []ItemQty `json:"lines"`
}
