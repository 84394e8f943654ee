package shop

import (
	"context"
	"math/rand"
	"time"
)

const DefaultSuccessRate = 0.8

type Settlement struct {
	Order         Order  `json:"order"`
	PaymentStatus string `json:"payment_status"`
	Message       string `json:"message"`
}

// PaymentSimulator settles pending orders with a coin flip. The RNG is
// injectable so tests can force either outcome.
type PaymentSimulator struct {
	Orders      OrderStore
	SuccessRate float64
	Rand        func() float64
}

func NewPaymentSimulator(orders OrderStore, successRate float64, rnd func() float64) *PaymentSimulator {
	if successRate <= 0 || successRate > 1 {
		successRate = DefaultSuccessRate
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	return &PaymentSimulator{Orders: orders, SuccessRate: successRate, Rand: rnd}
}

// Pay transitions a pending order to completed or cancelled. Once terminal,
// repeated calls always fail with a state error.
func (p *PaymentSimulator) Pay(ctx context.Context, in PayInput) (Settlement, error) {
	if err := in.Validate(); err != nil {
		return Settlement{}, err
	}

	o, err := p.Orders.ByID(ctx, in.OrderID)
	if err != nil {
		return Settlement{}, err
	}
	if o.BuyerID != in.BuyerID {
		return Settlement{}, Authorizationf("order %s does not belong to buyer", in.OrderID)
	}
	if o.Status != StatusPending {
		return Settlement{}, Statef("order already processed")
	}

	to := StatusCancelled
	if p.Rand() < p.SuccessRate {
		to = StatusCompleted
	}

	// Guarded transition: a concurrent settlement loses here with a state
	// error instead of re-settling.
	if err := p.Orders.SetStatus(ctx, o.ID, StatusPending, to); err != nil {
		return Settlement{}, err
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()

	if to == StatusCompleted {
		return Settlement{Order: o, PaymentStatus: "success", Message: "Payment successful"}, nil
	}
	return Settlement{Order: o, PaymentStatus: "failed", Message: "Payment failed"}, nil
}
