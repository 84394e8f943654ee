package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-shop-checkout.git/internal/kafka"
	"github.com/ariefcatur/go-shop-checkout.git/internal/redisx"
	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher lets tests swap the kafka producer for a capture.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type RestockReq struct {
	Qty int `json:"qty"`
}

type OrdersHandler struct {
	Checkout *shop.Coordinator
	Payments *shop.PaymentSimulator
	Orders   shop.OrderStore
	Catalog  shop.Catalog
	Stock    shop.StockLedger

	CheckoutEvents   Publisher     // optional, topic checkout.committed
	SettlementEvents Publisher     // optional, topic order.settled
	Redis            *redis.Client // optional status cache
	Service          string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Post("/products/{productID}/restock", h.restock)
	})
	r.Group(func(r chi.Router) {
		r.Use(RequireBuyer)
		r.Post("/checkout", h.checkout)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Post("/orders/{id}/pay", h.pay)
	})
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	buyer := BuyerID(r)
	order, err := h.Checkout.Checkout(ctx, buyer)
	if err != nil {
		writeErr(w, err)
		return
	}

	if h.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, order.ID)
		_ = h.Redis.Set(ctx, statusKey, `{"status":"pending"}`, redisx.TTLStatusCache).Err()
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCart, buyer)).Err()
	}

	if h.CheckoutEvents != nil {
		ev := shop.Envelope{
			EventID:       uuid.NewString(),
			EventType:     shop.EventCheckoutCommitted,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: order.ID,
			Payload: kafkax.MustMarshal(shop.CheckoutCommittedPayload{
				OrderID:    order.ID,
				BuyerID:    order.BuyerID,
				Lines:      order.Lines,
				TotalCents: order.TotalCents,
			}),
		}
		h.CheckoutEvents.Publish(shop.PartitionKey(order.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventCheckoutCommitted)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) pay(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Payments.Pay(ctx, shop.PayInput{BuyerID: BuyerID(r), OrderID: orderID})
	if err != nil {
		writeErr(w, err)
		return
	}

	if h.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, res.Order.ID)
		body, _ := json.Marshal(map[string]any{"status": res.Order.Status})
		_ = h.Redis.Set(ctx, statusKey, body, redisx.TTLStatusCache).Err()
	}

	if h.SettlementEvents != nil {
		lines := make([]shop.ItemQty, 0, len(res.Order.Lines))
		for _, l := range res.Order.Lines {
			lines = append(lines, shop.ItemQty{ProductID: l.ProductID, Qty: l.Qty})
		}
		ev := shop.Envelope{
			EventID:       uuid.NewString(),
			EventType:     shop.EventOrderSettled,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: res.Order.ID,
			Payload: kafkax.MustMarshal(shop.OrderSettledPayload{
				OrderID: res.Order.ID,
				BuyerID: res.Order.BuyerID,
				Status:  res.Order.Status,
				Lines:   lines,
			}),
		}
		h.SettlementEvents.Publish(shop.PartitionKey(res.Order.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderSettled)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.Orders.ByBuyer(ctx, BuyerID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	if orders == nil {
		orders = []shop.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.ByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if o.BuyerID != BuyerID(r) {
		writeErr(w, shop.Authorizationf("order %s does not belong to buyer", o.ID))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("pageLimit"))
	ps, err := h.Catalog.Products(ctx, page, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	if ps == nil {
		ps = []shop.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *OrdersHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req RestockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	in := shop.RestockInput{ProductID: chi.URLParam(r, "productID"), Qty: req.Qty}
	if err := in.Validate(); err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Stock.Restock(ctx, in.ProductID, in.Qty); err != nil {
		writeErr(w, err)
		return
	}

	p, err := h.Catalog.Product(ctx, in.ProductID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
