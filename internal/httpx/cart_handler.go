package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-shop-checkout.git/internal/redisx"
	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type AddItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type CartHandler struct {
	Cart  *shop.CartService
	Redis *redis.Client // optional cart cache
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireBuyer)
		r.Post("/cart/items", h.addItem)
		r.Delete("/cart/items/{productID}", h.removeItem)
		r.Get("/cart", h.getCart)
	})
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	buyer := BuyerID(r)
	cart, err := h.Cart.AddItem(ctx, shop.AddItemInput{
		BuyerID: buyer, ProductID: req.ProductID, Qty: req.Qty,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	h.dropCache(ctx, buyer)
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	// qty absent removes the whole line
	qty := 0
	if raw := r.URL.Query().Get("qty"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeErr(w, shop.Validationf("quantity must be a positive integer"))
			return
		}
		qty = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	buyer := BuyerID(r)
	cart, err := h.Cart.RemoveItem(ctx, shop.RemoveItemInput{
		BuyerID: buyer, ProductID: productID, Qty: qty,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	h.dropCache(ctx, buyer)
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	buyer := BuyerID(r)

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyCart, buyer)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	// 2) fallback store
	cart, err := h.Cart.Get(ctx, buyer)
	if err != nil {
		writeErr(w, err)
		return
	}
	if h.Redis != nil {
		b, _ := json.Marshal(cart)
		_ = h.Redis.Set(ctx, key, b, redisx.TTLCartCache).Err()
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) dropCache(ctx context.Context, buyerID string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCart, buyerID)).Err()
}
