package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Buyer identity is resolved upstream by the auth collaborator and handed
// over in this header; admin identity likewise.
const (
	HeaderBuyerID = "X-Buyer-Id"
	HeaderAdminID = "X-Admin-Id"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func BuyerID(r *http.Request) string { return r.Header.Get(HeaderBuyerID) }

func RequireBuyer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if BuyerID(r) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing buyer identity"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderAdminID) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing admin identity"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch shop.KindOf(err) {
	case shop.KindValidation:
		code = http.StatusBadRequest
	case shop.KindNotFound:
		code = http.StatusNotFound
	case shop.KindAuthorization:
		code = http.StatusForbidden
	case shop.KindStock, shop.KindState:
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
