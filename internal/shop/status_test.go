package shop_test

import (
	"testing"

	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to shop.Status
		want     bool
	}{
		{shop.StatusPending, shop.StatusCompleted, true},
		{shop.StatusPending, shop.StatusCancelled, true},
		{shop.StatusPending, shop.StatusPending, false},
		{shop.StatusCompleted, shop.StatusPending, false},
		{shop.StatusCompleted, shop.StatusCancelled, false},
		{shop.StatusCancelled, shop.StatusPending, false},
		{shop.StatusCancelled, shop.StatusCompleted, false},
	}
	for _, c := range cases {
		if got := shop.CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
