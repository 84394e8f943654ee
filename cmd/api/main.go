package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-checkout.git/internal/config"
	"github.com/ariefcatur/go-shop-checkout.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-checkout.git/internal/kafka"
	"github.com/ariefcatur/go-shop-checkout.git/internal/postgres"
	"github.com/ariefcatur/go-shop-checkout.git/internal/redisx"
	"github.com/ariefcatur/go-shop-checkout.git/internal/shop"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if cfg.MigrationsDir != "" {
		if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	pCheckout := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicCheckoutCommitted, 1024)
	pCheckout.Start(ctx)
	pSettled := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderSettled, 1024)
	pSettled.Start(ctx)

	// Repos & services
	products := &shop.ProductRepo{DB: db}
	carts := &shop.CartRepo{DB: db}
	orders := &shop.OrderRepo{DB: db}

	cartSvc := shop.NewCartService(carts, products)
	coordinator := &shop.Coordinator{Carts: carts, Stock: products, Catalog: products, Orders: orders}
	payments := shop.NewPaymentSimulator(orders, cfg.PaySuccessRate, nil)

	router := httpx.NewRouter()
	(&httpx.CartHandler{Cart: cartSvc, Redis: rdb}).Register(router)
	(&httpx.OrdersHandler{
		Checkout:         coordinator,
		Payments:         payments,
		Orders:           orders,
		Catalog:          products,
		Stock:            products,
		CheckoutEvents:   pCheckout,
		SettlementEvents: pSettled,
		Redis:            rdb,
		Service:          cfg.ServiceName,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCheckout.Close() // tutup inbox -> flush & close writer
	pSettled.Close()
	cancel() // stop producer loops
	pCheckout.WaitClosed()
	pSettled.WaitClosed()
}
