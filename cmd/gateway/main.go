package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/swapwear/marketplace/internal/address"
	"github.com/swapwear/marketplace/internal/cart"
	"github.com/swapwear/marketplace/internal/coordinator/checkoutlog/sqlite"
	"github.com/swapwear/marketplace/internal/exchange"
	"github.com/swapwear/marketplace/internal/infra/adapters/rest"
	"github.com/swapwear/marketplace/internal/infra/cache"
	"github.com/swapwear/marketplace/internal/infra/httpx"
	"github.com/swapwear/marketplace/internal/pkg/config"
	"github.com/swapwear/marketplace/internal/pkg/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(getEnv("APP_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := telemetry.NewLogger(cfg.ServiceName)

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		log.Fatalf("setup tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	client := rest.NewClient(cfg.Backend.BaseURL)
	carts := rest.NewCartResource(client)
	products := cache.Products(
		rest.NewProductResource(client),
		cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Namespace),
		cfg.Redis.ProductTTL,
		logger,
	)
	addresses := rest.NewAddressResource(client)
	exchanges := rest.NewExchangeResource(client)
	invoices := rest.NewInvoiceResource(client)

	logRepo, err := sqlite.Open(cfg.CheckoutLog.Path)
	if err != nil {
		log.Fatalf("open checkout log: %v", err)
	}
	defer logRepo.Close()

	addrMgr := address.New(addresses, logger)
	handler := httpx.NewHandler(
		products,
		addrMgr,
		logRepo,
		func() *cart.Orchestrator {
			return cart.New(carts, products, addresses, invoices, logRepo, logger,
				cart.WithReloadDelay(cfg.Cart.ReloadDelay))
		},
		func() *exchange.Orchestrator {
			return exchange.New(exchanges, logger)
		},
		logger,
	)
	router := httpx.NewRouter(handler)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	logger.Info("marketplace gateway listening", "addr", addr, "backend", cfg.Backend.BaseURL)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
