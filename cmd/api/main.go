package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/promocart-backend/api/routes"
	"github.com/angelmondragon/promocart-backend/internal/benefits"
	"github.com/angelmondragon/promocart-backend/internal/cartitems"
	"github.com/angelmondragon/promocart-backend/internal/commerce"
	"github.com/angelmondragon/promocart-backend/internal/inventory"
	"github.com/angelmondragon/promocart-backend/internal/promotion"
	"github.com/angelmondragon/promocart-backend/pkg/config"
	"github.com/angelmondragon/promocart-backend/pkg/db"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
	"github.com/angelmondragon/promocart-backend/pkg/metrics"
	"github.com/angelmondragon/promocart-backend/pkg/migrate"
	"github.com/angelmondragon/promocart-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(ctx, "redis not configured, product cache and idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	commerceClient, err := commerce.NewClient(cfg.Commerce, cfg.Breaker, nil, logg)
	if err != nil {
		logg.Error(ctx, "failed to create commerce client", err)
		os.Exit(1)
	}

	var products benefits.ProductLookup = commerceClient
	if redisClient != nil {
		products = commerce.NewCachedLookup(commerceClient, redisClient, cfg.ProductCache.TTL, logg)
	}

	engine, err := promotion.NewEngineClient(cfg.Promotion, cfg.Breaker, nil, logg)
	if err != nil {
		logg.Error(ctx, "failed to create promotion client", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(
		inventory.NewRepository(dbClient.DB()),
		cfg.Commerce.Channel,
		cfg.Inventory,
		logg,
	)
	if err != nil {
		logg.Error(ctx, "failed to create inventory service", err)
		os.Exit(1)
	}

	cartItems, err := cartitems.NewService(
		commerceClient,
		products,
		engine,
		inventoryService,
		cfg.Promotion.EffectNames,
		metrics.NewBenefitMetrics(registry),
		logg,
	)
	if err != nil {
		logg.Error(ctx, "failed to create cart item service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"channel": cfg.Commerce.Channel,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, registry, cartItems, inventoryService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
