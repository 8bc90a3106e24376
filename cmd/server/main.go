package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/mholtet/embla/internal"
	"github.com/mholtet/embla/internal/catalog"
	"github.com/mholtet/embla/internal/channel"
	"github.com/mholtet/embla/internal/checkout"
	"github.com/mholtet/embla/internal/cookie"
	"github.com/mholtet/embla/internal/handler/api"
	"github.com/mholtet/embla/internal/middleware"
	"github.com/mholtet/embla/internal/pricing"
	"github.com/mholtet/embla/internal/profile"
	"github.com/mholtet/embla/internal/router"
	"github.com/mholtet/embla/internal/routes"
	"github.com/mholtet/embla/internal/session"
	"github.com/mholtet/embla/internal/telemetry"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Business metrics
	business := telemetry.NewBusiness("embla")

	// Catalog snapshot store: Postgres source behind a circuit breaker,
	// with an optional Redis warm cache for cold starts.
	source := catalog.NewBreakerSource(catalog.NewPostgresSource(pool), logger)

	var snapshotCache catalog.Cache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer redisClient.Close()
		snapshotCache = catalog.NewSnapshotCache(redisClient, cfg.Redis.SnapshotKey, cfg.Redis.SnapshotTTL)
		logger.Info("Snapshot cache enabled", "addr", cfg.Redis.Addr)
	}

	catalogStore := catalog.NewStore(source, snapshotCache, business, logger)

	// Render from the warm cache immediately, then refresh live.
	catalogStore.Warm(ctx)
	catalogStore.TriggerRefresh()
	go catalogStore.Run(ctx)

	// NATS: catalog change notifications in, order hand-off out.
	logger.Info("Connecting to NATS...", "url", cfg.NATS.URL)
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("NATS connection failed: %w", err)
	}
	defer nc.Drain()

	sub, err := catalogStore.SubscribeChanges(nc, cfg.NATS.CatalogSubject)
	if err != nil {
		return fmt.Errorf("catalog subscription failed: %w", err)
	}
	defer sub.Unsubscribe()
	logger.Info("Subscribed to catalog changes", "subject", cfg.NATS.CatalogSubject)

	// Shopper profiles
	profiles := profile.NewPostgresStore(pool)

	// Pricing engine
	engine := pricing.New(pricing.Config{
		PointValueCents:          cfg.Pricing.PointValueCents,
		MaxRedemptionBasisPoints: cfg.Pricing.MaxRedemptionBasisPoints,
		GiftSurchargeCents:       cfg.Pricing.GiftSurchargeCents,
		Coupons:                  cfg.Pricing.Coupons,
	})

	// Order message formatting and hand-off
	formatter, err := checkout.NewFormatter(cfg.Shop.Locale, cfg.Shop.Currency)
	if err != nil {
		return fmt.Errorf("formatter initialization failed: %w", err)
	}
	orders := channel.NewNATSChannel(nc, cfg.NATS.OrdersSubjectPrefix)

	// Sessions: one cart and checkout orchestrator per shopper
	sessions := session.NewManager(catalogStore, func() *checkout.Orchestrator {
		return checkout.New(engine, formatter, profiles, orders, cfg.Shop.OrderDestination, business, logger)
	})

	cookies := cookie.NewConfig(cfg.Env == "prod")

	// HTTP metrics and middleware
	httpMetrics := middleware.NewMetrics("embla")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		middleware.AccessLog,
		httpMetrics.Middleware,
	)

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		CatalogHandler:  api.NewCatalogHandler(catalogStore),
		CartHandler:     api.NewCartHandler(sessions, cookies, profiles, catalogStore, engine, business),
		CheckoutHandler: api.NewCheckoutHandler(sessions, cookies, profiles),
		MetricsHandler:  httpMetrics.Handler(),
		Healthz: func(w http.ResponseWriter, req *http.Request) {
			if err := pool.Ping(req.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		},
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
