package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/fulfillment-ledger/internal/app"
	"github.com/odyssey-erp/fulfillment-ledger/internal/catalog"
	deliveryorders "github.com/odyssey-erp/fulfillment-ledger/internal/delivery/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/delivery/progress"
	"github.com/odyssey-erp/fulfillment-ledger/internal/observability"
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/cache"
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/db"
	"github.com/odyssey-erp/fulfillment-ledger/internal/rbac"
	salesorders "github.com/odyssey-erp/fulfillment-ledger/internal/sales/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/sales/quotations"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
	"github.com/odyssey-erp/fulfillment-ledger/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 20, MaxConnLifetime: 30 * time.Minute})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache runs degraded", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	var notifier shared.Notifier = shared.NopNotifier{}
	if cfg.NotifyEnabled && !app.InTestMode() {
		client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, metrics, logger)
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		notifier = client
	}

	goods := catalog.NewCachedReader(catalog.NewRepository(dbpool), redisClient, cfg.CatalogCacheTTL, logger)

	quotationService := quotations.NewService(quotations.NewRepository(dbpool), goods, quotations.ServiceConfig{
		TaxRate:  cfg.TaxRatePercent,
		Company:  cfg.CompanyCode,
		Notifier: notifier,
		Metrics:  metrics,
		Logger:   logger,
	})
	salesService := salesorders.NewService(salesorders.NewRepository(dbpool), salesorders.ServiceConfig{
		Notifier: notifier,
		Metrics:  metrics,
		Logger:   logger,
	})
	deliveryRepo := deliveryorders.NewRepository(dbpool)
	deliveryService := deliveryorders.NewService(deliveryRepo, deliveryorders.ServiceConfig{
		Company:  cfg.CompanyCode,
		Notifier: notifier,
		Metrics:  metrics,
		Logger:   logger,
	})
	progressService := progress.NewService(deliveryRepo, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		RBACMiddleware:   rbac.Middleware{Logger: logger},
		QuotationHandler: quotations.NewHandler(logger, quotationService),
		SalesHandler:     salesorders.NewHandler(logger, salesService),
		DeliveryHandler:  deliveryorders.NewHandler(logger, deliveryService),
		ProgressHandler:  progress.NewHandler(logger, progressService),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
