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

	"github.com/jassiaa29/pos-ventas-simple/internal/app"
	"github.com/jassiaa29/pos-ventas-simple/internal/audit"
	"github.com/jassiaa29/pos-ventas-simple/internal/auth"
	"github.com/jassiaa29/pos-ventas-simple/internal/dashboard"
	"github.com/jassiaa29/pos-ventas-simple/internal/events"
	"github.com/jassiaa29/pos-ventas-simple/internal/inventory"
	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/categories"
	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/suppliers"
	"github.com/jassiaa29/pos-ventas-simple/internal/observability"
	"github.com/jassiaa29/pos-ventas-simple/internal/payments"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/cache"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
	"github.com/jassiaa29/pos-ventas-simple/internal/sales"
	"github.com/jassiaa29/pos-ventas-simple/internal/sales/customers"
	"github.com/jassiaa29/pos-ventas-simple/internal/settings"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
	"github.com/jassiaa29/pos-ventas-simple/jobs"
	"github.com/jassiaa29/pos-ventas-simple/migrations"
	"github.com/jassiaa29/pos-ventas-simple/report"
)

const sessionCookie = "pos_session"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	loc := cfg.Location()

	if cfg.AutoMigrate {
		if err := db.Migrate(migrations.Files, ".", cfg.PGDSN); err != nil {
			logger.Error("auto migrate", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("schema up to date")
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaEnabled() {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicSales, 256, logger)
		kafkaPublisher.Start()
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafkaPublisher.Close(closeCtx); err != nil {
				logger.Warn("kafka close", slog.Any("error", err))
			}
		}()
		publisher = kafkaPublisher
	}

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		_ = inspector.Close()
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idempotency := shared.NewIdempotencyStore(pool)
	sessions := shared.NewSessionManager(redisClient, sessionCookie, cfg.SessionTTL, cfg.IsProduction())
	tokens := shared.NewTokenIssuer(cfg.SessionSecret)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), dashboardCache, loc, logger)

	settingsService := settings.NewService(settings.NewRepository(pool), loc, logger).WithAudit(auditLogger)

	productService := products.NewService(products.NewRepository(pool), settingsService, dashboardCache, logger).WithAudit(auditLogger)
	categoryService := categories.NewService(categories.NewRepository(pool), dashboardCache, logger).WithAudit(auditLogger)
	supplierService := suppliers.NewService(suppliers.NewRepository(pool)).WithAudit(auditLogger)
	customerService := customers.NewService(customers.NewRepository(pool)).WithAudit(auditLogger)

	inventoryService := inventory.NewService(inventory.NewRepository(pool), productService, inventory.ServiceDeps{
		Audit:  auditLogger,
		Events: publisher,
		Cache:  dashboardCache,
		Logger: logger,
	})

	pdfClient := report.NewClient(cfg.GotenbergURL)
	var pdf sales.PDFRenderer
	if pdfClient.Enabled() {
		pdf = pdfClient
	}
	salesService := sales.NewService(sales.NewRepository(pool), sales.ServiceDeps{
		Idempotency: idempotency,
		Audit:       auditLogger,
		Events:      publisher,
		Jobs:        jobClient,
		Cache:       dashboardCache,
		Receipts:    sales.NewReceiptRenderer(settingsService, pdf),
		Logger:      logger,
	})
	cartService := sales.NewCartService(sales.NewCartStore(redisClient, cfg.CartTTL), salesService, logger)

	authService := auth.NewService(auth.NewRepository(pool), auditLogger, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Metrics: metrics,
		Health: map[string]app.HealthCheck{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		RequireAuth:       auth.Middleware(sessions, tokens, logger),
		AuthHandler:       auth.NewHandler(logger, authService, sessions, tokens),
		DashboardHandler:  dashboard.NewHandler(logger, dashboardService),
		SalesHandler:      sales.NewHandler(logger, salesService, cartService, loc),
		InventoryHandler:  inventory.NewHandler(logger, inventoryService),
		ProductsHandler:   products.NewHandler(logger, productService),
		CategoriesHandler: categories.NewHandler(logger, categoryService),
		CustomersHandler:  customers.NewHandler(logger, customerService),
		SuppliersHandler:  suppliers.NewHandler(logger, supplierService),
		PaymentsHandler:   payments.NewHandler(logger, payments.NewService(payments.NewRepository(pool)), loc),
		SettingsHandler:   settings.NewHandler(logger, settingsService),
		AuditHandler:      audit.NewHandler(logger, audit.NewService(audit.NewRepository(pool)), loc),
		ReportHandler:     report.NewHandler(pdfClient, logger),
		JobHandler:        jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("timezone", loc.String()))
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
