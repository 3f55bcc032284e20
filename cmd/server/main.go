package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application/services"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/config"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/gateway"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence/postgres"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/interfaces/rest/handlers"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/interfaces/rest/middleware"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/notify"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/settings"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/worker"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting order service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := persistence.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	orderRepo := postgres.NewOrderRepository(db.Pool)
	paymentRepo := postgres.NewPaymentRepository(db.Pool)
	auditRepo := postgres.NewAuditRepository(db.Pool)
	settingsRepo := postgres.NewSettingsRepository(db.Pool)
	uow := postgres.NewTransactionCoordinator(db)

	gatewayClient := gateway.NewRetryClient(gateway.NewClient(cfg.Gateway), cfg.Retry)
	settingsCache := settings.NewCache(settingsRepo, logger)

	var sinks []notify.Sink
	if !cfg.Notify.DisableDelivery {
		if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
			sinks = append(sinks, notify.NewTelegramSink(cfg.Notify))
		}
		if cfg.Notify.EmailWebhookURL != "" {
			sinks = append(sinks, notify.NewEmailWebhookSink(cfg.Notify))
		}
	}
	notifyQueue := notify.NewQueue(cfg.Notify, logger, sinks...)

	checkoutService := services.NewCheckoutService(uow, orderRepo, gatewayClient, settingsCache, logger)
	webhookService := services.NewWebhookService(uow, orderRepo, paymentRepo, notifyQueue, logger)
	operatorService := services.NewOperatorService(uow, orderRepo, notifyQueue, logger)
	financeService := services.NewFinanceService(uow, orderRepo, paymentRepo, gatewayClient, notifyQueue, logger)
	adminService := services.NewAdminService(uow, orderRepo, gatewayClient, settingsCache, notifyQueue, logger)
	ledgerService := services.NewLedgerService(orderRepo, paymentRepo, logger)
	cleanupService := services.NewCleanupService(
		uow,
		orderRepo,
		auditRepo,
		gatewayClient,
		notifyQueue,
		logger,
		cfg.Worker.LegacyTimeout,
		cfg.Worker.BatchSize,
	)

	h := handlers.NewHandlers(
		checkoutService,
		webhookService,
		operatorService,
		financeService,
		adminService,
		ledgerService,
		cfg.Gateway,
		logger,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	router.Use(middleware.RequestOrigin())
	h.RegisterRoutes(router)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	expirationWorker := worker.NewExpirationWorker(cleanupService, cfg.Worker.ExpirationInterval, logger)
	auditPurgeWorker := worker.NewAuditPurgeWorker(
		cleanupService,
		cfg.Worker.AuditPurgeInterval,
		time.Duration(cfg.Worker.AuditRetentionDays)*24*time.Hour,
		logger,
	)
	reconciler := worker.NewReconciler(orderRepo, paymentRepo, cfg.Worker.ExpirationInterval, cfg.Worker.BatchSize, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	notifyQueue.Start(workerCtx)
	go expirationWorker.Start(workerCtx)
	go auditPurgeWorker.Start(workerCtx)
	go reconciler.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()
	notifyQueue.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
