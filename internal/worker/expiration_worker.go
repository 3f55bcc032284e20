package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application/services"
)

// ExpirationWorker periodically cancels orders whose payment window lapsed.
type ExpirationWorker struct {
	cleanup  *services.CleanupService
	interval time.Duration
	logger   *slog.Logger
}

func NewExpirationWorker(
	cleanup *services.CleanupService,
	interval time.Duration,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		cleanup:  cleanup,
		interval: interval,
		logger:   logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("expiration worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpirationWorker) sweep(ctx context.Context) {
	if _, err := w.cleanup.ExpireOrders(ctx); err != nil {
		w.logger.Error("expiration sweep failed", "error", err)
	}
}
