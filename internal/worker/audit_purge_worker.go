package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application/services"
)

// AuditPurgeWorker trims the audit trail to the configured retention window.
type AuditPurgeWorker struct {
	cleanup   *services.CleanupService
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

func NewAuditPurgeWorker(
	cleanup *services.CleanupService,
	interval time.Duration,
	retention time.Duration,
	logger *slog.Logger,
) *AuditPurgeWorker {
	return &AuditPurgeWorker{
		cleanup:   cleanup,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

func (w *AuditPurgeWorker) Start(ctx context.Context) {
	w.logger.Info("audit purge worker started",
		"interval", w.interval,
		"retention", w.retention,
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit purge worker stopping")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *AuditPurgeWorker) purge(ctx context.Context) {
	if _, err := w.cleanup.PurgeAudit(ctx, w.retention); err != nil {
		w.logger.Error("audit purge failed", "error", err)
	}
}
