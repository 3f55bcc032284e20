package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/gateway"
)

// Reconciler cross-checks the order projection against the payment ledger
// and flags drift. It never mutates; the ledger is the source of truth and a
// mismatch means a bug or a manual database edit that a human should look at.
// It also warns about authorized holds nearing the provider's void window,
// since past it the money can only be captured, not released.
type Reconciler struct {
	orders    application.OrderRepository
	payments  application.PaymentRepository
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewReconciler(
	orders application.OrderRepository,
	payments application.PaymentRepository,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Reconciler {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Reconciler{
		orders:    orders,
		payments:  payments,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("ledger reconciler started", "interval", r.interval, "batch_size", r.batchSize)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("ledger reconciler stopping")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle.
func (r *Reconciler) RunOnce(ctx context.Context) {
	settled := []domain.OrderStatus{
		domain.StatusCompleted,
		domain.StatusCompletedPartialRefund,
		domain.StatusRefundedFull,
	}
	orders, err := r.orders.List(ctx, application.OrderFilter{Statuses: settled, Limit: r.batchSize})
	if err != nil {
		r.logger.Error("failed to list settled orders", "error", err)
		return
	}
	for _, order := range orders {
		r.checkLedger(ctx, order)
	}

	held, err := r.orders.List(ctx, application.OrderFilter{
		Statuses: []domain.OrderStatus{domain.StatusPaid},
		Limit:    r.batchSize,
	})
	if err != nil {
		r.logger.Error("failed to list held orders", "error", err)
		return
	}
	for _, order := range held {
		r.checkHoldAge(ctx, order)
	}
}

// checkLedger recomputes the paid amount from ledger rows and compares it to
// the order projection.
func (r *Reconciler) checkLedger(ctx context.Context, order *domain.Order) {
	rows, err := r.payments.FindByOrderID(ctx, order.ID)
	if err != nil {
		r.logger.Error("failed to load ledger rows", "order", order.Number, "error", err)
		return
	}

	var paid, refunded int64
	for _, p := range rows {
		if p.IsRefund() {
			refunded += p.AmountCents
			continue
		}
		switch p.Status {
		case domain.PaymentConfirmed, domain.PaymentRefundedPartial, domain.PaymentRefundedFull:
			paid += p.AmountCents
		}
	}
	expected := paid - refunded
	if expected < 0 {
		expected = 0
	}

	if order.PaidCents != expected {
		r.logger.Warn("ledger drift detected",
			"order", order.Number,
			"order_paid_cents", order.PaidCents,
			"ledger_paid_cents", expected,
			"rows", len(rows),
		)
	}
}

// checkHoldAge warns about authorized holds that are about to outlive the
// provider's void window.
func (r *Reconciler) checkHoldAge(ctx context.Context, order *domain.Order) {
	if order.PaymentIntentID == nil {
		return
	}
	payment, err := r.payments.FindByTransactionID(ctx, *order.PaymentIntentID)
	if err != nil {
		r.logger.Error("failed to load active payment", "order", order.Number, "error", err)
		return
	}
	if payment.Status != domain.PaymentAuthorized {
		return
	}

	age := time.Since(payment.CreatedAt)
	if age > gateway.VoidWindow-24*time.Hour {
		r.logger.Warn("authorized hold nearing void window",
			"order", order.Number,
			"transaction_id", payment.TransactionID,
			"age", age,
		)
	}
}
