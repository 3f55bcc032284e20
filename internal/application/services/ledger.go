package services

import (
	"context"
	"log/slog"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
)

// PaymentTotals is the reconciliation view over one order's ledger.
// CapturedCents is the gross amount ever settled; it does not shrink when
// refunds are issued. Available is the net still refundable.
type PaymentTotals struct {
	CapturedCents  int64
	RefundedCents  int64
	AvailableCents int64
}

// LedgerService exposes read-only views over the payment ledger for the
// finance screens.
type LedgerService struct {
	orders   application.OrderRepository
	payments application.PaymentRepository
	logger   *slog.Logger
}

func NewLedgerService(
	orders application.OrderRepository,
	payments application.PaymentRepository,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		orders:   orders,
		payments: payments,
		logger:   logger,
	}
}

// Totals derives the order's money position from the ledger rows alone.
// Captured counts settled charge rows gross, refunded counts refund rows;
// the difference is what can still be returned to the customer.
func (s *LedgerService) Totals(ctx context.Context, actor domain.Actor, orderNumber string) (*PaymentTotals, error) {
	if !actor.CanManageFinances() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "view payment totals"))
	}

	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	rows, err := s.payments.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	totals := &PaymentTotals{}
	for _, p := range rows {
		if p.IsRefund() {
			totals.RefundedCents += p.AmountCents
			continue
		}
		switch p.Status {
		case domain.PaymentConfirmed, domain.PaymentRefundedPartial, domain.PaymentRefundedFull:
			totals.CapturedCents += p.AmountCents
		}
	}
	totals.AvailableCents = totals.CapturedCents - totals.RefundedCents
	if totals.AvailableCents < 0 {
		totals.AvailableCents = 0
	}
	return totals, nil
}

// History returns every ledger row for the order, oldest first.
func (s *LedgerService) History(ctx context.Context, actor domain.Actor, orderNumber string) ([]*domain.Payment, error) {
	if !actor.CanManageFinances() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "view payment history"))
	}

	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return s.payments.FindByOrderID(ctx, order.ID)
}

// ListOrders returns orders matching the filter for the staff views. Plain
// operators only see the shared queue and their own orders through the
// filter defaults applied by the transport layer.
func (s *LedgerService) ListOrders(ctx context.Context, actor domain.Actor, filter application.OrderFilter) ([]*domain.Order, error) {
	if !actor.CanOperate() && !actor.CanManageFinances() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "list orders"))
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.orders.List(ctx, filter)
}

// GetOrder returns one order by number for staff or for the customer-facing
// status page.
func (s *LedgerService) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orders.FindByNumber(ctx, orderNumber)
}
