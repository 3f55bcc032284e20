package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

// WebhookService applies provider notifications to the order and payment
// state. Every method is idempotent: replays of an already applied
// notification succeed without changing anything.
type WebhookService struct {
	uow      application.UnitOfWork
	orders   application.OrderRepository
	payments application.PaymentRepository
	notifier application.Notifier
	logger   *slog.Logger
}

func NewWebhookService(
	uow application.UnitOfWork,
	orders application.OrderRepository,
	payments application.PaymentRepository,
	notifier application.Notifier,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		uow:      uow,
		orders:   orders,
		payments: payments,
		notifier: notifier,
		logger:   logger,
	}
}

// Check validates that the order exists, is payable and the amount matches.
// Nothing is mutated.
func (s *WebhookService) Check(ctx context.Context, n WebhookNotification) error {
	order, err := s.orders.FindByNumber(ctx, n.InvoiceID)
	if err != nil {
		return err
	}

	switch order.Status {
	case domain.StatusAwaitingPayment, domain.StatusCheckoutInitiated:
	default:
		return domain.NewInvalidTransitionError(order.Status, domain.StatusPaid)
	}

	if order.PaymentExpiresAt != nil && time.Now().After(*order.PaymentExpiresAt) {
		return domain.NewInvalidTransitionError(order.Status, domain.StatusPaid)
	}

	if n.AmountCents != order.TotalCents {
		return domain.NewAmountMismatchError(order.TotalCents, n.AmountCents)
	}

	return nil
}

// Pay records a successful authorization. The transaction id is the
// idempotency key: a replay finds the existing ledger row and returns
// success without touching the order again.
func (s *WebhookService) Pay(ctx context.Context, n WebhookNotification) error {
	var applied bool
	var order *domain.Order

	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		applied = false
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			_, err := repos.Payments.FindByTransactionIDForUpdate(ctx, n.TransactionID)
			if err == nil {
				s.logger.Info("pay notification already processed", "transaction_id", n.TransactionID)
				return nil
			}
			if !errors.Is(err, persistence.ErrPaymentNotFound) {
				return err
			}

			o, err := repos.Orders.FindByNumberForUpdate(ctx, n.InvoiceID)
			if err != nil {
				return err
			}
			if o.PaymentExpiresAt != nil && time.Now().After(*o.PaymentExpiresAt) {
				return domain.NewInvalidTransitionError(o.Status, domain.StatusPaid)
			}

			payment, err := domain.NewAuthorizedPayment(o.ID, n.TransactionID, n.AmountCents, n.Currency, n.Method)
			if err != nil {
				return err
			}
			if err := repos.Payments.Create(ctx, payment); err != nil {
				// The unique constraint on transaction_id is the backstop
				// against a concurrent replay racing the locked read.
				if domain.IsErrorCode(err, domain.ErrCodeDuplicateTransaction) {
					s.logger.Info("pay notification raced a duplicate", "transaction_id", n.TransactionID)
					return nil
				}
				return err
			}

			if err := o.MarkPaid(n.AmountCents, n.TransactionID, n.Method); err != nil {
				return err
			}
			if err := repos.Orders.Update(ctx, o); err != nil {
				return err
			}
			if err := repos.Audit.Append(ctx, domain.NewAuditEntry(nil, domain.ActionPaymentAuthorized, "order", o.Number, map[string]any{
				"transaction_id": n.TransactionID,
				"amount_cents":   n.AmountCents,
				"method":         string(n.Method),
			})); err != nil {
				return err
			}

			order = o
			applied = true
			return nil
		})
	})
	if err != nil {
		return err
	}

	if applied {
		s.notifier.Notify(application.NotificationEvent{
			Kind:        application.NotifyPaymentAuthorized,
			OrderNumber: order.Number,
			Email:       order.CustomerEmail,
			AmountCents: n.AmountCents,
		})
		s.logger.Info("payment authorized", "order", order.Number, "transaction_id", n.TransactionID)
	}
	return nil
}

// Fail records a failed payment attempt. The order stays in awaiting_payment
// until the window expires; the customer may retry.
func (s *WebhookService) Fail(ctx context.Context, n WebhookNotification) error {
	return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		payment, err := repos.Payments.FindByTransactionIDForUpdate(ctx, n.TransactionID)
		if err != nil {
			if errors.Is(err, persistence.ErrPaymentNotFound) {
				// Failures of never-authorized attempts only leave a trace in
				// the audit trail.
				return repos.Audit.Append(ctx, domain.NewAuditEntry(nil, domain.ActionPaymentFailed, "order", n.InvoiceID, map[string]any{
					"transaction_id": n.TransactionID,
					"reason":         n.Reason,
				}))
			}
			return err
		}

		if payment.Status != domain.PaymentAuthorized {
			return nil
		}
		if err := payment.Fail(); err != nil {
			return err
		}
		if err := repos.Payments.Update(ctx, payment); err != nil {
			return err
		}
		return repos.Audit.Append(ctx, domain.NewAuditEntry(nil, domain.ActionPaymentFailed, "order", n.InvoiceID, map[string]any{
			"transaction_id": n.TransactionID,
			"reason":         n.Reason,
		}))
	})
}

// Confirm records the provider-side capture of an authorized payment. A
// confirm for an already confirmed payment is a no-op success.
func (s *WebhookService) Confirm(ctx context.Context, n WebhookNotification) error {
	return withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			payment, err := repos.Payments.FindByTransactionIDForUpdate(ctx, n.TransactionID)
			if err != nil {
				return err
			}

			if payment.Status == domain.PaymentConfirmed {
				s.logger.Info("confirm notification already processed", "transaction_id", n.TransactionID)
				return nil
			}
			if err := payment.Confirm(); err != nil {
				return err
			}
			if err := repos.Payments.Update(ctx, payment); err != nil {
				return err
			}
			return repos.Audit.Append(ctx, domain.NewAuditEntry(nil, domain.ActionPaymentConfirmed, "payment", n.TransactionID, map[string]any{
				"amount_cents": payment.AmountCents,
			}))
		})
	})
}

// Refund records a refund initiated on the provider side, for example from
// the provider dashboard.
func (s *WebhookService) Refund(ctx context.Context, n WebhookNotification) error {
	var order *domain.Order

	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			payment, err := repos.Payments.FindByTransactionIDForUpdate(ctx, n.TransactionID)
			if err != nil {
				return err
			}
			o, err := repos.Orders.FindByID(ctx, payment.OrderID)
			if err != nil {
				return err
			}

			available, err := availableForRefund(ctx, repos.Payments, payment)
			if err != nil {
				return err
			}
			if n.AmountCents > available {
				return domain.NewAmountExceedsAvailableError(n.AmountCents, available)
			}
			full := n.AmountCents == available

			if err := applyRefund(ctx, repos, o, payment, n.AmountCents, full, nil, "provider-initiated refund"); err != nil {
				return err
			}

			order = o
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(application.NotificationEvent{
		Kind:        application.NotifyRefundProcessed,
		OrderNumber: order.Number,
		Email:       order.CustomerEmail,
		AmountCents: n.AmountCents,
	})
	return nil
}

// Cancel records a provider-side void of an authorization.
func (s *WebhookService) Cancel(ctx context.Context, n WebhookNotification) error {
	return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		payment, err := repos.Payments.FindByTransactionIDForUpdate(ctx, n.TransactionID)
		if err != nil {
			return err
		}
		if payment.Status == domain.PaymentVoided {
			return nil
		}
		if err := payment.Void(); err != nil {
			return err
		}
		if err := repos.Payments.Update(ctx, payment); err != nil {
			return err
		}
		return repos.Audit.Append(ctx, domain.NewAuditEntry(nil, domain.ActionPaymentVoided, "payment", n.TransactionID, nil))
	})
}

// availableForRefund computes how much of one confirmed payment is still
// refundable: its amount minus the refund rows pointing at it.
func availableForRefund(ctx context.Context, payments application.PaymentRepository, payment *domain.Payment) (int64, error) {
	if payment.Status == domain.PaymentAuthorized {
		return 0, domain.NewRefundRequiresVoidError(payment.TransactionID)
	}
	if payment.Status != domain.PaymentConfirmed && payment.Status != domain.PaymentRefundedPartial {
		return 0, domain.NewInvalidPaymentTransitionError(payment.Status, domain.PaymentRefundedPartial)
	}

	rows, err := payments.FindByOrderID(ctx, payment.OrderID)
	if err != nil {
		return 0, err
	}
	available := payment.AmountCents
	for _, row := range rows {
		if row.ParentID != nil && *row.ParentID == payment.ID {
			available -= row.AmountCents
		}
	}
	if available < 0 {
		available = 0
	}
	return available, nil
}

// applyRefund writes the refund movement: a child ledger row, the parent
// status, and the order projection, all inside the caller's transaction.
func applyRefund(
	ctx context.Context,
	repos application.Repositories,
	order *domain.Order,
	payment *domain.Payment,
	amountCents int64,
	full bool,
	actorID *int64,
	reason string,
) error {
	refundTxnID := fmt.Sprintf("REFUND_%s_%d", order.Number, time.Now().UnixNano())
	refund, err := domain.NewRefundPayment(payment, refundTxnID, amountCents, full)
	if err != nil {
		return err
	}
	if err := repos.Payments.Create(ctx, refund); err != nil {
		return err
	}

	if full {
		if err := payment.MarkRefundedFull(); err != nil {
			return err
		}
	} else {
		if err := payment.MarkRefundedPartial(); err != nil {
			return err
		}
	}
	if err := repos.Payments.Update(ctx, payment); err != nil {
		return err
	}

	if err := order.ApplyRefund(amountCents, full); err != nil {
		return err
	}
	if err := repos.Orders.Update(ctx, order); err != nil {
		return err
	}

	return repos.Audit.Append(ctx, domain.NewAuditEntry(actorID, domain.ActionRefundProcessed, "order", order.Number, map[string]any{
		"transaction_id": payment.TransactionID,
		"refund_txn_id":  refundTxnID,
		"amount_cents":   amountCents,
		"full":           full,
		"reason":         reason,
	}))
}
