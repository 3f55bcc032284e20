package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/gateway"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

// FinanceService performs the money-moving operations: capturing authorized
// payments, attesting receipts and issuing refunds. Every method requires
// the finance role.
type FinanceService struct {
	uow      application.UnitOfWork
	orders   application.OrderRepository
	payments application.PaymentRepository
	gateway  application.GatewayClient
	notifier application.Notifier
	logger   *slog.Logger
}

func NewFinanceService(
	uow application.UnitOfWork,
	orders application.OrderRepository,
	payments application.PaymentRepository,
	gatewayClient application.GatewayClient,
	notifier application.Notifier,
	logger *slog.Logger,
) *FinanceService {
	return &FinanceService{
		uow:      uow,
		orders:   orders,
		payments: payments,
		gateway:  gatewayClient,
		notifier: notifier,
		logger:   logger,
	}
}

// Capture settles the order's payment. For an authorized card payment it
// confirms the hold at the provider for the requested amount (zero means the
// full hold) and completes the order. For a payment the provider already
// confirmed, a repeated capture degrades to a receipt attestation so the
// button stays safe to press twice.
func (s *FinanceService) Capture(ctx context.Context, actor domain.Actor, cmd CaptureCommand) (*domain.Order, error) {
	if !actor.CanManageFinances() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "capture payments"))
	}
	if cmd.AmountCents < 0 {
		return nil, application.NewInvalidInputError(domain.NewInvalidAmountError(cmd.AmountCents))
	}

	var order *domain.Order
	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, cmd.OrderNumber)
			if err != nil {
				return err
			}
			payment, err := s.activePayment(ctx, repos.Payments, o)
			if err != nil {
				return err
			}

			switch payment.Status {
			case domain.PaymentConfirmed:
				if err := s.attestReceipt(ctx, repos, actor, o, payment); err != nil {
					return err
				}
			case domain.PaymentAuthorized:
				if err := s.captureAuthorized(ctx, repos, actor, o, payment, cmd.AmountCents); err != nil {
					return err
				}
			default:
				return application.NewConflictError(domain.NewInvalidPaymentTransitionError(payment.Status, domain.PaymentConfirmed))
			}

			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment captured", "order", order.Number, "actor_id", actor.ID)
	return order, nil
}

// captureAuthorized confirms the hold at the provider and settles the order,
// all within the caller's transaction. Partial captures release the rest of
// the hold; the ledger row is reconciled down to the captured amount.
func (s *FinanceService) captureAuthorized(
	ctx context.Context,
	repos application.Repositories,
	actor domain.Actor,
	order *domain.Order,
	payment *domain.Payment,
	requestedCents int64,
) error {
	hold := payment.AmountCents
	captured := requestedCents
	if captured == 0 {
		captured = hold
	}
	if captured > hold {
		return application.NewInvalidInputError(domain.NewAmountExceedsAvailableError(captured, hold))
	}
	if captured > order.TotalCents {
		return application.NewInvalidInputError(domain.NewAmountExceedsAvailableError(captured, order.TotalCents))
	}

	// SBP transfers settle instantly on the provider side; only card holds
	// need the explicit confirm call.
	if payment.Method == domain.MethodCard {
		result, err := s.gateway.Confirm(ctx, payment.TransactionID, captured)
		if err != nil {
			return application.NewGatewayError(err)
		}
		if !result.Success {
			return application.NewGatewayRejectedError(result.Message)
		}
	}

	if err := payment.Confirm(); err != nil {
		return err
	}
	payment.AmountCents = captured
	if err := repos.Payments.Update(ctx, payment); err != nil {
		return err
	}

	// Settling the entire hold is a full capture even when the hold was
	// authorized for less than the order total; the remainder was never held.
	if captured == hold {
		if err := order.CompleteFull(); err != nil {
			return err
		}
	} else {
		if err := order.CompletePartial(captured); err != nil {
			return err
		}
	}
	if err := repos.Orders.Update(ctx, order); err != nil {
		return err
	}

	return repos.Audit.Append(ctx, domain.NewAuditEntry(&actor.ID, domain.ActionPaymentCaptured, "order", order.Number, map[string]any{
		"transaction_id": payment.TransactionID,
		"amount_cents":   captured,
	}))
}

// attestReceipt records that the fiscal receipt for an already confirmed
// payment was issued, and settles the order if it is still open.
func (s *FinanceService) attestReceipt(
	ctx context.Context,
	repos application.Repositories,
	actor domain.Actor,
	order *domain.Order,
	payment *domain.Payment,
) error {
	if payment.ReceiptConfirmed {
		return nil
	}
	if err := payment.ConfirmReceipt(); err != nil {
		return err
	}
	if err := repos.Payments.Update(ctx, payment); err != nil {
		return err
	}

	switch order.Status {
	case domain.StatusReady, domain.StatusLinksSent:
		if err := order.CompleteFull(); err != nil {
			return err
		}
		if err := repos.Orders.Update(ctx, order); err != nil {
			return err
		}
	}

	return repos.Audit.Append(ctx, domain.NewAuditEntry(&actor.ID, domain.ActionReceiptConfirmed, "order", order.Number, map[string]any{
		"transaction_id": payment.TransactionID,
	}))
}

// Refund returns money to the customer. The provider call happens before any
// local mutation: if the provider rejects, the ledger stays untouched.
func (s *FinanceService) Refund(ctx context.Context, actor domain.Actor, cmd RefundCommand) (*domain.Order, error) {
	if !actor.CanManageFinances() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "issue refunds"))
	}
	if cmd.AmountCents <= 0 {
		return nil, application.NewInvalidInputError(domain.NewInvalidAmountError(cmd.AmountCents))
	}

	var order *domain.Order
	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, cmd.OrderNumber)
			if err != nil {
				return err
			}

			var payment *domain.Payment
			if cmd.TransactionID != "" {
				payment, err = repos.Payments.FindByTransactionIDForUpdate(ctx, cmd.TransactionID)
			} else {
				payment, err = s.activePayment(ctx, repos.Payments, o)
			}
			if err != nil {
				return err
			}

			available, err := availableForRefund(ctx, repos.Payments, payment)
			if err != nil {
				return application.NewConflictError(err)
			}
			if cmd.AmountCents > available {
				return application.NewInvalidInputError(domain.NewAmountExceedsAvailableError(cmd.AmountCents, available))
			}
			full := cmd.AmountCents == available

			result, err := s.gateway.Refund(ctx, payment.TransactionID, cmd.AmountCents)
			if err != nil {
				return application.NewGatewayError(err)
			}
			if !result.Success {
				return application.NewGatewayRejectedError(result.Message)
			}

			if err := applyRefund(ctx, repos, o, payment, cmd.AmountCents, full, &actor.ID, cmd.Reason); err != nil {
				return err
			}

			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(application.NotificationEvent{
		Kind:        application.NotifyRefundProcessed,
		OrderNumber: order.Number,
		Email:       order.CustomerEmail,
		AmountCents: cmd.AmountCents,
	})
	s.logger.Info("refund issued", "order", order.Number, "amount_cents", cmd.AmountCents, "actor_id", actor.ID)
	return order, nil
}

// Void releases an authorized hold without settling it. Past the provider's
// void window the hold can only be refunded after capture.
func (s *FinanceService) Void(ctx context.Context, actor domain.Actor, orderNumber string) (*domain.Order, error) {
	if !actor.CanManageFinances() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "void payments"))
	}

	var order *domain.Order
	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, orderNumber)
			if err != nil {
				return err
			}
			payment, err := s.activePayment(ctx, repos.Payments, o)
			if err != nil {
				return err
			}
			if payment.Status != domain.PaymentAuthorized {
				return application.NewConflictError(domain.NewInvalidPaymentTransitionError(payment.Status, domain.PaymentVoided))
			}
			if time.Since(payment.CreatedAt) > gateway.VoidWindow {
				return application.NewConflictError(domain.NewVoidWindowExpiredError(payment.TransactionID))
			}

			result, err := s.gateway.Void(ctx, payment.TransactionID)
			if err != nil {
				return application.NewGatewayError(err)
			}
			if !result.Success {
				return application.NewGatewayRejectedError(result.Message)
			}

			if err := payment.Void(); err != nil {
				return err
			}
			if err := repos.Payments.Update(ctx, payment); err != nil {
				return err
			}
			if err := repos.Audit.Append(ctx, domain.NewAuditEntry(&actor.ID, domain.ActionPaymentVoided, "order", o.Number, map[string]any{
				"transaction_id": payment.TransactionID,
			})); err != nil {
				return err
			}

			order = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment voided", "order", order.Number, "actor_id", actor.ID)
	return order, nil
}

// activePayment resolves the order's current payment through the intent id
// recorded at authorization time.
func (s *FinanceService) activePayment(ctx context.Context, payments application.PaymentRepository, order *domain.Order) (*domain.Payment, error) {
	if order.PaymentIntentID == nil {
		return nil, application.NewNotFoundError("payment for order")
	}
	payment, err := payments.FindByTransactionIDForUpdate(ctx, *order.PaymentIntentID)
	if err != nil {
		if errors.Is(err, persistence.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError("payment for order")
		}
		return nil, err
	}
	return payment, nil
}
