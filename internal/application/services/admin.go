package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/settings"
)

// AdminService handles the operations reserved for administrators: manual
// cancellation and runtime settings.
type AdminService struct {
	uow      application.UnitOfWork
	orders   application.OrderRepository
	gateway  application.GatewayClient
	settings *settings.Cache
	notifier application.Notifier
	logger   *slog.Logger
}

func NewAdminService(
	uow application.UnitOfWork,
	orders application.OrderRepository,
	gatewayClient application.GatewayClient,
	settingsCache *settings.Cache,
	notifier application.Notifier,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		uow:      uow,
		orders:   orders,
		gateway:  gatewayClient,
		settings: settingsCache,
		notifier: notifier,
		logger:   logger,
	}
}

// CancelManual cancels any non-terminal order. If a live authorization
// exists, the hold is released at the provider first; a failed release is
// logged and the local cancellation proceeds anyway, since the hold expires
// on its own and blocking the cancel would strand the order.
func (s *AdminService) CancelManual(ctx context.Context, actor domain.Actor, orderNumber, reason string) (*domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "cancel orders"))
	}

	var order *domain.Order
	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, orderNumber)
			if err != nil {
				return err
			}

			if o.PaymentIntentID != nil {
				if err := s.releaseHold(ctx, repos.Payments, *o.PaymentIntentID); err != nil {
					s.logger.Warn("hold release failed during manual cancel, continuing",
						"order", o.Number,
						"transaction_id", *o.PaymentIntentID,
						"error", err,
					)
				}
			}

			if err := o.CancelManual(reason); err != nil {
				return application.NewConflictError(err)
			}
			if err := repos.Orders.Update(ctx, o); err != nil {
				return err
			}
			if err := repos.Audit.Append(ctx, domain.NewAuditEntry(&actor.ID, domain.ActionOrderCancelledManual, "order", o.Number, map[string]any{
				"reason": reason,
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

	s.notifier.Notify(application.NotificationEvent{
		Kind:        application.NotifyOrderCancelled,
		OrderNumber: order.Number,
		Email:       order.CustomerEmail,
		Details:     reason,
	})
	s.logger.Info("order cancelled manually", "order", order.Number, "actor_id", actor.ID)
	return order, nil
}

// releaseHold voids an authorized payment at the provider and in the ledger.
// Payments in any other state are left alone.
func (s *AdminService) releaseHold(ctx context.Context, payments application.PaymentRepository, transactionID string) error {
	payment, err := payments.FindByTransactionIDForUpdate(ctx, transactionID)
	if err != nil {
		if errors.Is(err, persistence.ErrPaymentNotFound) {
			return nil
		}
		return err
	}
	if payment.Status != domain.PaymentAuthorized {
		return nil
	}

	result, err := s.gateway.Void(ctx, payment.TransactionID)
	if err != nil {
		return err
	}
	if !result.Success {
		return errors.New(result.Message)
	}

	if err := payment.Void(); err != nil {
		return err
	}
	return payments.Update(ctx, payment)
}

// SetPaymentTTL updates the checkout payment window, in minutes.
func (s *AdminService) SetPaymentTTL(ctx context.Context, actor domain.Actor, minutes int) error {
	if !actor.IsAdmin() {
		return application.NewForbiddenError(domain.NewForbiddenError(actor.Role, "change settings"))
	}
	if minutes <= 0 {
		return application.NewInvalidInputError(domain.NewInvalidAmountError(int64(minutes)))
	}
	if err := s.settings.Set(ctx, settings.KeyPaymentTTLMinutes, strconv.Itoa(minutes)); err != nil {
		return err
	}
	s.logger.Info("payment ttl updated", "minutes", minutes, "actor_id", actor.ID)
	return nil
}
