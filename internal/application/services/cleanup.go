package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

// CleanupService expires stale unpaid orders and trims the audit trail. Both
// operations run from background workers in batches.
type CleanupService struct {
	uow           application.UnitOfWork
	orders        application.OrderRepository
	audit         application.AuditRepository
	gateway       application.GatewayClient
	notifier      application.Notifier
	logger        *slog.Logger
	legacyTimeout time.Duration
	batchSize     int
}

func NewCleanupService(
	uow application.UnitOfWork,
	orders application.OrderRepository,
	audit application.AuditRepository,
	gatewayClient application.GatewayClient,
	notifier application.Notifier,
	logger *slog.Logger,
	legacyTimeout time.Duration,
	batchSize int,
) *CleanupService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &CleanupService{
		uow:           uow,
		orders:        orders,
		audit:         audit,
		gateway:       gatewayClient,
		notifier:      notifier,
		logger:        logger,
		legacyTimeout: legacyTimeout,
		batchSize:     batchSize,
	}
}

// ExpireOrders cancels every order whose payment window has lapsed. Each
// order is handled in its own transaction with a fresh deadline check under
// the row lock, so an order paid between the scan and the lock survives.
// One failing order does not stop the batch.
func (s *CleanupService) ExpireOrders(ctx context.Context) (int, error) {
	now := time.Now()
	candidates, err := s.orders.FindExpired(ctx, now, s.legacyTimeout, s.batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		if err := s.expireOne(ctx, candidate.Number); err != nil {
			s.logger.Error("failed to expire order", "order", candidate.Number, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("expired stale orders", "count", expired, "scanned", len(candidates))
	}
	return expired, nil
}

func (s *CleanupService) expireOne(ctx context.Context, orderNumber string) error {
	var order *domain.Order
	var applied bool

	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		applied = false
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, orderNumber)
			if err != nil {
				return err
			}
			// A payment may have landed between the scan and this lock.
			if !o.PaymentExpired(time.Now(), s.legacyTimeout) {
				return nil
			}

			if o.PaymentIntentID != nil {
				if err := s.voidStaleHold(ctx, repos.Payments, *o.PaymentIntentID); err != nil {
					s.logger.Warn("stale hold void failed, continuing",
						"order", o.Number,
						"error", err,
					)
				}
			}

			if err := o.CancelExpired(); err != nil {
				return err
			}
			if err := repos.Orders.Update(ctx, o); err != nil {
				return err
			}
			if err := repos.Audit.Append(ctx, domain.NewAuditEntry(nil, domain.ActionOrderAutoCancelled, "order", o.Number, map[string]any{
				"reason": domain.CancelReasonTimeout,
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
			Kind:        application.NotifyOrderCancelled,
			OrderNumber: order.Number,
			Email:       order.CustomerEmail,
			Details:     domain.CancelReasonTimeout,
		})
	}
	return nil
}

func (s *CleanupService) voidStaleHold(ctx context.Context, payments application.PaymentRepository, transactionID string) error {
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
	if result, err := s.gateway.Void(ctx, payment.TransactionID); err != nil {
		return err
	} else if !result.Success {
		return errors.New(result.Message)
	}
	if err := payment.Void(); err != nil {
		return err
	}
	return payments.Update(ctx, payment)
}

// PurgeAudit deletes audit rows older than the cutoff in fixed-size batches
// until none remain, keeping each delete short enough to avoid long locks.
func (s *CleanupService) PurgeAudit(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	var total int64

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		deleted, err := s.audit.PurgeOlderThan(ctx, cutoff, s.batchSize)
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted == 0 {
			break
		}
	}

	if total > 0 {
		s.logger.Info("purged audit rows", "count", total, "cutoff", cutoff)
	}
	return total, nil
}
