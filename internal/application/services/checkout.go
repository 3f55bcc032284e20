package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/settings"
	"github.com/google/uuid"
)

const defaultPaymentTTLMinutes = 15

// CheckoutService creates storefront orders and arms the payment window.
type CheckoutService struct {
	uow      application.UnitOfWork
	orders   application.OrderRepository
	gateway  application.GatewayClient
	settings *settings.Cache
	logger   *slog.Logger
}

func NewCheckoutService(
	uow application.UnitOfWork,
	orders application.OrderRepository,
	gateway application.GatewayClient,
	settingsCache *settings.Cache,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		uow:      uow,
		orders:   orders,
		gateway:  gateway,
		settings: settingsCache,
		logger:   logger,
	}
}

// CreateOrder creates a draft order with generated numbers.
func (s *CheckoutService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if !strings.Contains(cmd.CustomerEmail, "@") {
		return nil, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("valid customer email"))
	}
	currency := cmd.Currency
	if currency == "" {
		currency = "RUB"
	}

	now := time.Now()
	number := fmt.Sprintf("MS%d", now.UnixMilli())
	displayNumber := fmt.Sprintf("MS-%s-%04d", now.Format("20060102"), uuid.New().ID()%10000)

	order, err := domain.NewOrder(number, displayNumber, cmd.CustomerEmail, cmd.TotalCents, currency)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}
	if len(cmd.VideoItems) > 0 {
		items := strings.Join(cmd.VideoItems, "\n")
		order.Comments = &items
	}

	err = s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		return repos.Audit.Append(ctx, domain.NewAuditEntry(nil, domain.ActionOrderCreated, "order", order.Number, map[string]any{
			"total_cents": order.TotalCents,
			"email":       order.CustomerEmail,
		}))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created", "order", order.Number, "total_cents", order.TotalCents)
	return order, nil
}

// BeginCheckout moves the order into awaiting_payment and returns the
// payment widget payload. The payment deadline comes from the runtime
// settings, defaulting to fifteen minutes.
func (s *CheckoutService) BeginCheckout(ctx context.Context, orderNumber string) (*application.WidgetData, error) {
	ttl := time.Duration(s.settings.GetInt(ctx, settings.KeyPaymentTTLMinutes, defaultPaymentTTLMinutes)) * time.Minute

	var order *domain.Order
	err := withLockRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.uow.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
			o, err := repos.Orders.FindByNumberForUpdate(ctx, orderNumber)
			if err != nil {
				return err
			}
			if err := o.BeginCheckout(time.Now().Add(ttl)); err != nil {
				return application.NewConflictError(err)
			}
			if err := repos.Orders.Update(ctx, o); err != nil {
				return err
			}
			if err := repos.Audit.Append(ctx, domain.NewAuditEntry(nil, domain.ActionCheckoutInitiated, "order", o.Number, map[string]any{
				"expires_at": o.PaymentExpiresAt,
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

	widget, err := s.gateway.WidgetData(order)
	if err != nil {
		return nil, application.NewGatewayError(err)
	}

	s.logger.Info("checkout initiated", "order", order.Number, "expires_at", order.PaymentExpiresAt)
	return widget, nil
}
