package services

import (
	"context"
	"testing"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsRepo struct {
	values map[string]string
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", persistence.ErrSettingNotFound
}

func (f *fakeSettingsRepo) Set(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func newAdminService(uow *MockUnitOfWork, gw *MockGatewayClient, notifier *MockNotifier) *AdminService {
	repo := &fakeSettingsRepo{values: map[string]string{}}
	cache := settings.NewCache(repo, testLogger())
	return NewAdminService(uow, uow.Orders, gw, cache, notifier, testLogger())
}

func TestAdminService_CancelManual(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels order and releases the hold", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		gw := &MockGatewayClient{}
		notifier := &MockNotifier{}
		svc := newAdminService(uow, gw, notifier)
		_, payment := createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)

		got, err := svc.CancelManual(ctx, adminActor(), "MS100", "customer request")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusCancelledManual, got.Status)
		require.NotNil(t, got.CancelReason)
		assert.Equal(t, "customer request", *got.CancelReason)
		assert.Equal(t, domain.PaymentVoided, payment.Status)
		assert.Equal(t, 1, gw.VoidCalls)
		assert.Contains(t, uow.Audit.Actions(), domain.ActionOrderCancelledManual)
		require.Len(t, notifier.Events, 1)
		assert.Equal(t, application.NotifyOrderCancelled, notifier.Events[0].Kind)
	})

	t.Run("cancel proceeds when the hold release fails", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		gw := &MockGatewayClient{
			VoidFn: func(ctx context.Context, transactionID string) (*application.GatewayResult, error) {
				return &application.GatewayResult{Success: false, Message: "Transaction not found"}, nil
			},
		}
		svc := newAdminService(uow, gw, &MockNotifier{})
		_, payment := createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)

		got, err := svc.CancelManual(ctx, adminActor(), "MS100", "fraud")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelledManual, got.Status)
		assert.Equal(t, domain.PaymentAuthorized, payment.Status)
	})

	t.Run("confirmed payment is left alone", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		gw := &MockGatewayClient{}
		svc := newAdminService(uow, gw, &MockNotifier{})
		_, payment := createConfirmedOrderWithPayment(t, uow, "MS100", "txn-1", 150000)

		_, err := svc.CancelManual(ctx, adminActor(), "MS100", "duplicate")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentConfirmed, payment.Status)
		assert.Equal(t, 0, gw.VoidCalls)
	})

	t.Run("terminal order cannot be cancelled", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newAdminService(uow, &MockGatewayClient{}, &MockNotifier{})
		order := createAwaitingOrder(t, uow, "MS100", 150000)
		require.NoError(t, order.CancelExpired())

		_, err := svc.CancelManual(ctx, adminActor(), "MS100", "again")
		require.Error(t, err)
		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeConflict, svcErr.Code)
	})

	t.Run("finance role is forbidden", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newAdminService(uow, &MockGatewayClient{}, &MockNotifier{})

		_, err := svc.CancelManual(ctx, financeActor(), "MS100", "x")
		require.Error(t, err)
		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeForbidden, svcErr.Code)
	})
}

func TestAdminService_SetPaymentTTL(t *testing.T) {
	ctx := context.Background()

	t.Run("admin updates the window", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newAdminService(uow, &MockGatewayClient{}, &MockNotifier{})

		require.NoError(t, svc.SetPaymentTTL(ctx, adminActor(), 30))
	})

	t.Run("zero minutes is rejected", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newAdminService(uow, &MockGatewayClient{}, &MockNotifier{})

		err := svc.SetPaymentTTL(ctx, adminActor(), 0)
		require.Error(t, err)
	})

	t.Run("operator is forbidden", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newAdminService(uow, &MockGatewayClient{}, &MockNotifier{})

		err := svc.SetPaymentTTL(ctx, operatorActor(), 30)
		require.Error(t, err)
	})
}
