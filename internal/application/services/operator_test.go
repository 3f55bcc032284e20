package services

import (
	"context"
	"testing"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOperatorService(uow *MockUnitOfWork, notifier *MockNotifier) *OperatorService {
	return NewOperatorService(uow, uow.Orders, notifier, testLogger())
}

func TestOperatorService_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("claims a paid order", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)

		got, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessing, got.Status)
		require.NotNil(t, got.OperatorID)
		assert.Equal(t, operatorActor().ID, *got.OperatorID)
		assert.Contains(t, uow.Audit.Actions(), domain.ActionOrderClaimed)
	})

	t.Run("second claim loses", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)

		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)

		other := domain.Actor{ID: 7, Role: domain.RoleOperator}
		_, err = svc.Claim(ctx, other, "MS100")
		require.Error(t, err)
		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeConflict, svcErr.Code)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeOrderAlreadyClaimed))
	})

	t.Run("unpaid order cannot be claimed", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createAwaitingOrder(t, uow, "MS100", 150000)

		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.Error(t, err)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
	})

	t.Run("customer role is forbidden", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})

		_, err := svc.Claim(ctx, customerActor(), "MS100")
		require.Error(t, err)
		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeForbidden, svcErr.Code)
	})
}

func TestOperatorService_SendLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("sends links and notifies the customer", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		notifier := &MockNotifier{}
		svc := newOperatorService(uow, notifier)
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)
		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)

		got, err := svc.SendLinks(ctx, operatorActor(), SendLinksCommand{OrderNumber: "MS100", Links: "https://videos.example.com/a"})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusLinksSent, got.Status)
		require.NotNil(t, got.VideoLinks)
		assert.NotNil(t, got.ProcessedAt)
		require.Len(t, notifier.Events, 1)
		assert.Equal(t, application.NotifyLinksSent, notifier.Events[0].Kind)
	})

	t.Run("another operator's order is off limits", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)
		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)

		other := domain.Actor{ID: 7, Role: domain.RoleOperator}
		_, err = svc.SendLinks(ctx, other, SendLinksCommand{OrderNumber: "MS100", Links: "x"})
		require.Error(t, err)
		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeForbidden, svcErr.Code)
	})

	t.Run("admin may send on any order", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)
		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)

		got, err := svc.SendLinks(ctx, adminActor(), SendLinksCommand{OrderNumber: "MS100", Links: "https://videos.example.com/a"})
		require.NoError(t, err)
		// The original claim survives an admin send.
		assert.Equal(t, operatorActor().ID, *got.OperatorID)
	})

	t.Run("refund flag blocks sending", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)
		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)
		_, err = svc.FlagRefund(ctx, operatorActor(), "MS100", "wrong skater filmed")
		require.NoError(t, err)

		_, err = svc.SendLinks(ctx, operatorActor(), SendLinksCommand{OrderNumber: "MS100", Links: "x"})
		require.Error(t, err)
	})

	t.Run("empty links are rejected", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})

		_, err := svc.SendLinks(ctx, operatorActor(), SendLinksCommand{OrderNumber: "MS100"})
		require.Error(t, err)
		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeInvalidInput, svcErr.Code)
	})
}

func TestOperatorService_RefundFlag(t *testing.T) {
	ctx := context.Background()

	t.Run("flag and unflag restore the derived status", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)
		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)

		flagged, err := svc.FlagRefund(ctx, operatorActor(), "MS100", "duplicate purchase")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRefundRequired, flagged.Status)
		require.NotNil(t, flagged.RefundReason)

		unflagged, err := svc.UnflagRefund(ctx, operatorActor(), "MS100")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessing, unflagged.Status)
		assert.Nil(t, unflagged.RefundReason)
	})

	t.Run("unflag after links returns to links_sent", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)
		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)
		_, err = svc.SendLinks(ctx, operatorActor(), SendLinksCommand{OrderNumber: "MS100", Links: "x"})
		require.NoError(t, err)
		_, err = svc.FlagRefund(ctx, operatorActor(), "MS100", "late delivery")
		require.NoError(t, err)

		got, err := svc.UnflagRefund(ctx, operatorActor(), "MS100")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusLinksSent, got.Status)
	})

	t.Run("flag without reason is rejected", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})

		_, err := svc.FlagRefund(ctx, operatorActor(), "MS100", "")
		require.Error(t, err)
	})
}

func TestOperatorService_Parking(t *testing.T) {
	ctx := context.Background()

	t.Run("request info and resume", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)
		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)

		parked, err := svc.RequestInfo(ctx, operatorActor(), "MS100")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAwaitingInfo, parked.Status)

		resumed, err := svc.ResumeProcessing(ctx, operatorActor(), "MS100")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessing, resumed.Status)
	})

	t.Run("mark ready", func(t *testing.T) {
		uow := NewMockUnitOfWork()
		svc := newOperatorService(uow, &MockNotifier{})
		createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)
		_, err := svc.Claim(ctx, operatorActor(), "MS100")
		require.NoError(t, err)

		got, err := svc.MarkReady(ctx, operatorActor(), "MS100")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReady, got.Status)
	})
}

func TestOperatorService_UpdateComments(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	svc := newOperatorService(uow, &MockNotifier{})
	createPaidOrderWithPayment(t, uow, "MS100", "txn-1", 150000, domain.MethodCard)

	got, err := svc.UpdateComments(ctx, operatorActor(), "MS100", "short program only")
	require.NoError(t, err)
	require.NotNil(t, got.Comments)
	assert.Equal(t, "short program only", *got.Comments)
}
