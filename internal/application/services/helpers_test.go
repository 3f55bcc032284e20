package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func adminActor() domain.Actor {
	return domain.Actor{ID: 1, Role: domain.RoleAdmin}
}

func financeActor() domain.Actor {
	return domain.Actor{ID: 2, Role: domain.RoleFinance}
}

func operatorActor() domain.Actor {
	return domain.Actor{ID: 3, Role: domain.RoleOperator}
}

func customerActor() domain.Actor {
	return domain.Actor{ID: 9, Role: domain.RoleCustomer}
}

func createAwaitingOrder(t *testing.T, uow *MockUnitOfWork, number string, totalCents int64) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(number, "MS-20260101-0001", "skater@example.com", totalCents, "RUB")
	require.NoError(t, err)
	expires := time.Now().Add(15 * time.Minute)
	require.NoError(t, order.BeginCheckout(expires))
	uow.Orders.Put(order)
	return order
}

func createPaidOrderWithPayment(t *testing.T, uow *MockUnitOfWork, number, txnID string, totalCents int64, method domain.PaymentMethod) (*domain.Order, *domain.Payment) {
	t.Helper()
	order := createAwaitingOrder(t, uow, number, totalCents)
	payment, err := domain.NewAuthorizedPayment(order.ID, txnID, totalCents, "RUB", method)
	require.NoError(t, err)
	uow.Payments.Put(payment)
	require.NoError(t, order.MarkPaid(totalCents, txnID, method))
	return order, payment
}

func createPaidOrderWithHold(t *testing.T, uow *MockUnitOfWork, number, txnID string, totalCents, holdCents int64, method domain.PaymentMethod) (*domain.Order, *domain.Payment) {
	t.Helper()
	order := createAwaitingOrder(t, uow, number, totalCents)
	payment, err := domain.NewAuthorizedPayment(order.ID, txnID, holdCents, "RUB", method)
	require.NoError(t, err)
	uow.Payments.Put(payment)
	require.NoError(t, order.MarkPaid(holdCents, txnID, method))
	return order, payment
}

func createConfirmedOrderWithPayment(t *testing.T, uow *MockUnitOfWork, number, txnID string, totalCents int64) (*domain.Order, *domain.Payment) {
	t.Helper()
	order, payment := createPaidOrderWithPayment(t, uow, number, txnID, totalCents, domain.MethodCard)
	require.NoError(t, payment.Confirm())
	return order, payment
}

func claimAndSendLinks(t *testing.T, order *domain.Order, operatorID int64) {
	t.Helper()
	require.NoError(t, order.Claim(operatorID))
	require.NoError(t, order.SendLinks(operatorID, "https://videos.example.com/a", time.Now()))
}
