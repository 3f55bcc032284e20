package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// InsertAwaitingOrder persists an order that is waiting for payment.
func InsertAwaitingOrder(t *testing.T, ctx context.Context, orders application.OrderRepository, totalCents int64) *domain.Order {
	t.Helper()

	number := fmt.Sprintf("MS%d", uuid.New().ID())
	order, err := domain.NewOrder(number, "MS-20260101-0001", "skater@example.com", totalCents, "RUB")
	require.NoError(t, err)
	require.NoError(t, order.BeginCheckout(time.Now().Add(15*time.Minute)))
	require.NoError(t, orders.Create(ctx, order))

	return order
}

// InsertPaidOrder persists an order with an authorized payment against it,
// the state a webhook Pay leaves behind.
func InsertPaidOrder(
	t *testing.T,
	ctx context.Context,
	orders application.OrderRepository,
	payments application.PaymentRepository,
	totalCents int64,
) (*domain.Order, *domain.Payment) {
	t.Helper()

	order := InsertAwaitingOrder(t, ctx, orders, totalCents)

	transactionID := fmt.Sprintf("%d", uuid.New().ID())
	payment, err := domain.NewAuthorizedPayment(order.ID, transactionID, totalCents, "RUB", domain.MethodCard)
	require.NoError(t, err)
	require.NoError(t, payments.Create(ctx, payment))

	require.NoError(t, order.MarkPaid(totalCents, transactionID, domain.MethodCard))
	require.NoError(t, orders.Update(ctx, order))

	return order, payment
}
