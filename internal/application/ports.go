package application

import (
	"context"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
)

// OrderFilter narrows order listings for the staff views.
type OrderFilter struct {
	Statuses   []domain.OrderStatus
	OperatorID *int64
	Limit      int
	Offset     int
}

// OrderRepository is the persistence port for orders. The ForUpdate variants
// are only meaningful inside a transaction opened by the UnitOfWork.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	FindByNumberForUpdate(ctx context.Context, number string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	FindExpired(ctx context.Context, now time.Time, legacyTimeout time.Duration, limit int) ([]*domain.Order, error)
}

// PaymentRepository is the persistence port for the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	FindByTransactionIDForUpdate(ctx context.Context, transactionID string) (*domain.Payment, error)
	FindByOrderID(ctx context.Context, orderID int64) ([]*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
}

// AuditRepository appends to and purges the append-only audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

// SettingsRepository reads and writes runtime settings rows.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Repositories bundles the transaction-bound repository instances handed to a
// UnitOfWork callback.
type Repositories struct {
	Orders   OrderRepository
	Payments PaymentRepository
	Audit    AuditRepository
}

// UnitOfWork executes a function inside one database transaction. The repos
// passed to fn share that transaction; the outer repositories must not be
// used inside fn.
type UnitOfWork interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// GatewayResult is the outcome of a gateway money operation. Provider-side
// business rejections set Success=false with the provider's message verbatim;
// they are not Go errors.
type GatewayResult struct {
	Success bool
	Message string
}

// WidgetData is the payload the storefront passes to the payment widget.
type WidgetData struct {
	PublicID    string `json:"publicId"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	InvoiceID   string `json:"invoiceId"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// GatewayClient is the port for the external payment gateway.
type GatewayClient interface {
	WidgetData(order *domain.Order) (*WidgetData, error)
	Confirm(ctx context.Context, transactionID string, amountCents int64) (*GatewayResult, error)
	Void(ctx context.Context, transactionID string) (*GatewayResult, error)
	Refund(ctx context.Context, transactionID string, amountCents int64) (*GatewayResult, error)
}

// NotificationKind enumerates the events worth telling a human about.
type NotificationKind string

const (
	NotifyPaymentAuthorized NotificationKind = "payment_authorized"
	NotifyLinksSent         NotificationKind = "links_sent"
	NotifyRefundProcessed   NotificationKind = "refund_processed"
	NotifyOrderCancelled    NotificationKind = "order_cancelled"
)

// NotificationEvent is a fire-and-forget message for the notification queue.
type NotificationEvent struct {
	Kind        NotificationKind
	OrderNumber string
	Email       string
	AmountCents int64
	Details     string
}

// Notifier enqueues an event without blocking. Delivery is best effort and
// never influences the outcome of the transition that produced the event.
type Notifier interface {
	Notify(event NotificationEvent)
}
