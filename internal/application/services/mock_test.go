package services

import (
	"context"
	"sync"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

// MockOrderRepository
type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	nextID int64

	CreateFn                func(ctx context.Context, order *domain.Order) error
	FindByNumberFn          func(ctx context.Context, number string) (*domain.Order, error)
	FindByNumberForUpdateFn func(ctx context.Context, number string) (*domain.Order, error)
	UpdateFn                func(ctx context.Context, order *domain.Order) error
	FindExpiredFn           func(ctx context.Context, now time.Time, legacyTimeout time.Duration, limit int) ([]*domain.Order, error)
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *MockOrderRepository) Put(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.ID == 0 {
		m.nextID++
		order.ID = m.nextID
	}
	m.orders[order.Number] = order
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, order)
	}
	m.Put(order)
	return nil
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, persistence.ErrOrderNotFound
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if m.FindByNumberFn != nil {
		return m.FindByNumberFn(ctx, number)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[number]; ok {
		return o, nil
	}
	return nil, persistence.ErrOrderNotFound
}

func (m *MockOrderRepository) FindByNumberForUpdate(ctx context.Context, number string) (*domain.Order, error) {
	if m.FindByNumberForUpdateFn != nil {
		return m.FindByNumberForUpdateFn(ctx, number)
	}
	return m.FindByNumber(ctx, number)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.Number]; !ok {
		return persistence.ErrOrderNotFound
	}
	m.orders[order.Number] = order
	return nil
}

func (m *MockOrderRepository) List(ctx context.Context, filter application.OrderFilter) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if len(filter.Statuses) > 0 {
			found := false
			for _, st := range filter.Statuses {
				if o.Status == st {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.OperatorID != nil && (o.OperatorID == nil || *o.OperatorID != *filter.OperatorID) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *MockOrderRepository) FindExpired(ctx context.Context, now time.Time, legacyTimeout time.Duration, limit int) ([]*domain.Order, error) {
	if m.FindExpiredFn != nil {
		return m.FindExpiredFn(ctx, now, legacyTimeout, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.PaymentExpired(now, legacyTimeout) {
			out = append(out, o)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// MockPaymentRepository
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
	nextID   int64

	CreateFn                       func(ctx context.Context, payment *domain.Payment) error
	FindByTransactionIDForUpdateFn func(ctx context.Context, transactionID string) (*domain.Payment, error)
	UpdateFn                       func(ctx context.Context, payment *domain.Payment) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (m *MockPaymentRepository) Put(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment.ID == 0 {
		m.nextID++
		payment.ID = m.nextID
	}
	m.payments[payment.TransactionID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, payment)
	}
	m.mu.Lock()
	if _, ok := m.payments[payment.TransactionID]; ok {
		m.mu.Unlock()
		return domain.NewDuplicateTransactionError(payment.TransactionID)
	}
	m.mu.Unlock()
	m.Put(payment)
	return nil
}

func (m *MockPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[transactionID]; ok {
		return p, nil
	}
	return nil, persistence.ErrPaymentNotFound
}

func (m *MockPaymentRepository) FindByTransactionIDForUpdate(ctx context.Context, transactionID string) (*domain.Payment, error) {
	if m.FindByTransactionIDForUpdateFn != nil {
		return m.FindByTransactionIDForUpdateFn(ctx, transactionID)
	}
	return m.FindByTransactionID(ctx, transactionID)
}

func (m *MockPaymentRepository) FindByOrderID(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.TransactionID]; !ok {
		return persistence.ErrPaymentNotFound
	}
	m.payments[payment.TransactionID] = payment
	return nil
}

// MockAuditRepository
type MockAuditRepository struct {
	mu      sync.Mutex
	Entries []*domain.AuditEntry

	PurgeOlderThanFn func(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockAuditRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if m.PurgeOlderThanFn != nil {
		return m.PurgeOlderThanFn(ctx, cutoff, batchSize)
	}
	return 0, nil
}

func (m *MockAuditRepository) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Action
	}
	return out
}

// MockUnitOfWork hands the same mock repositories to the callback; there is
// no transactionality to simulate.
type MockUnitOfWork struct {
	Orders   *MockOrderRepository
	Payments *MockPaymentRepository
	Audit    *MockAuditRepository

	WithTransactionFn func(ctx context.Context, fn func(ctx context.Context, repos application.Repositories) error) error
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Orders:   NewMockOrderRepository(),
		Payments: NewMockPaymentRepository(),
		Audit:    NewMockAuditRepository(),
	}
}

func (m *MockUnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos application.Repositories) error) error {
	if m.WithTransactionFn != nil {
		return m.WithTransactionFn(ctx, fn)
	}
	return fn(ctx, application.Repositories{
		Orders:   m.Orders,
		Payments: m.Payments,
		Audit:    m.Audit,
	})
}

// MockGatewayClient
type MockGatewayClient struct {
	mu           sync.Mutex
	ConfirmCalls int
	VoidCalls    int
	RefundCalls  int

	WidgetDataFn func(order *domain.Order) (*application.WidgetData, error)
	ConfirmFn    func(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error)
	VoidFn       func(ctx context.Context, transactionID string) (*application.GatewayResult, error)
	RefundFn     func(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error)
}

func (m *MockGatewayClient) WidgetData(order *domain.Order) (*application.WidgetData, error) {
	if m.WidgetDataFn != nil {
		return m.WidgetDataFn(order)
	}
	return &application.WidgetData{
		PublicID:  "pk_test",
		Amount:    "100.00",
		Currency:  order.Currency,
		InvoiceID: order.Number,
		Email:     order.CustomerEmail,
	}, nil
}

func (m *MockGatewayClient) Confirm(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error) {
	m.mu.Lock()
	m.ConfirmCalls++
	m.mu.Unlock()
	if m.ConfirmFn != nil {
		return m.ConfirmFn(ctx, transactionID, amountCents)
	}
	return &application.GatewayResult{Success: true}, nil
}

func (m *MockGatewayClient) Void(ctx context.Context, transactionID string) (*application.GatewayResult, error) {
	m.mu.Lock()
	m.VoidCalls++
	m.mu.Unlock()
	if m.VoidFn != nil {
		return m.VoidFn(ctx, transactionID)
	}
	return &application.GatewayResult{Success: true}, nil
}

func (m *MockGatewayClient) Refund(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error) {
	m.mu.Lock()
	m.RefundCalls++
	m.mu.Unlock()
	if m.RefundFn != nil {
		return m.RefundFn(ctx, transactionID, amountCents)
	}
	return &application.GatewayResult{Success: true}, nil
}

// MockNotifier
type MockNotifier struct {
	mu     sync.Mutex
	Events []application.NotificationEvent
}

func (m *MockNotifier) Notify(event application.NotificationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

func (m *MockNotifier) Kinds() []application.NotificationKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]application.NotificationKind, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Kind
	}
	return out
}
