package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `
	id, number, display_number, customer_email, status,
	total_cents, paid_cents, currency, operator_id,
	payment_intent_id, payment_method,
	video_links, refund_reason, cancel_reason, comments,
	payment_expires_at, processed_at, created_at, updated_at`

type OrderRepository struct {
	q persistence.Executor
}

func NewOrderRepository(q persistence.Executor) *OrderRepository {
	return &OrderRepository{q: q}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			number, display_number, customer_email, status,
			total_cents, paid_cents, currency, operator_id,
			payment_intent_id, payment_method,
			video_links, refund_reason, cancel_reason, comments,
			payment_expires_at, processed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		order.Number,
		order.DisplayNumber,
		order.CustomerEmail,
		string(order.Status),
		order.TotalCents,
		order.PaidCents,
		order.Currency,
		order.OperatorID,
		order.PaymentIntentID,
		methodPtr(order.PaymentMethod),
		order.VideoLinks,
		order.RefundReason,
		order.CancelReason,
		order.Comments,
		order.PaymentExpiresAt,
		order.ProcessedAt,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.q.QueryRow(ctx, query, id))
}

func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE number = $1`
	return scanOrder(r.q.QueryRow(ctx, query, number))
}

// FindByNumberForUpdate retrieves an order with a row-level lock. Callers
// must run inside a transaction for the lock to mean anything.
func (r *OrderRepository) FindByNumberForUpdate(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE number = $1 FOR UPDATE`
	return scanOrder(r.q.QueryRow(ctx, query, number))
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1, paid_cents = $2, operator_id = $3,
			payment_intent_id = $4, payment_method = $5,
			video_links = $6, refund_reason = $7, cancel_reason = $8, comments = $9,
			payment_expires_at = $10, processed_at = $11, updated_at = now()
		WHERE id = $12
	`

	result, err := r.q.Exec(ctx, query,
		string(order.Status),
		order.PaidCents,
		order.OperatorID,
		order.PaymentIntentID,
		methodPtr(order.PaymentMethod),
		order.VideoLinks,
		order.RefundReason,
		order.CancelReason,
		order.Comments,
		order.PaymentExpiresAt,
		order.ProcessedAt,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return persistence.ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepository) List(ctx context.Context, filter application.OrderFilter) ([]*domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if filter.OperatorID != nil {
		args = append(args, *filter.OperatorID)
		query += fmt.Sprintf(" AND operator_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	results, err := pgx.CollectRows(rows, collectOrder)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return results, nil
}

// FindExpired returns awaiting_payment orders whose deadline elapsed. Rows
// predating the deadline column fall back to created_at plus legacyTimeout.
func (r *OrderRepository) FindExpired(ctx context.Context, now time.Time, legacyTimeout time.Duration, limit int) ([]*domain.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders
		WHERE status = 'awaiting_payment'
		  AND (
			(payment_expires_at IS NOT NULL AND payment_expires_at < $1)
			OR (payment_expires_at IS NULL AND created_at < $2)
		  )
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, now, now.Add(-legacyTimeout), limit)
	if err != nil {
		return nil, fmt.Errorf("query expired orders: %w", err)
	}

	results, err := pgx.CollectRows(rows, collectOrder)
	if err != nil {
		return nil, fmt.Errorf("scan expired orders: %w", err)
	}
	return results, nil
}

func collectOrder(row pgx.CollectableRow) (*domain.Order, error) {
	return scanOrder(row)
}

// scanOrder converts a database row into a domain Order.
// Returns persistence.ErrOrderNotFound if the row doesn't exist.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		id                                            int64
		number, displayNumber, customerEmail, status  string
		totalCents, paidCents                         int64
		currency                                      string
		operatorID                                    *int64
		paymentIntentID, paymentMethod                *string
		videoLinks, refundReason, cancelReason, notes *string
		paymentExpiresAt, processedAt                 *time.Time
		createdAt, updatedAt                          time.Time
	)

	err := row.Scan(
		&id, &number, &displayNumber, &customerEmail, &status,
		&totalCents, &paidCents, &currency, &operatorID,
		&paymentIntentID, &paymentMethod,
		&videoLinks, &refundReason, &cancelReason, &notes,
		&paymentExpiresAt, &processedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, persistence.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	var method *domain.PaymentMethod
	if paymentMethod != nil {
		m := domain.PaymentMethod(*paymentMethod)
		method = &m
	}

	return domain.ReconstituteOrder(
		id, number, displayNumber, customerEmail,
		domain.OrderStatus(status),
		totalCents, paidCents, currency,
		operatorID,
		paymentIntentID, method,
		videoLinks, refundReason, cancelReason, notes,
		paymentExpiresAt, processedAt,
		createdAt, updatedAt,
	), nil
}

func methodPtr(m *domain.PaymentMethod) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}
