package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `
	id, order_id, transaction_id, amount_cents, currency,
	status, method, parent_id, receipt_confirmed, created_at, updated_at`

type PaymentRepository struct {
	q persistence.Executor
}

func NewPaymentRepository(q persistence.Executor) *PaymentRepository {
	return &PaymentRepository{q: q}
}

// Create inserts a ledger row. The unique constraint on transaction_id is
// the idempotency backstop for webhook retries; callers translate the unique
// violation into a duplicate-transaction error.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			order_id, transaction_id, amount_cents, currency,
			status, method, parent_id, receipt_confirmed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		payment.OrderID,
		payment.TransactionID,
		payment.AmountCents,
		payment.Currency,
		string(payment.Status),
		string(payment.Method),
		payment.ParentID,
		payment.ReceiptConfirmed,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Scan(&payment.ID)
	if err != nil {
		if persistence.IsUniqueViolation(err) {
			return domain.NewDuplicateTransactionError(payment.TransactionID)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	return scanPayment(r.q.QueryRow(ctx, query, transactionID))
}

// FindByTransactionIDForUpdate retrieves a payment with a row-level lock.
func (r *PaymentRepository) FindByTransactionIDForUpdate(ctx context.Context, transactionID string) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE transaction_id = $1 FOR UPDATE`
	return scanPayment(r.q.QueryRow(ctx, query, transactionID))
}

// FindByOrderID returns every ledger row of an order, refunds included,
// oldest first.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query payments by order_id: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan payments: %w", err)
	}
	return results, nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, amount_cents = $2, receipt_confirmed = $3, updated_at = now()
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query,
		string(payment.Status),
		payment.AmountCents,
		payment.ReceiptConfirmed,
		payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return persistence.ErrPaymentNotFound
	}

	return nil
}

// scanPayment converts a database row into a domain Payment.
// Returns persistence.ErrPaymentNotFound if the row doesn't exist.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		id, orderID          int64
		transactionID        string
		amountCents          int64
		currency             string
		status, method       string
		parentID             *int64
		receiptConfirmed     bool
		createdAt, updatedAt time.Time
	)

	err := row.Scan(
		&id, &orderID, &transactionID, &amountCents, &currency,
		&status, &method, &parentID, &receiptConfirmed, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, persistence.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	return domain.ReconstitutePayment(
		id, orderID, transactionID,
		amountCents, currency,
		domain.PaymentStatus(status), domain.PaymentMethod(method),
		parentID, receiptConfirmed,
		createdAt, updatedAt,
	), nil
}
