package postgres

import (
	"context"
	"fmt"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

// TransactionCoordinator implements application.UnitOfWork on top of a pgx
// pool. Repositories handed to the callback share one transaction; row locks
// taken through them hold until commit or rollback.
type TransactionCoordinator struct {
	db *persistence.DB
}

func NewTransactionCoordinator(db *persistence.DB) *TransactionCoordinator {
	return &TransactionCoordinator{db: db}
}

// WithTransaction executes fn within a database transaction. The function
// receives repository instances bound to that transaction.
func (tc *TransactionCoordinator) WithTransaction(
	ctx context.Context,
	fn func(ctx context.Context, repos application.Repositories) error,
) error {
	tx, err := tc.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	repos := application.Repositories{
		Orders:   NewOrderRepository(tx),
		Payments: NewPaymentRepository(tx),
		Audit:    NewAuditRepository(tx),
	}

	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
