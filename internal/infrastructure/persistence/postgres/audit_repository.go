package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

type AuditRepository struct {
	q persistence.Executor
}

func NewAuditRepository(q persistence.Executor) *AuditRepository {
	return &AuditRepository{q: q}
}

// Append writes one audit row. The table is append-only; there is no update
// path. The request origin, when the transport recorded one, is stamped onto
// the entry here so every write path picks it up.
func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	application.StampOrigin(ctx, entry)

	query := `
		INSERT INTO audit_logs (actor_id, action, resource_type, resource_id, details, ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var details []byte
	if entry.Details != nil {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}

	_, err := r.q.Exec(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		details,
		nullable(entry.IP),
		nullable(entry.UserAgent),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// PurgeOlderThan deletes one batch of audit rows older than the cutoff and
// returns how many went. Callers loop until zero.
func (r *AuditRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	query := `
		DELETE FROM audit_logs
		WHERE id IN (
			SELECT id FROM audit_logs
			WHERE created_at < $1
			ORDER BY id ASC
			LIMIT $2
		)
	`

	result, err := r.q.Exec(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit entries: %w", err)
	}

	return result.RowsAffected(), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
