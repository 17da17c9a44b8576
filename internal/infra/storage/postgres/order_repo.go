package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/domain"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage"
)

// OrderRepo implements storage.OrderRepository using PostgreSQL.
type OrderRepo struct {
	db *DB
}

// NewOrderRepo creates a new PostgreSQL order repository.
func NewOrderRepo(db *DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Upsert applies one attempt as a single atomic statement. There is no
// existence check before the write; the ON CONFLICT clause carries the
// insert-or-update decision so replays and concurrent runs cannot race.
func (r *OrderRepo) Upsert(ctx context.Context, attempt domain.Attempt) error {
	query := `
		INSERT INTO orders (order_id, url, status_code, first_attempt_at, completed_at, process_count)
		VALUES ($1, $2, $3, $4, CASE WHEN $5::boolean THEN $4 END, 1)
		ON CONFLICT (order_id) DO UPDATE SET
			url = EXCLUDED.url,
			status_code = EXCLUDED.status_code,
			completed_at = CASE WHEN $5::boolean THEN EXCLUDED.first_attempt_at ELSE orders.completed_at END,
			process_count = orders.process_count + 1
	`

	_, err := r.db.ExecContext(ctx, query,
		attempt.OrderID, attempt.URL, attempt.StatusCode,
		attempt.Timestamp, attempt.Success,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}
	return nil
}

// MarkLastFailure stamps last_failed_at on the order row. The order row is
// normally written first within the same record, but a missing row is
// tolerated: zero rows affected is a no-op, not an error.
func (r *OrderRepo) MarkLastFailure(ctx context.Context, orderID string, ts time.Time) error {
	query := `UPDATE orders SET last_failed_at = $2 WHERE order_id = $1`
	_, err := r.db.ExecContext(ctx, query, orderID, ts)
	if err != nil {
		return fmt.Errorf("failed to mark last failure: %w", err)
	}
	return nil
}

type orderRow struct {
	OrderID        string     `db:"order_id"`
	URL            string     `db:"url"`
	StatusCode     *int       `db:"status_code"`
	FirstAttemptAt time.Time  `db:"first_attempt_at"`
	LastFailedAt   *time.Time `db:"last_failed_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	ProcessCount   int        `db:"process_count"`
}

func (o *orderRow) toDomain() *domain.Order {
	return &domain.Order{
		OrderID:        o.OrderID,
		URL:            o.URL,
		StatusCode:     o.StatusCode,
		FirstAttemptAt: o.FirstAttemptAt,
		LastFailedAt:   o.LastFailedAt,
		CompletedAt:    o.CompletedAt,
		ProcessCount:   o.ProcessCount,
	}
}

// Get retrieves an order by identity.
func (r *OrderRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
		SELECT order_id, url, status_code, first_attempt_at, last_failed_at, completed_at, process_count
		FROM orders
		WHERE order_id = $1
	`

	var row orderRow
	err := r.db.GetContext(ctx, &row, query, orderID)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return row.toDomain(), nil
}

// Stats returns aggregate counts for reporting.
func (r *OrderRepo) Stats(ctx context.Context) (storage.Stats, error) {
	var stats storage.Stats

	query := `SELECT COUNT(*), COUNT(completed_at) FROM orders`
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.Orders, &stats.Completed); err != nil {
		return stats, fmt.Errorf("failed to count orders: %w", err)
	}

	if err := r.db.GetContext(ctx, &stats.Failures, `SELECT COUNT(*) FROM order_failures`); err != nil {
		return stats, fmt.Errorf("failed to count failures: %w", err)
	}

	return stats, nil
}

// Delete removes an order row. Used by operator tooling only.
func (r *OrderRepo) Delete(ctx context.Context, orderID string) error {
	query := `DELETE FROM orders WHERE order_id = $1`
	_, err := r.db.ExecContext(ctx, query, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}
