package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/domain"
)

// FailureRepo implements storage.FailureRepository using PostgreSQL.
type FailureRepo struct {
	db *DB
}

// NewFailureRepo creates a new PostgreSQL failure repository.
func NewFailureRepo(db *DB) *FailureRepo {
	return &FailureRepo{db: db}
}

// Insert appends one failure event. Rows carry a generated surrogate id and
// no natural key, so inserts never conflict and never need upsert semantics.
func (r *FailureRepo) Insert(ctx context.Context, event *domain.FailureEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	query := `
		INSERT INTO order_failures (id, order_id, failure_timestamp, url, status_code, failure_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	// Empty order identity is stored as NULL so malformed source records
	// still land in the audit trail without a FK violation.
	var orderID *string
	if event.OrderID != "" {
		orderID = &event.OrderID
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID, orderID, event.Timestamp,
		event.URL, event.StatusCode, event.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert failure: %w", err)
	}
	return nil
}

type failureRow struct {
	ID         string    `db:"id"`
	OrderID    *string   `db:"order_id"`
	Timestamp  time.Time `db:"failure_timestamp"`
	URL        string    `db:"url"`
	StatusCode *int      `db:"status_code"`
	Reason     string    `db:"failure_reason"`
}

func (f *failureRow) toDomain() *domain.FailureEvent {
	event := &domain.FailureEvent{
		ID:         f.ID,
		Timestamp:  f.Timestamp,
		URL:        f.URL,
		StatusCode: f.StatusCode,
		Reason:     f.Reason,
	}
	if f.OrderID != nil {
		event.OrderID = *f.OrderID
	}
	return event
}

// ListByOrder retrieves failure events for an order, oldest first.
func (r *FailureRepo) ListByOrder(ctx context.Context, orderID string) ([]*domain.FailureEvent, error) {
	query := `
		SELECT id, order_id, failure_timestamp, url, status_code, failure_reason
		FROM order_failures
		WHERE order_id = $1
		ORDER BY failure_timestamp ASC
	`

	var rows []failureRow
	err := r.db.SelectContext(ctx, &rows, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list failures: %w", err)
	}

	var events []*domain.FailureEvent
	for _, row := range rows {
		events = append(events, row.toDomain())
	}
	return events, nil
}

// CountByOrder returns the number of failure events for an order.
func (r *FailureRepo) CountByOrder(ctx context.Context, orderID string) (int, error) {
	query := `SELECT COUNT(*) FROM order_failures WHERE order_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, orderID); err != nil {
		return 0, fmt.Errorf("failed to count failures: %w", err)
	}
	return count, nil
}

// DeleteByOrder removes failure history. Used by operator tooling only.
func (r *FailureRepo) DeleteByOrder(ctx context.Context, orderID string) error {
	query := `DELETE FROM order_failures WHERE order_id = $1`
	_, err := r.db.ExecContext(ctx, query, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete failures: %w", err)
	}
	return nil
}
