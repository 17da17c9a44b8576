package storage

import (
	"context"
	"errors"
	"time"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/domain"
)

var (
	// ErrNotFound is returned when an order doesn't exist
	ErrNotFound = errors.New("order not found")
)

// OrderRepository handles order state storage operations
type OrderRepository interface {
	// Upsert applies one attempt to the order row as a single atomic
	// insert-or-update. New rows start with process_count = 1; existing rows
	// have process_count incremented by exactly 1. completed_at is set only
	// when the attempt succeeded and is never cleared by a later failure.
	Upsert(ctx context.Context, attempt domain.Attempt) error

	// MarkLastFailure updates last_failed_at for an existing order row.
	// Zero rows affected is not an error.
	MarkLastFailure(ctx context.Context, orderID string, ts time.Time) error

	// Get retrieves an order by identity
	Get(ctx context.Context, orderID string) (*domain.Order, error)

	// Stats returns aggregate counts for reporting
	Stats(ctx context.Context) (Stats, error)

	// Delete removes an order row (operator tooling only, the engine never
	// deletes)
	Delete(ctx context.Context, orderID string) error
}

// FailureRepository handles the append-only failure audit trail
type FailureRepository interface {
	// Insert appends one immutable failure event
	Insert(ctx context.Context, event *domain.FailureEvent) error

	// ListByOrder retrieves failure events for an order, oldest first
	ListByOrder(ctx context.Context, orderID string) ([]*domain.FailureEvent, error)

	// CountByOrder returns the number of failure events for an order
	CountByOrder(ctx context.Context, orderID string) (int, error)

	// DeleteByOrder removes failure history (operator tooling only)
	DeleteByOrder(ctx context.Context, orderID string) error
}

// Stats summarizes the reconciled store.
type Stats struct {
	Orders    int
	Completed int
	Failures  int
}
