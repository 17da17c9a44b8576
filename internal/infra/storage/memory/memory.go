package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/domain"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage"
)

// MemoryStorage backs the repositories when no database is configured.
// Semantics mirror the PostgreSQL repositories exactly so tests exercising
// the driver against memory storage prove the same invariants.
type MemoryStorage struct {
	orders   map[string]*domain.Order
	failures []*domain.FailureEvent
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		orders: make(map[string]*domain.Order),
	}
}

// -----------------------------------------------------------------------------
// Order Repository
// -----------------------------------------------------------------------------

type OrderRepo struct {
	store *MemoryStorage
}

func NewOrderRepo(store *MemoryStorage) *OrderRepo {
	return &OrderRepo{store: store}
}

func (r *OrderRepo) Upsert(ctx context.Context, attempt domain.Attempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.orders[attempt.OrderID]
	if !ok {
		order := &domain.Order{
			OrderID:        attempt.OrderID,
			URL:            attempt.URL,
			StatusCode:     attempt.StatusCode,
			FirstAttemptAt: attempt.Timestamp,
			ProcessCount:   1,
		}
		if attempt.Success {
			ts := attempt.Timestamp
			order.CompletedAt = &ts
		}
		r.store.orders[attempt.OrderID] = order
		return nil
	}

	existing.URL = attempt.URL
	existing.StatusCode = attempt.StatusCode
	if attempt.Success {
		ts := attempt.Timestamp
		existing.CompletedAt = &ts
	}
	existing.ProcessCount++
	return nil
}

func (r *OrderRepo) MarkLastFailure(ctx context.Context, orderID string, ts time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Missing row is a no-op, matching the SQL UPDATE affecting zero rows.
	if order, ok := r.store.orders[orderID]; ok {
		t := ts
		order.LastFailedAt = &t
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[orderID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *order
	return &copy, nil
}

func (r *OrderRepo) Stats(ctx context.Context) (storage.Stats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stats := storage.Stats{
		Orders:   len(r.store.orders),
		Failures: len(r.store.failures),
	}
	for _, o := range r.store.orders {
		if o.CompletedAt != nil {
			stats.Completed++
		}
	}
	return stats, nil
}

func (r *OrderRepo) Delete(ctx context.Context, orderID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.orders, orderID)
	return nil
}

// -----------------------------------------------------------------------------
// Failure Repository
// -----------------------------------------------------------------------------

type FailureRepo struct {
	store *MemoryStorage
}

func NewFailureRepo(store *MemoryStorage) *FailureRepo {
	return &FailureRepo{store: store}
}

func (r *FailureRepo) Insert(ctx context.Context, event *domain.FailureEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	copy := *event
	r.store.failures = append(r.store.failures, &copy)
	return nil
}

func (r *FailureRepo) ListByOrder(ctx context.Context, orderID string) ([]*domain.FailureEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []*domain.FailureEvent
	for _, f := range r.store.failures {
		if f.OrderID == orderID {
			copy := *f
			events = append(events, &copy)
		}
	}
	return events, nil
}

func (r *FailureRepo) CountByOrder(ctx context.Context, orderID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, f := range r.store.failures {
		if f.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

func (r *FailureRepo) DeleteByOrder(ctx context.Context, orderID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.failures[:0]
	for _, f := range r.store.failures {
		if f.OrderID != orderID {
			kept = append(kept, f)
		}
	}
	r.store.failures = kept
	return nil
}
