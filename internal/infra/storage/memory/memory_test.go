package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/domain"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage"
)

func intPtr(v int) *int { return &v }

func TestOrderRepo_UpsertInsertsWithDefaults(t *testing.T) {
	repo := NewOrderRepo(NewMemoryStorage())
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := repo.Upsert(context.Background(), domain.Attempt{
		OrderID:    "ord-1",
		URL:        "https://api.example.com/orders",
		StatusCode: intPtr(200),
		Timestamp:  ts,
		Success:    true,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	order, err := repo.Get(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if order.ProcessCount != 1 {
		t.Errorf("Expected process count 1, got %d", order.ProcessCount)
	}
	if !order.FirstAttemptAt.Equal(ts) {
		t.Errorf("Expected first attempt %v, got %v", ts, order.FirstAttemptAt)
	}
	if order.CompletedAt == nil || !order.CompletedAt.Equal(ts) {
		t.Errorf("Expected completion %v, got %v", ts, order.CompletedAt)
	}
}

func TestOrderRepo_UpsertKeepsFirstAttemptAndCompletion(t *testing.T) {
	repo := NewOrderRepo(NewMemoryStorage())
	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	_ = repo.Upsert(context.Background(), domain.Attempt{
		OrderID: "ord-1", StatusCode: intPtr(200), Timestamp: t1, Success: true,
	})
	_ = repo.Upsert(context.Background(), domain.Attempt{
		OrderID: "ord-1", StatusCode: intPtr(500), Timestamp: t2, Success: false,
	})

	order, _ := repo.Get(context.Background(), "ord-1")
	if order.ProcessCount != 2 {
		t.Errorf("Expected process count 2, got %d", order.ProcessCount)
	}
	if !order.FirstAttemptAt.Equal(t1) {
		t.Errorf("First attempt moved: %v", order.FirstAttemptAt)
	}
	// Completion holds the last success seen, a later failure never clears it.
	if order.CompletedAt == nil || !order.CompletedAt.Equal(t1) {
		t.Errorf("Expected completion %v, got %v", t1, order.CompletedAt)
	}
	if order.StatusCode == nil || *order.StatusCode != 500 {
		t.Errorf("Expected status 500, got %v", order.StatusCode)
	}
}

func TestOrderRepo_MarkLastFailureOrphanIsNoop(t *testing.T) {
	repo := NewOrderRepo(NewMemoryStorage())

	err := repo.MarkLastFailure(context.Background(), "missing", time.Now())
	if err != nil {
		t.Errorf("Expected orphan MarkLastFailure to be a no-op, got %v", err)
	}
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected no row created by orphan update")
	}
}

func TestFailureRepo_InsertIsAppendOnly(t *testing.T) {
	store := NewMemoryStorage()
	repo := NewFailureRepo(store)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := repo.Insert(context.Background(), &domain.FailureEvent{
			OrderID:   "ord-1",
			Timestamp: ts.Add(time.Duration(i) * time.Minute),
			Reason:    "E1: Bad",
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	events, err := repo.ListByOrder(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("ListByOrder failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for _, e := range events {
		if e.ID == "" {
			t.Errorf("Expected generated surrogate id")
		}
	}

	count, _ := repo.CountByOrder(context.Background(), "ord-1")
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}
}

func TestStats(t *testing.T) {
	store := NewMemoryStorage()
	orders := NewOrderRepo(store)
	failures := NewFailureRepo(store)
	ts := time.Now()

	_ = orders.Upsert(context.Background(), domain.Attempt{OrderID: "a", Timestamp: ts, Success: true})
	_ = orders.Upsert(context.Background(), domain.Attempt{OrderID: "b", Timestamp: ts, Success: false})
	_ = failures.Insert(context.Background(), &domain.FailureEvent{OrderID: "b", Timestamp: ts})

	stats, err := orders.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Orders != 2 || stats.Completed != 1 || stats.Failures != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestDeleteByOrder(t *testing.T) {
	store := NewMemoryStorage()
	orders := NewOrderRepo(store)
	failures := NewFailureRepo(store)
	ts := time.Now()

	_ = orders.Upsert(context.Background(), domain.Attempt{OrderID: "a", Timestamp: ts, Success: false})
	_ = failures.Insert(context.Background(), &domain.FailureEvent{OrderID: "a", Timestamp: ts})
	_ = failures.Insert(context.Background(), &domain.FailureEvent{OrderID: "other", Timestamp: ts})

	if err := failures.DeleteByOrder(context.Background(), "a"); err != nil {
		t.Fatalf("DeleteByOrder failed: %v", err)
	}
	if err := orders.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := orders.Get(context.Background(), "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected order gone")
	}
	remaining, _ := failures.ListByOrder(context.Background(), "other")
	if len(remaining) != 1 {
		t.Errorf("Expected unrelated failure history intact, got %d", len(remaining))
	}
}
