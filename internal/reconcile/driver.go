package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/domain"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/reconcile/metrics"
)

// ErrSourceUnavailable is returned when the source probe fails before a run.
var ErrSourceUnavailable = errors.New("log source unavailable")

// Source is the remote append-only log the driver reconciles from.
type Source interface {
	// Ping probes connectivity; a failed probe skips the run entirely
	Ping(ctx context.Context) error

	// FetchPage returns one page of records ordered by event time ascending.
	// An empty returned token means no further pages.
	FetchPage(
		ctx context.Context,
		after time.Time,
		token string,
		limit int,
	) ([]domain.LogRecord, string, error)
}

// Summary is the outcome of one reconciliation run.
type Summary struct {
	Fetched int
	Applied int
	Failed  int
	Skipped int

	// LastEventTime is the event time of the last record seen, used as the
	// fetch checkpoint for the next run.
	LastEventTime time.Time
}

// Driver orchestrates one reconciliation run: probe the source, page through
// the log in source order, classify each record and apply its writes. Records
// are applied strictly sequentially; page N is fully applied before page N+1
// is requested, so later records for the same order overwrite earlier ones.
type Driver struct {
	source   Source
	orders   storage.OrderRepository
	failures storage.FailureRepository
	pageSize int
	log      *slog.Logger
}

// NewDriver creates a new reconciliation driver.
func NewDriver(
	source Source,
	orders storage.OrderRepository,
	failures storage.FailureRepository,
	pageSize int,
) *Driver {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Driver{
		source:   source,
		orders:   orders,
		failures: failures,
		pageSize: pageSize,
		log:      slog.Default(),
	}
}

// Run executes one reconciliation run over records after the given lower
// bound. Per-record write errors are counted, not propagated; the returned
// error covers only a failed probe or a fetch that could not complete. The
// summary is valid either way.
func (d *Driver) Run(ctx context.Context, after time.Time) (Summary, error) {
	start := time.Now()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	var summary Summary

	if err := d.source.Ping(ctx); err != nil {
		metrics.RunsTotal.WithLabelValues("skipped").Inc()
		return summary, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	token := ""
	for {
		records, next, err := d.source.FetchPage(ctx, after, token, d.pageSize)
		if err != nil {
			// Records already applied stay applied; rerunning the batch is
			// safe because every write is idempotent.
			metrics.RunsTotal.WithLabelValues("error").Inc()
			d.logSummary(summary)
			return summary, fmt.Errorf("fetch page: %w", err)
		}

		for i := range records {
			rec := &records[i]
			summary.Fetched++
			metrics.RecordsFetched.Inc()
			summary.LastEventTime = rec.EventTime

			d.applyRecord(ctx, rec, &summary)
		}

		if next == "" || len(records) == 0 {
			break
		}
		token = next
	}

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	d.logSummary(summary)
	return summary, nil
}

// applyRecord classifies one record and issues its writes in order: upsert,
// then for failures the audit insert and the last-failure stamp. The first
// failing operation ends the record; the batch continues.
func (d *Driver) applyRecord(ctx context.Context, rec *domain.LogRecord, summary *Summary) {
	action := Classify(rec)
	success := action == ActionUpsertSuccess

	if rec.OrderID == "" {
		if success {
			// Nothing to key an order row on.
			d.log.Warn("Skipping success record without order identity", "record", rec.ID)
			summary.Skipped++
			metrics.RecordsSkipped.Inc()
			return
		}
		// Failures without an identity still land in the audit trail.
		if err := d.insertFailure(ctx, rec); err != nil {
			d.recordError(rec, "insert_failure", err, summary)
			return
		}
		summary.Applied++
		metrics.RecordsApplied.WithLabelValues("failure").Inc()
		return
	}

	attempt := domain.Attempt{
		OrderID:    rec.OrderID,
		URL:        rec.URL,
		StatusCode: rec.StatusCode,
		Timestamp:  rec.EventTime,
		Success:    success,
	}
	if err := d.orders.Upsert(ctx, attempt); err != nil {
		d.recordError(rec, "upsert", err, summary)
		return
	}

	if !success {
		if err := d.insertFailure(ctx, rec); err != nil {
			d.recordError(rec, "insert_failure", err, summary)
			return
		}
		if err := d.orders.MarkLastFailure(ctx, rec.OrderID, rec.EventTime); err != nil {
			d.recordError(rec, "mark_last_failure", err, summary)
			return
		}
	}

	summary.Applied++
	if success {
		metrics.RecordsApplied.WithLabelValues("success").Inc()
	} else {
		metrics.RecordsApplied.WithLabelValues("failure").Inc()
	}
}

func (d *Driver) insertFailure(ctx context.Context, rec *domain.LogRecord) error {
	code, message := ExtractErrorDetail(rec.StatusCode, rec.Payload)
	return d.failures.Insert(ctx, &domain.FailureEvent{
		OrderID:    rec.OrderID,
		Timestamp:  rec.EventTime,
		URL:        rec.URL,
		StatusCode: rec.StatusCode,
		Reason:     FailureReason(code, message),
	})
}

func (d *Driver) recordError(rec *domain.LogRecord, operation string, err error, summary *Summary) {
	summary.Failed++
	metrics.RecordErrors.WithLabelValues(operation).Inc()
	d.log.Error("Failed to apply record",
		"record", rec.ID,
		"order", rec.OrderID,
		"operation", operation,
		"error", err,
	)
}

func (d *Driver) logSummary(summary Summary) {
	d.log.Info("Reconciliation run finished",
		"fetched", summary.Fetched,
		"applied", summary.Applied,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
}
