package domain

import "time"

// FailureEvent is one append-only audit row for a failure-classified record.
// Rows are immutable once written. OrderID is empty when the source record
// carried no order identity; the row is kept anyway so the audit trail stays
// complete.
type FailureEvent struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	Timestamp  time.Time `json:"failure_timestamp"`
	URL        string    `json:"url"`
	StatusCode *int      `json:"status_code"`
	Reason     string    `json:"failure_reason"` // "<code>: <message>"
}
