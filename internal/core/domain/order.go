package domain

import "time"

// Order is the reconciled state of one logical order, one row per OrderID.
// ProcessCount counts every log record ever applied to this order, replays
// included. CompletedAt records the last success seen and is never cleared
// by a later failure.
type Order struct {
	OrderID        string     `json:"order_id"`
	URL            string     `json:"url"`
	StatusCode     *int       `json:"status_code"`
	FirstAttemptAt time.Time  `json:"first_attempt_at"`
	LastFailedAt   *time.Time `json:"last_failed_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	ProcessCount   int        `json:"process_count"`
}
