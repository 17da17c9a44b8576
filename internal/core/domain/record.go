package domain

import "time"

// LogRecord is one outbound order-submission attempt pulled from the remote log.
// The stream is a history, not a snapshot: the same OrderID can appear many
// times as an order is submitted, fails and is retried.
type LogRecord struct {
	ID         string    `json:"id"`
	EventTime  time.Time `json:"dateTime"`
	OrderID    string    `json:"nikoOrderId"` // empty for malformed source records
	URL        string    `json:"url"`
	StatusCode *int      `json:"statusCode"` // nil = not yet resolved by the source
	Payload    string    `json:"payload"`    // raw response body, normally JSON
}

// Attempt carries the per-record values applied to an order row.
type Attempt struct {
	OrderID    string
	URL        string
	StatusCode *int
	Timestamp  time.Time
	Success    bool
}
