package logsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialDelay:    1 * time.Second,
	MaxDelay:        30 * time.Second,
	BackoffMultiple: 2.0,
}

// statusError is a non-2xx HTTP response from the source.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFatal
)

// ClassifyError determines the action for a given error. Rate limits and
// client errors stop the run immediately; replaying the batch later is the
// retry mechanism for those. Network errors and 5xx get backed off locally.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry // Should not happen
	}

	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.Code == http.StatusTooManyRequests,
			se.Code == http.StatusForbidden,
			se.Code == http.StatusUnauthorized:
			return ActionFatal
		case se.Code >= 500:
			return ActionRetry
		case se.Code >= 400:
			return ActionFatal
		}
	}

	// Default to Retry (network errors, timeouts)
	return ActionRetry
}

// doWithRetry executes a source call with exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := c.retry.InitialDelay

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if ClassifyError(err) == ActionFatal {
			return err
		}

		if attempt == c.retry.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * c.retry.BackoffMultiple)
		if delay > c.retry.MaxDelay {
			delay = c.retry.MaxDelay
		}
	}

	return fmt.Errorf("source call failed after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}
