package logsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/domain"
)

// Config holds log source connection configuration.
type Config struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client reads the remote append-only submission log over HTTP. Pages arrive
// ordered by event time ascending; the continuation token echoes the source's
// paging state between requests.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      RetryConfig
}

// NewClient creates a new log source client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: DefaultRetryConfig,
	}
}

// Ping probes source connectivity. A run is skipped entirely when this fails.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("source probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("source probe: http %d", resp.StatusCode)
	}
	return nil
}

// logItem mirrors one document in the source's log container.
type logItem struct {
	ID          string    `json:"id"`
	DateTime    time.Time `json:"dateTime"`
	NikoOrderID *string   `json:"nikoOrderId"`
	URL         string    `json:"url"`
	StatusCode  *int      `json:"statusCode"`
	Response    *struct {
		Payload string `json:"payload"`
	} `json:"response"`
}

func (it *logItem) toDomain() domain.LogRecord {
	rec := domain.LogRecord{
		ID:         it.ID,
		EventTime:  it.DateTime,
		URL:        it.URL,
		StatusCode: it.StatusCode,
	}
	if it.NikoOrderID != nil {
		rec.OrderID = *it.NikoOrderID
	}
	if it.Response != nil {
		rec.Payload = it.Response.Payload
	}
	return rec
}

type pageResponse struct {
	Items []logItem `json:"items"`
}

// FetchPage fetches one page of log records at or after the given lower
// bound. An empty returned token means there are no further pages. Transient
// errors are retried with backoff before surfacing.
func (c *Client) FetchPage(
	ctx context.Context,
	after time.Time,
	token string,
	limit int,
) ([]domain.LogRecord, string, error) {
	var records []domain.LogRecord
	var nextToken string

	err := c.doWithRetry(ctx, func() error {
		var err error
		records, nextToken, err = c.fetchPage(ctx, after, token, limit)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return records, nextToken, nil
}

func (c *Client) fetchPage(
	ctx context.Context,
	after time.Time,
	token string,
	limit int,
) ([]domain.LogRecord, string, error) {
	u, err := url.Parse(c.baseURL + "/logs")
	if err != nil {
		return nil, "", fmt.Errorf("parse source url: %w", err)
	}

	q := u.Query()
	if !after.IsZero() {
		q.Set("after", after.UTC().Format(time.RFC3339Nano))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	if token != "" {
		req.Header.Set("X-Continuation", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch logs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", &statusError{Code: resp.StatusCode, Body: string(body)}
	}

	var page pageResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", fmt.Errorf("decode page: %w", err)
	}

	records := make([]domain.LogRecord, 0, len(page.Items))
	for i := range page.Items {
		records = append(records, page.Items[i].toDomain())
	}
	return records, resp.Header.Get("X-Continuation"), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
