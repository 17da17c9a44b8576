package logsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(url string) *Client {
	c := NewClient(Config{URL: url, APIKey: "test-key", Timeout: 2 * time.Second})
	c.retry = RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffMultiple: 2.0,
	}
	return c
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := testClient(srv.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestClient_PingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if err := testClient(srv.URL).Ping(context.Background()); err == nil {
		t.Error("Expected Ping to fail on 503")
	}
}

func TestClient_FetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Missing auth header, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Errorf("Expected limit 2, got %q", got)
		}
		if got := r.URL.Query().Get("after"); got == "" {
			t.Error("Expected after parameter")
		}

		w.Header().Set("X-Continuation", "tok-2")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"id": "r1",
					"dateTime": "2024-03-01T10:00:00Z",
					"nikoOrderId": "ord-1",
					"url": "https://api.example.com/orders",
					"statusCode": 200
				},
				{
					"id": "r2",
					"dateTime": "2024-03-01T10:01:00Z",
					"nikoOrderId": null,
					"url": "https://api.example.com/orders",
					"statusCode": null,
					"response": {"payload": "{\"issue\":[]}"}
				}
			]
		}`))
	}))
	defer srv.Close()

	after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records, token, err := testClient(srv.URL).FetchPage(context.Background(), after, "", 2)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if token != "tok-2" {
		t.Errorf("Expected continuation tok-2, got %q", token)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].OrderID != "ord-1" || records[0].StatusCode == nil || *records[0].StatusCode != 200 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].OrderID != "" {
		t.Errorf("Expected empty identity for null nikoOrderId, got %q", records[1].OrderID)
	}
	if records[1].StatusCode != nil {
		t.Errorf("Expected nil status for null statusCode, got %v", records[1].StatusCode)
	}
	if records[1].Payload != `{"issue":[]}` {
		t.Errorf("Expected payload carried through, got %q", records[1].Payload)
	}
}

func TestClient_FetchPageSendsContinuation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Continuation"); got != "tok-1" {
			t.Errorf("Expected continuation header tok-1, got %q", got)
		}
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	records, token, err := testClient(srv.URL).FetchPage(context.Background(), time.Time{}, "tok-1", 10)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if len(records) != 0 || token != "" {
		t.Errorf("Expected empty final page, got %d records token %q", len(records), token)
	}
}

func TestClient_FetchPageRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).FetchPage(context.Background(), time.Time{}, "", 10)
	if err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestClient_FetchPageRateLimitIsFatal(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).FetchPage(context.Background(), time.Time{}, "", 10)
	if err == nil {
		t.Fatal("Expected error on 429")
	}
	if attempts != 1 {
		t.Errorf("Expected no retry on 429, got %d attempts", attempts)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"server error retries", &statusError{Code: 500}, ActionRetry},
		{"bad gateway retries", &statusError{Code: 502}, ActionRetry},
		{"rate limit is fatal", &statusError{Code: 429}, ActionFatal},
		{"forbidden is fatal", &statusError{Code: 403}, ActionFatal},
		{"unauthorized is fatal", &statusError{Code: 401}, ActionFatal},
		{"not found is fatal", &statusError{Code: 404}, ActionFatal},
		{"generic error retries", context.DeadlineExceeded, ActionRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}
