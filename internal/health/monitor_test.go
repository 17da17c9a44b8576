package health

import (
	"context"
	"errors"
	"testing"
)

func TestMonitor_AllHealthy(t *testing.T) {
	m := NewMonitor()
	m.Register("database", true, func(ctx context.Context) error { return nil })
	m.Register("source", true, func(ctx context.Context) error { return nil })

	report := m.CheckHealth(context.Background())
	if report.SystemStatus != StatusHealthy {
		t.Errorf("Expected healthy, got %s", report.SystemStatus)
	}
	if len(report.Components) != 2 {
		t.Errorf("Expected 2 components, got %d", len(report.Components))
	}
}

func TestMonitor_RequiredFailureIsCritical(t *testing.T) {
	m := NewMonitor()
	m.Register("database", true, func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	m.Register("redis", false, func(ctx context.Context) error { return nil })

	report := m.CheckHealth(context.Background())
	if report.SystemStatus != StatusCritical {
		t.Errorf("Expected critical, got %s", report.SystemStatus)
	}
	if report.Components["database"].Error == "" {
		t.Error("Expected error detail on failing component")
	}
}

func TestMonitor_OptionalFailureDegrades(t *testing.T) {
	m := NewMonitor()
	m.Register("source", true, func(ctx context.Context) error { return nil })
	m.Register("redis", false, func(ctx context.Context) error {
		return errors.New("timeout")
	})

	report := m.CheckHealth(context.Background())
	if report.SystemStatus != StatusDegraded {
		t.Errorf("Expected degraded, got %s", report.SystemStatus)
	}
}
