package health

import (
	"context"
	"sync"
	"time"
)

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Monitor aggregates dependency probes into a system health report.
type Monitor struct {
	mu     sync.RWMutex
	checks map[string]Check

	// required components turn the system critical when down; optional ones
	// only degrade it
	required map[string]bool
}

// NewMonitor creates a new health monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		checks:   make(map[string]Check),
		required: make(map[string]bool),
	}
}

// Register adds a dependency probe.
func (m *Monitor) Register(name string, required bool, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
	m.required[name] = required
}

// CheckHealth probes all registered dependencies. Worst case wins: a failing
// required component is critical, a failing optional one degraded.
func (m *Monitor) CheckHealth(ctx context.Context) Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := Report{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(m.checks)),
	}

	for name, check := range m.checks {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := check(probeCtx)
		cancel()

		if err == nil {
			report.Components[name] = ComponentHealth{Status: StatusHealthy}
			continue
		}

		if m.required[name] {
			report.Components[name] = ComponentHealth{Status: StatusCritical, Error: err.Error()}
			report.SystemStatus = StatusCritical
		} else {
			report.Components[name] = ComponentHealth{Status: StatusDegraded, Error: err.Error()}
			if report.SystemStatus != StatusCritical {
				report.SystemStatus = StatusDegraded
			}
		}
	}

	return report
}
