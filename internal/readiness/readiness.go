// Package readiness tracks whether the server should receive traffic.
package readiness

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

type namedCheck struct {
	name string
	fn   Check
}

// State is ready once startup work is done (snapshot restore, schema) and
// stops being ready when shutdown begins. Checks run on every Status call.
type State struct {
	ready     atomic.Bool
	draining  atomic.Bool
	startTime time.Time // Immutable after construction

	mu     sync.RWMutex
	checks []namedCheck
}

// Status is the /readyz response body.
type Status struct {
	Ready         bool              `json:"ready"`
	Reason        string            `json:"reason,omitempty"`
	UptimeSeconds int               `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// New returns a state that is not ready yet.
func New() *State {
	return &State{startTime: time.Now()}
}

// AddCheck registers a dependency probe.
func (s *State) AddCheck(name string, fn Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, namedCheck{name: name, fn: fn})
}

// MarkReady records that startup finished.
func (s *State) MarkReady() {
	s.ready.Store(true)
}

// MarkDraining records that shutdown started. It cannot be undone.
func (s *State) MarkDraining() {
	s.draining.Store(true)
}

// IsReady reports the startup and shutdown flags without running checks.
func (s *State) IsReady() bool {
	return s.ready.Load() && !s.draining.Load()
}

// Status runs all checks concurrently and reports the combined result.
func (s *State) Status(ctx context.Context) Status {
	status := Status{
		Ready:         true,
		UptimeSeconds: int(time.Since(s.startTime).Seconds()),
	}

	switch {
	case s.draining.Load():
		status.Ready = false
		status.Reason = "shutting down"
		return status
	case !s.ready.Load():
		status.Ready = false
		status.Reason = "startup in progress"
		return status
	}

	s.mu.RLock()
	checks := append([]namedCheck(nil), s.checks...)
	s.mu.RUnlock()
	if len(checks) == 0 {
		return status
	}

	results := make([]string, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		g.Go(func() error {
			if err := c.fn(gctx); err != nil {
				results[i] = err.Error()
				return nil
			}
			results[i] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	status.Checks = make(map[string]string, len(checks))
	for i, c := range checks {
		status.Checks[c.name] = results[i]
		if results[i] != "ok" {
			status.Ready = false
			status.Reason = "dependency check failed"
		}
	}
	return status
}
