package readiness

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestStateInitial(t *testing.T) {
	t.Parallel()
	state := New()

	if state.IsReady() {
		t.Error("Expected IsReady() to return false initially")
	}

	status := state.Status(context.Background())
	if status.Ready {
		t.Error("Expected status.Ready to be false initially")
	}
	if status.Reason != "startup in progress" {
		t.Errorf("Expected reason 'startup in progress', got %q", status.Reason)
	}
}

func TestStateMarkReady(t *testing.T) {
	t.Parallel()
	state := New()
	state.MarkReady()

	if !state.IsReady() {
		t.Error("Expected IsReady() to return true after MarkReady()")
	}

	status := state.Status(context.Background())
	if !status.Ready {
		t.Error("Expected status.Ready to be true after MarkReady()")
	}
	if status.Reason != "" {
		t.Errorf("Expected empty reason after MarkReady(), got %q", status.Reason)
	}
}

func TestStateDraining(t *testing.T) {
	t.Parallel()
	state := New()
	state.MarkReady()
	state.MarkDraining()

	if state.IsReady() {
		t.Error("Expected IsReady() to return false while draining")
	}
	status := state.Status(context.Background())
	if status.Ready || status.Reason != "shutting down" {
		t.Errorf("Expected not ready with reason 'shutting down', got %+v", status)
	}

	// Marking ready again does not undo draining.
	state.MarkReady()
	if state.IsReady() {
		t.Error("MarkReady() must not undo MarkDraining()")
	}
}

func TestStateChecks(t *testing.T) {
	t.Parallel()
	state := New()
	state.MarkReady()
	state.AddCheck("database", func(context.Context) error { return nil })
	state.AddCheck("snapshot", func(context.Context) error { return errors.New("bucket unreachable") })

	status := state.Status(context.Background())
	if status.Ready {
		t.Error("Expected not ready when a check fails")
	}
	if status.Checks["database"] != "ok" {
		t.Errorf("database check = %q, want ok", status.Checks["database"])
	}
	if status.Checks["snapshot"] != "bucket unreachable" {
		t.Errorf("snapshot check = %q, want error message", status.Checks["snapshot"])
	}
}

func TestStateChecksPass(t *testing.T) {
	t.Parallel()
	state := New()
	state.MarkReady()
	state.AddCheck("database", func(context.Context) error { return nil })

	status := state.Status(context.Background())
	if !status.Ready {
		t.Errorf("Expected ready, got %+v", status)
	}
}

func TestStateConcurrentAccess(t *testing.T) {
	t.Parallel()
	state := New()
	state.AddCheck("noop", func(context.Context) error { return nil })

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			_ = state.IsReady()
			_ = state.Status(context.Background())
		})
	}
	wg.Go(state.MarkReady)
	wg.Wait()

	if !state.IsReady() {
		t.Error("Expected IsReady() to return true after concurrent MarkReady()")
	}
}
