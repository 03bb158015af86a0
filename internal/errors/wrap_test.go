package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorWrapper(t *testing.T) {
	t.Parallel()

	wrapper := NewWrapper("news", "move_carousel")

	t.Run("Wrap returns nil for nil error", func(t *testing.T) {
		if result := wrapper.Wrap(nil, "could not move the news carousel"); result != nil {
			t.Errorf("expected nil, got %v", result)
		}
	})

	t.Run("Wrap creates WrappedError", func(t *testing.T) {
		baseErr := errors.New("database connection failed")
		wrapped := wrapper.Wrap(baseErr, "could not move the news carousel")

		var wrappedErr *WrappedError
		if !errors.As(wrapped, &wrappedErr) {
			t.Fatal("expected WrappedError type")
		}
		if wrappedErr.Module != "news" {
			t.Errorf("expected module 'news', got '%s'", wrappedErr.Module)
		}
		if wrappedErr.Operation != "move_carousel" {
			t.Errorf("expected operation 'move_carousel', got '%s'", wrappedErr.Operation)
		}
		if !errors.Is(wrapped, baseErr) {
			t.Error("wrapped error should unwrap to base error")
		}
	})

	t.Run("Wrapf formats message", func(t *testing.T) {
		wrapped := wrapper.Wrapf(ErrNotFound, "no news item at %d", 7)

		if got := GetUserMessage(wrapped); got != "no news item at 7" {
			t.Errorf("expected 'no news item at 7', got '%s'", got)
		}
	})
}

func TestGetUserMessage(t *testing.T) {
	t.Parallel()

	if got := GetUserMessage(nil); got != "" {
		t.Errorf("expected empty message for nil, got %q", got)
	}

	plain := errors.New("plain failure")
	if got := GetUserMessage(plain); got != "plain failure" {
		t.Errorf("expected error string, got %q", got)
	}

	inner := NewWrapper("theme", "toggle").Wrap(plain, "theme could not be saved")
	outer := fmt.Errorf("handler: %w", inner)
	if got := GetUserMessage(outer); got != "theme could not be saved" {
		t.Errorf("expected message from wrapped chain, got %q", got)
	}
}
