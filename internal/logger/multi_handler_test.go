package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestNewMultiHandler_NilFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mh := NewMultiHandler(nil, slog.NewJSONHandler(&buf, nil), nil)
	if len(mh.handlers) != 1 {
		t.Errorf("Expected 1 handler after filtering nils, got %d", len(mh.handlers))
	}
}

func TestMultiHandler_Enabled(t *testing.T) {
	t.Parallel()

	var buf1, buf2 bytes.Buffer
	mh := NewMultiHandler(
		slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	if mh.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Info should be disabled when every sink starts at warn or above")
	}
	if !mh.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("Warn should be enabled by the first sink")
	}
}

func TestMultiHandler_HandleFansOut(t *testing.T) {
	t.Parallel()

	var local, remote bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&local, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&remote, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("page rendered", "region", "news")

	var entry map[string]any
	if err := json.Unmarshal(local.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON from local sink: %v", err)
	}
	if entry["region"] != "news" {
		t.Errorf("region = %v, want news", entry["region"])
	}
	if remote.Len() != 0 {
		t.Error("Error-level sink should not receive info records")
	}
}

func TestMultiHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewMultiHandler(slog.NewJSONHandler(&buf, nil)).
		WithGroup("visitor").
		WithAttrs([]slog.Attr{slog.String("id", "v-1")})

	slog.New(h).Info("tracked")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	group, ok := entry["visitor"].(map[string]any)
	if !ok || group["id"] != "v-1" {
		t.Errorf("Expected visitor.id='v-1', got %v", entry)
	}
}

type failingHandler struct {
	slog.Handler
}

func (h *failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink unavailable")
}

func TestMultiHandler_FailingSinkDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mh := NewMultiHandler(
		&failingHandler{Handler: slog.NewJSONHandler(&bytes.Buffer{}, nil)},
		slog.NewJSONHandler(&buf, nil),
	)

	record := slog.NewRecord(timeZero, slog.LevelInfo, "hello", 0)
	if err := mh.Handle(context.Background(), record); err == nil {
		t.Error("Expected joined error from failing sink")
	}
	if buf.Len() == 0 {
		t.Error("Healthy sink should still receive the record")
	}
}
