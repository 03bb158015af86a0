package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/garyellow/itdept-site/internal/ctxutil"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{"Valid debug level", "debug", slog.LevelDebug},
		{"Valid info level", "info", slog.LevelInfo},
		{"Valid warn level", "warn", slog.LevelWarn},
		{"Warning alias", "WARNING", slog.LevelWarn},
		{"Valid error level", "error", slog.LevelError},
		{"Invalid level defaults to info", "invalid", slog.LevelInfo},
		{"Empty level defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseLevel(tt.level); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v (raw=%q)", err, buf.String())
	}
	return entry
}

func TestLogger_KeyRenaming(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)
	log.Warn("slow render")

	entry := decode(t, &buf)
	if entry["message"] != "slow render" {
		t.Errorf("message = %v, want 'slow render'", entry["message"])
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want 'warning'", entry["level"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp key missing")
	}
}

func TestLogger_FieldChain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("news").
		WithField("index", 2).
		WithFields(map[string]any{"total": 3}).
		WithError(errors.New("boom")).
		Error("carousel move failed")

	entry := decode(t, &buf)
	if entry["module"] != "news" {
		t.Errorf("module = %v, want news", entry["module"])
	}
	if entry["index"] != float64(2) || entry["total"] != float64(3) {
		t.Errorf("unexpected fields: %v", entry)
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)
	log.Info("dropped")
	log.Debugf("dropped %d", 1)

	if buf.Len() != 0 {
		t.Errorf("expected no output below error level, got %q", buf.String())
	}
	if log.Level() != slog.LevelError {
		t.Errorf("Level() = %v, want error", log.Level())
	}
}

func TestLogger_ContextValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithVisitorID(context.Background(), "visitor-1")
	log.WithRequestID("req-9").InfoContext(ctx, "page served")

	entry := decode(t, &buf)
	if entry["visitor_id"] != "visitor-1" {
		t.Errorf("visitor_id = %v, want visitor-1", entry["visitor_id"])
	}
	if entry["request_id"] != "req-9" {
		t.Errorf("request_id = %v, want req-9", entry["request_id"])
	}
}
