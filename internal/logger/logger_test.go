package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	log.Debug("hidden")
	log.Info("resolved year", slog.Int("year", 1622))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "resolved year" {
		t.Errorf("msg = %v, want %q", entry["msg"], "resolved year")
	}
	if entry["year"] != float64(1622) {
		t.Errorf("year = %v, want 1622", entry["year"])
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Errorf("RequestID(empty) = %q, want empty", got)
	}

	ctx = WithRequestID(ctx, "abc-123")
	if got := RequestID(ctx); got != "abc-123" {
		t.Errorf("RequestID() = %q, want %q", got, "abc-123")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "info", "text")

	FromContext(WithRequestID(context.Background(), "req-42"), base).Info("fallback")
	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("log output %q missing request id", buf.String())
	}

	buf.Reset()
	scoped := base.With(slog.String("route", "/api/v1/calendar"))
	ctx := WithLogger(context.Background(), scoped)
	FromContext(ctx, base).Info("scoped")
	if !strings.Contains(buf.String(), "route=/api/v1/calendar") {
		t.Errorf("log output %q missing scoped attribute", buf.String())
	}
}

func TestFromContext_NilFallback(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	FromContext(context.Background(), nil).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("log output %q, want the default logger used", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard() logger is enabled")
	}
}
