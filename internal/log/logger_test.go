package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got %v err=%v", tc.in, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf, Component: ComponentLedger})
	l.Info("expense added", FieldExpenseID, 7)

	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "expense_id=7") {
		t.Fatalf("unexpected log line: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentEvents).Warn("publish failed")
	if !strings.Contains(buf.String(), "component=events") {
		t.Fatalf("expected events component: %s", buf.String())
	}
}

func TestLogFieldsWithError(t *testing.T) {
	f := NewFields().WithOperation(OpRelease).WithError(nil)
	if _, ok := f[FieldError]; ok {
		t.Fatalf("nil error should be skipped: %v", f)
	}
	f.WithError(errors.New("boom"))
	if f[FieldError] != "boom" || f[FieldOperation] != OpRelease {
		t.Fatalf("unexpected fields %v", f)
	}
}

func TestRequestIDContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf})
	ctx := context.WithValue(context.Background(), LoggerContextKey, l)
	ctx = WithRequestID(ctx, "req_1")

	if RequestID(ctx) != "req_1" {
		t.Fatalf("request id not stored")
	}
	FromContext(ctx).InfoContext(ctx, "hello")
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("expected request id in log: %s", buf.String())
	}
}

func TestLogRequestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf})
	ctx := context.WithValue(context.Background(), LoggerContextKey, l)
	r := httptest.NewRequest("GET", "/expenses?q=x", nil)
	r.Header.Set("User-Agent", "ledger-cli/1.0")

	LogRequest(ctx, r, 503, 12, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "status_code=503") {
		t.Fatalf("expected error-level log: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "user_agent=ledger-cli/1.0") {
		t.Fatalf("expected user agent in log: %s", buf.String())
	}

	buf.Reset()
	LogRequest(ctx, r, 404, 1, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected warn-level log: %s", buf.String())
	}
}
