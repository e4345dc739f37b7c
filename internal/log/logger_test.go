package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONFormatAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentInsight, Output: &buf})

	logger.Info("refreshed", FieldGeneration, 3)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec[FieldComponent] != ComponentInsight {
		t.Fatalf("expected component %q, got %v", ComponentInsight, rec[FieldComponent])
	}
	if rec[FieldGeneration] != float64(3) {
		t.Fatalf("expected generation 3, got %v", rec[FieldGeneration])
	}
}

func TestWithComponent_DoesNotDuplicateField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "text", Output: &buf}).WithComponent(ComponentLedger)

	logger.Info("ok")

	if n := strings.Count(buf.String(), "component="); n != 1 {
		t.Fatalf("expected one component field, got %d: %s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "component=ledger") {
		t.Fatalf("expected ledger component: %s", buf.String())
	}
}

func TestLogFields_ToSliceIsSorted(t *testing.T) {
	got := NewFields().
		WithOperation(OpExport).
		WithError(errors.New("boom")).
		WithError(nil).
		WithRequestID("").
		ToSlice()

	want := []any{FieldError, "boom", FieldOperation, OpExport}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMiddleware_RequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "text", Output: &buf, Component: ComponentHTTP})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-42" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "handled")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Fatalf("expected request id in record: %s", buf.String())
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", l)
	}
}
