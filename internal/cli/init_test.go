package cli

import (
	"context"
	"log/slog"
	"testing"

	"wealthflow/internal/config"
	applog "wealthflow/internal/log"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("debug", "json", applog.ComponentWorker)
	if logger.Component() != applog.ComponentWorker {
		t.Fatalf("expected worker component, got %s", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug level should be enabled")
	}
	if slog.Default() != logger.Logger {
		t.Fatalf("logger should be installed as default")
	}
}

func TestInitBackend_Memory(t *testing.T) {
	cfg := config.Load()
	cfg.DataBackend = "memory"
	cfg.AMQPURL = ""

	res := InitBackend(context.Background(), applog.New(applog.DefaultConfig()), cfg)
	if res.Store == nil || res.Publisher != nil {
		t.Fatalf("unexpected backend %+v", res)
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
