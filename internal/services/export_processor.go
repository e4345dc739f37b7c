package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"wealthflow/internal/core"
	"wealthflow/internal/sheets"
	"wealthflow/internal/storage"
)

// Alerter delivers a daily-limit alert.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// StateLoader reads the persisted state.
type StateLoader interface {
	Load(ctx context.Context) (core.State, error)
}

type ExportProcessorConfig struct {
	// MaxRetries is the number of attempts per export (default: 3)
	MaxRetries int

	// RetryDelay is the wait before the first retry, doubled on each attempt (default: 2s)
	RetryDelay time.Duration
}

func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// ExportStats summarises the processor's work since start.
type ExportStats struct {
	Exports      int       `json:"exports"`
	Skipped      int       `json:"skipped"`
	Failures     int       `json:"failures"`
	Alerts       int       `json:"alerts"`
	LastExportAt time.Time `json:"lastExportAt"`
}

// ExportProcessor copies the persisted ledger to a spreadsheet and raises
// daily-limit alerts. It always exports the state as read at processing
// time, so a change older than the last export needs no work.
type ExportProcessor struct {
	loader  StateLoader
	writer  sheets.LedgerWriter
	alerter Alerter
	config  ExportProcessorConfig
	now     func() time.Time

	mu             sync.Mutex
	stats          ExportStats
	lastAlertDay   string
	lastExportedAt time.Time
}

// NewExportProcessor wires the processor. writer and alerter may be nil.
func NewExportProcessor(loader StateLoader, writer sheets.LedgerWriter, alerter Alerter, config ExportProcessorConfig) *ExportProcessor {
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	return &ExportProcessor{
		loader:  loader,
		writer:  writer,
		alerter: alerter,
		config:  config,
		now:     time.Now,
	}
}

// HandleChange processes one ledger change published at changedAt.
func (p *ExportProcessor) HandleChange(ctx context.Context, keys []string, changedAt time.Time) error {
	p.mu.Lock()
	stale := !changedAt.IsZero() && changedAt.Before(p.lastExportedAt)
	if stale {
		p.stats.Skipped++
	}
	p.mu.Unlock()
	if stale {
		slog.DebugContext(ctx, "Skipping change already covered by a later export", "changed_at", changedAt)
		return nil
	}

	startedAt := p.now()
	state, err := p.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	txChanged := slices.Contains(keys, storage.KeyTransactions)
	goalsChanged := slices.Contains(keys, storage.KeyGoals)
	settingsChanged := slices.Contains(keys, storage.KeySettings)

	if err := p.export(ctx, state, txChanged, goalsChanged, startedAt); err != nil {
		return err
	}
	if txChanged || settingsChanged {
		p.checkLimit(ctx, state)
	}
	return nil
}

// ExportAll exports every sheet, used by the scheduled run.
func (p *ExportProcessor) ExportAll(ctx context.Context) error {
	startedAt := p.now()
	state, err := p.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if err := p.export(ctx, state, true, true, startedAt); err != nil {
		return err
	}
	p.checkLimit(ctx, state)
	return nil
}

func (p *ExportProcessor) Stats() ExportStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *ExportProcessor) export(ctx context.Context, state core.State, txs, goals bool, startedAt time.Time) error {
	if p.writer == nil || (!txs && !goals) {
		return nil
	}

	err := p.withRetry(ctx, func() error {
		if txs {
			if err := p.writer.ReplaceTransactions(ctx, state.Transactions); err != nil {
				return fmt.Errorf("export transactions: %w", err)
			}
		}
		if goals {
			if err := p.writer.ReplaceGoals(ctx, state.Goals); err != nil {
				return fmt.Errorf("export goals: %w", err)
			}
		}
		return nil
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.stats.Failures++
		return err
	}
	p.stats.Exports++
	p.stats.LastExportAt = p.now()
	if startedAt.After(p.lastExportedAt) {
		p.lastExportedAt = startedAt
	}

	slog.InfoContext(ctx, "Ledger exported",
		"transactions", len(state.Transactions),
		"goals", len(state.Goals))
	return nil
}

// withRetry runs fn up to MaxRetries times with exponential backoff.
func (p *ExportProcessor) withRetry(ctx context.Context, fn func() error) error {
	delay := p.config.RetryDelay
	var err error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == p.config.MaxRetries {
			break
		}
		slog.WarnContext(ctx, "Export failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	slog.ErrorContext(ctx, "Export failed permanently", "attempts", p.config.MaxRetries, "error", err)
	return err
}

// checkLimit sends at most one alert per UTC day while spending is over the limit.
func (p *ExportProcessor) checkLimit(ctx context.Context, state core.State) {
	if p.alerter == nil {
		return
	}
	now := p.now()
	if !core.IsOverLimit(state.Transactions, state.Settings, now) {
		return
	}

	day := now.UTC().Format("2006-01-02")
	p.mu.Lock()
	if p.lastAlertDay == day {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	text := LimitAlertText(core.TodayExpenses(state.Transactions, now), state.Settings)
	if err := p.alerter.Alert(ctx, text); err != nil {
		slog.ErrorContext(ctx, "Failed to send limit alert", "error", err)
		return
	}

	p.mu.Lock()
	p.lastAlertDay = day
	p.stats.Alerts++
	p.mu.Unlock()
}
