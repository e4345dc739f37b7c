package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"wealthflow/internal/amqp"
)

// ChangeConsumer delivers ledger-change messages.
type ChangeConsumer interface {
	ConsumeLedgerChanges(ctx context.Context, handler func(context.Context, *amqp.LedgerChangeMessage) error) error
}

// Exporter is the work the worker drives.
type Exporter interface {
	HandleChange(ctx context.Context, keys []string, changedAt time.Time) error
	ExportAll(ctx context.Context) error
}

// ExportWorker mirrors the ledger to the spreadsheet on every change event
// and on a schedule.
type ExportWorker struct {
	exporter  Exporter
	consumer  ChangeConsumer
	scheduler *Scheduler
}

// NewExportWorker wires the worker. consumer may be nil when only the
// scheduled export is wanted.
func NewExportWorker(exporter Exporter, consumer ChangeConsumer, scheduler *Scheduler) *ExportWorker {
	if scheduler == nil {
		scheduler = NewScheduler()
	}
	return &ExportWorker{exporter: exporter, consumer: consumer, scheduler: scheduler}
}

// HandleLedgerChange processes one message. Returning an error requeues it.
func (w *ExportWorker) HandleLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"kind", msg.Kind,
		"keys", msg.Keys,
		"revision", msg.Revision)
	return w.exporter.HandleChange(ctx, msg.Keys, msg.Timestamp)
}

// Run exports once, then serves events and scheduled exports until ctx is done.
func (w *ExportWorker) Run(ctx context.Context, schedule string) error {
	if err := w.exporter.ExportAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial export failed", "error", err)
	}

	if err := w.scheduler.Add(ctx, "export", schedule, func(ctx context.Context) {
		if err := w.exporter.ExportAll(ctx); err != nil {
			slog.ErrorContext(ctx, "Scheduled export failed", "error", err)
		}
	}); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.scheduler.Run(gctx) })
	if w.consumer != nil {
		g.Go(func() error { return w.consumer.ConsumeLedgerChanges(gctx, w.HandleLedgerChange) })
	} else {
		slog.WarnContext(ctx, "No AMQP consumer configured, relying on scheduled exports")
	}

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
