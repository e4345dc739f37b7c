package main

import (
	"context"

	"wealthflow/internal/amqp"
	"wealthflow/internal/cli"
	"wealthflow/internal/config"
	applog "wealthflow/internal/log"
	"wealthflow/internal/notify"
	"wealthflow/internal/services"
	"wealthflow/internal/sheets"
	gsheet "wealthflow/internal/sheets/google"
	"wealthflow/internal/storage"
	"wealthflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger("info", "text", applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(boot, (*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, applog.ComponentWorker)

	logger.Info("Starting wealthflow-worker", "backend", cfg.DataBackend)

	startCtx := context.Background()
	res := cli.InitBackend(startCtx, logger, cfg)
	state := storage.NewStateStore(res.Store)

	var writer sheets.LedgerWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(startCtx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			TransactionsSheet:  cfg.GoogleTransactionsSheet,
			GoalsSheet:         cfg.GoogleGoalsSheet,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		writer = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	var alerter services.Alerter
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Telegram notifier", err)
		}
		alerter = tg
		logger.Info("Telegram daily-limit alerts enabled")
	}

	processor := services.NewExportProcessor(state, writer, alerter, services.DefaultExportProcessorConfig())

	var consumer worker.ChangeConsumer
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		amqpClient, consumer = c, c
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", applog.FieldError, err)
			}
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	if err := worker.NewExportWorker(processor, consumer, nil).Run(ctx, cfg.ExportSchedule); err != nil {
		cli.Fatal(logger, "Export worker failed", err)
	}

	cli.WaitForShutdown(ctx, done)
	stats := processor.Stats()
	logger.Info("Worker stopped gracefully",
		"exports", stats.Exports,
		"failures", stats.Failures,
		"alerts", stats.Alerts)
}
