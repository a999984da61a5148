package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dru/internal/amqp"
	"dru/internal/cli"
	"dru/internal/config"
	"dru/internal/export"
	"dru/internal/log"
	"dru/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting dru-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	sheetsClient, err := export.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.LedgerSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(sheetsClient)

	go func() {
		handler := func(event *amqp.LedgerEvent) error {
			return exportWorker.HandleLedgerEvent(ctx, event)
		}
		if err := amqpClient.ConsumeLedgerEvents(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Event consumption failed", log.FieldError, err)
			}
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give the consumer time to finish the delivery in flight
	time.Sleep(5 * time.Second)
	logger.Info("Worker shutdown complete")
}
