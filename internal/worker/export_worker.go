// Package worker turns consumed ledger events into spreadsheet rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"dru/internal/amqp"
)

// LedgerAppender is the destination for exported ledger rows.
type LedgerAppender interface {
	AppendLedgerRow(ctx context.Context, event *amqp.LedgerEvent) error
}

// ExportWorker handles export of ledger events to Google Sheets
type ExportWorker struct {
	appender LedgerAppender
}

func NewExportWorker(appender LedgerAppender) *ExportWorker {
	return &ExportWorker{appender: appender}
}

// HandleLedgerEvent processes a single ledger event from AMQP
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"kind", event.Kind,
		"id", event.ID,
		"owner_id", event.OwnerID)

	if event.Kind != amqp.KindTransactionCreated {
		// Unknown kinds are acked and dropped so old workers don't
		// wedge the queue when new event kinds ship.
		slog.WarnContext(ctx, "Skipping unknown event kind", "kind", event.Kind, "id", event.ID)
		return nil
	}

	if err := w.appender.AppendLedgerRow(ctx, event); err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}

	slog.InfoContext(ctx, "Exported ledger event",
		"id", event.ID,
		"amount", event.Amount,
		"occurred_on", event.OccurredOn)
	return nil
}
