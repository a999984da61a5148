package services

import (
	"context"
	"fmt"
	"log/slog"

	"dru/internal/amqp"
	"dru/internal/storage"
)

// LedgerPublisher publishes ledger events for the export worker.
type LedgerPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// TransactionService orchestrates transaction writes across storage and AMQP
type TransactionService struct {
	storage   storage.Repository
	publisher LedgerPublisher
}

func NewTransactionService(repo storage.Repository, publisher LedgerPublisher) *TransactionService {
	return &TransactionService{
		storage:   repo,
		publisher: publisher,
	}
}

// CreateTransaction saves a transaction locally and publishes a ledger event
func (s *TransactionService) CreateTransaction(ctx context.Context, record storage.TransactionRecord) (storage.TransactionRecord, error) {
	saved, err := s.storage.CreateTransaction(ctx, record)
	if err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("save transaction: %w", err)
	}

	// Publish async ledger event (non-blocking for the caller)
	if err := s.publishCreated(ctx, saved); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"id", saved.ID, "error", err)
		// Don't fail the request, the transaction is saved locally
	}

	return saved, nil
}

func (s *TransactionService) publishCreated(ctx context.Context, record storage.TransactionRecord) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Ledger publisher not available, skipping event")
		return nil
	}

	event := amqp.NewLedgerEvent(
		record.ID,
		record.OwnerID,
		record.Amount.String(),
		record.OccurredOn,
		record.Note,
		s.categoryLabel(ctx, record),
	)
	return s.publisher.PublishLedgerEvent(ctx, event)
}

func (s *TransactionService) categoryLabel(ctx context.Context, record storage.TransactionRecord) string {
	if record.CategoryID == nil {
		return "Uncategorized"
	}
	categories, err := s.storage.ListCategories(ctx, record.OwnerID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to resolve category label", "error", err)
		return "Uncategorized"
	}
	for _, c := range categories {
		if c.ID == *record.CategoryID {
			return c.Name
		}
	}
	return "Uncategorized"
}
