package amqp

import (
	"testing"
	"time"
)

func TestNewLedgerEvent(t *testing.T) {
	event := NewLedgerEvent(42, 7, "-50.25", "2024-06-15", "groceries", "Food")

	if event.Kind != KindTransactionCreated {
		t.Errorf("NewLedgerEvent() Kind = %v, want %v", event.Kind, KindTransactionCreated)
	}
	if event.ID != 42 {
		t.Errorf("NewLedgerEvent() ID = %v, want 42", event.ID)
	}
	if event.OwnerID != 7 {
		t.Errorf("NewLedgerEvent() OwnerID = %v, want 7", event.OwnerID)
	}
	if event.Amount != "-50.25" {
		t.Errorf("NewLedgerEvent() Amount = %v, want -50.25", event.Amount)
	}
	if event.Timestamp.IsZero() {
		t.Error("NewLedgerEvent() Timestamp should not be zero")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("NewLedgerEvent() Timestamp should be recent")
	}
}

func TestLedgerEvent_JSON(t *testing.T) {
	timestamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	event := &LedgerEvent{
		Kind:       KindTransactionCreated,
		ID:         42,
		OwnerID:    7,
		Amount:     "120.00",
		OccurredOn: "2024-06-15",
		Note:       "salary",
		Category:   "Income",
		Timestamp:  timestamp,
	}

	jsonBytes, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerEventFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON() error = %v", err)
	}

	if parsed.ID != event.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, event.ID)
	}
	if parsed.Amount != event.Amount {
		t.Errorf("Parsed Amount = %v, want %v", parsed.Amount, event.Amount)
	}
	if parsed.Category != event.Category {
		t.Errorf("Parsed Category = %v, want %v", parsed.Category, event.Category)
	}
	if !parsed.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, event.Timestamp)
	}
}

func TestLedgerEvent_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"id": "not_a_number", "owner_id": 1}`)

	_, err := LedgerEventFromJSON(invalidJSON)
	if err == nil {
		t.Error("LedgerEventFromJSON() should fail with invalid JSON")
	}
}
