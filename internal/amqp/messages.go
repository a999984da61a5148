package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEvent announces a transaction written to the ledger. It carries
// the full row so the export worker does not need database access.
type LedgerEvent struct {
	Kind       string    `json:"kind"`
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Amount     string    `json:"amount"`
	OccurredOn string    `json:"occurred_on"`
	Note       string    `json:"note"`
	Category   string    `json:"category"`
	Timestamp  time.Time `json:"timestamp"`
}

const KindTransactionCreated = "transaction.created"

// NewLedgerEvent creates a transaction.created event
func NewLedgerEvent(id, ownerID int64, amount, occurredOn, note, category string) *LedgerEvent {
	return &LedgerEvent{
		Kind:       KindTransactionCreated,
		ID:         id,
		OwnerID:    ownerID,
		Amount:     amount,
		OccurredOn: occurredOn,
		Note:       note,
		Category:   category,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
