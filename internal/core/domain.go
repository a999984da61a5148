package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  CategoryKind = "income"
	Expense CategoryKind = "expense"
)

// DateLayout is the wire format for calendar dates (ISO 8601, no time part).
const DateLayout = "2006-01-02"

type (
	CategoryKind string

	// Category is a user-owned income or expense bucket.
	Category struct {
		ID      int64        `json:"id"`
		Name    string       `json:"name"`
		Kind    CategoryKind `json:"kind"`
		OwnerID int64        `json:"owner_id"`
	}

	// Transaction is the normalized view of a single movement.
	// Sign carries the direction: positive amounts are income,
	// negative amounts are expenses.
	Transaction struct {
		ID         int64   `json:"id"`
		Amount     float64 `json:"amount"`
		OccurredOn string  `json:"occurred_on"`
		Note       string  `json:"note"`
		CategoryID *int64  `json:"category_id"`
		OwnerID    int64   `json:"owner_id"`
	}

	// CategoryTotal is one row of a month summary breakdown.
	CategoryTotal struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}

	// MonthSummary holds server-computed aggregates for one period.
	// Balance is taken from the server as-is, never recomputed locally.
	MonthSummary struct {
		Income     float64         `json:"income"`
		Expense    float64         `json:"expense"`
		Balance    float64         `json:"balance"`
		ByCategory []CategoryTotal `json:"byCategory"`
	}

	// PeriodFilter selects which month's transactions and summary are current.
	PeriodFilter struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}

	// CategoryPayload is the body of a category creation request.
	CategoryPayload struct {
		Name string       `json:"name"`
		Kind CategoryKind `json:"kind"`
	}

	// TransactionPayload is the body of a transaction creation request.
	TransactionPayload struct {
		Amount     float64 `json:"amount"`
		OccurredOn string  `json:"occurred_on"`
		Note       string  `json:"note,omitempty"`
		CategoryID *int64  `json:"category_id,omitempty"`
	}
)

var (
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty category name")
	ErrInvalidKind   = errors.New("invalid category kind")
)

func (k CategoryKind) IsValid() bool {
	switch k {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (f PeriodFilter) Validate() error {
	if f.Year < 1 {
		return ErrInvalidYear
	}
	if f.Month < 1 || f.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// CurrentPeriod returns the filter for the month containing now.
func CurrentPeriod(now time.Time) PeriodFilter {
	return PeriodFilter{Year: now.Year(), Month: int(now.Month())}
}

func (p CategoryPayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.Kind.IsValid() {
		return ErrInvalidKind
	}
	return nil
}

func (p TransactionPayload) Validate() error {
	if p.Amount == 0 {
		return ErrInvalidAmount
	}
	if _, err := time.Parse(DateLayout, p.OccurredOn); err != nil {
		return ErrInvalidDate
	}
	return nil
}
