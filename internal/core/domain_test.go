package core

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodFilterValidate(t *testing.T) {
	cases := []struct {
		filter PeriodFilter
		err    error
	}{
		{PeriodFilter{Year: 2024, Month: 3}, nil},
		{PeriodFilter{Year: 2024, Month: 1}, nil},
		{PeriodFilter{Year: 2024, Month: 12}, nil},
		{PeriodFilter{Year: 2024, Month: 0}, ErrInvalidMonth},
		{PeriodFilter{Year: 2024, Month: 13}, ErrInvalidMonth},
		{PeriodFilter{Year: 0, Month: 6}, ErrInvalidYear},
	}
	for _, tc := range cases {
		if err := tc.filter.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("%+v: got %v, want %v", tc.filter, err, tc.err)
		}
	}
}

func TestCurrentPeriod(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	got := CurrentPeriod(now)
	if got.Year != 2026 || got.Month != 9 {
		t.Fatalf("got %+v", got)
	}
}

func TestCategoryPayloadValidate(t *testing.T) {
	if err := (CategoryPayload{Name: "Vivienda", Kind: Expense}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (CategoryPayload{Name: "  ", Kind: Income}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("got %v, want ErrEmptyName", err)
	}
	if err := (CategoryPayload{Name: "x", Kind: "savings"}).Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("got %v, want ErrInvalidKind", err)
	}
}

func TestTransactionPayloadValidate(t *testing.T) {
	if err := (TransactionPayload{Amount: -50.25, OccurredOn: "2024-03-02"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (TransactionPayload{Amount: 0, OccurredOn: "2024-03-02"}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("got %v, want ErrInvalidAmount", err)
	}
	if err := (TransactionPayload{Amount: 1, OccurredOn: "02/03/2024"}).Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("got %v, want ErrInvalidDate", err)
	}
}
