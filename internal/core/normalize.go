package core

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type (
	// TransactionDTO is a transaction exactly as received from the server.
	// Amount may arrive as a JSON number or as a decimal string.
	TransactionDTO struct {
		ID         int64  `json:"id"`
		Amount     any    `json:"amount"`
		OccurredOn string `json:"occurred_on"`
		Note       string `json:"note"`
		CategoryID *int64 `json:"category_id"`
		OwnerID    int64  `json:"owner_id"`
	}

	// CategoryTotalDTO is one breakdown row as received from the server.
	CategoryTotalDTO struct {
		Category string `json:"category"`
		Total    any    `json:"total"`
	}

	// MonthSummaryDTO is a month report exactly as received from the server.
	MonthSummaryDTO struct {
		Income     any                `json:"income"`
		Expense    any                `json:"expense"`
		Balance    any                `json:"balance"`
		ByCategory []CategoryTotalDTO `json:"byCategory"`
	}
)

// NormalizeTransaction copies all fields and coerces the amount.
func NormalizeTransaction(dto TransactionDTO) Transaction {
	return Transaction{
		ID:         dto.ID,
		Amount:     CoerceAmount(dto.Amount),
		OccurredOn: dto.OccurredOn,
		Note:       dto.Note,
		CategoryID: dto.CategoryID,
		OwnerID:    dto.OwnerID,
	}
}

// NormalizeTransactions normalizes a whole list, preserving order.
// A nil input yields an empty, non-nil list: "no rows" is valid data and
// distinct from "never loaded", which the period store models separately.
func NormalizeTransactions(dtos []TransactionDTO) []Transaction {
	out := make([]Transaction, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, NormalizeTransaction(dto))
	}
	return out
}

// NormalizeMonthSummary coerces each numeric field independently.
// Balance is not recomputed from income and expense: if the server sends
// an inconsistent balance the client reproduces it verbatim. Breakdown
// order is server-determined and preserved.
func NormalizeMonthSummary(dto MonthSummaryDTO) MonthSummary {
	byCategory := make([]CategoryTotal, 0, len(dto.ByCategory))
	for _, row := range dto.ByCategory {
		byCategory = append(byCategory, CategoryTotal{
			Category: row.Category,
			Total:    CoerceAmount(row.Total),
		})
	}
	return MonthSummary{
		Income:     CoerceAmount(dto.Income),
		Expense:    CoerceAmount(dto.Expense),
		Balance:    CoerceAmount(dto.Balance),
		ByCategory: byCategory,
	}
}

// SortCategories returns a new slice ordered by name using locale-aware
// collation. The sort is stable so equal names keep their input order, and
// the input slice is never mutated: shared category lists are replaced
// wholesale, not patched in place.
func SortCategories(categories []Category) []Category {
	out := append([]Category(nil), categories...)
	c := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
