package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dru/internal/core"
)

// Both implementations must behave identically; every test runs against
// the in-memory repository and the real SQLite one.
func withRepositories(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryRepository())
	})

	t.Run("sqlite", func(t *testing.T) {
		repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("NewSQLiteRepository: %v", err)
		}
		t.Cleanup(func() { repo.Close() })
		fn(t, repo)
	})
}

func TestUserLifecycle(t *testing.T) {
	withRepositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		user, err := repo.CreateUser(ctx, "a@example.com", "hash", "Ada")
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if user.ID == 0 {
			t.Fatal("expected user id to be assigned")
		}

		if _, err := repo.CreateUser(ctx, "a@example.com", "hash2", ""); !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("duplicate email error = %v, want ErrDuplicateEmail", err)
		}

		found, err := repo.UserByEmail(ctx, "a@example.com")
		if err != nil {
			t.Fatalf("UserByEmail: %v", err)
		}
		if found.ID != user.ID || found.PasswordHash != "hash" {
			t.Fatalf("UserByEmail = %+v, want id %d", found, user.ID)
		}

		if _, err := repo.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("missing user error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestCategoriesScopedByOwner(t *testing.T) {
	withRepositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		if _, err := repo.CreateCategory(ctx, 1, "Food", core.Expense); err != nil {
			t.Fatalf("CreateCategory: %v", err)
		}
		if _, err := repo.CreateCategory(ctx, 2, "Rent", core.Expense); err != nil {
			t.Fatalf("CreateCategory: %v", err)
		}

		mine, err := repo.ListCategories(ctx, 1)
		if err != nil {
			t.Fatalf("ListCategories: %v", err)
		}
		if len(mine) != 1 || mine[0].Name != "Food" {
			t.Fatalf("owner 1 categories = %+v, want just Food", mine)
		}
	})
}

func TestTransactionsPeriodFilter(t *testing.T) {
	withRepositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		dates := []string{"2024-05-31", "2024-06-01", "2024-06-30", "2024-07-01"}
		for _, d := range dates {
			if _, err := repo.CreateTransaction(ctx, TransactionRecord{
				OwnerID:    1,
				Amount:     core.Money{Cents: -100},
				OccurredOn: d,
			}); err != nil {
				t.Fatalf("CreateTransaction(%s): %v", d, err)
			}
		}

		june, err := repo.ListTransactions(ctx, 1, 2024, 6)
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(june) != 2 {
			t.Fatalf("june has %d transactions, want 2", len(june))
		}
		if june[0].OccurredOn != "2024-06-01" || june[1].OccurredOn != "2024-06-30" {
			t.Fatalf("june order = %s, %s", june[0].OccurredOn, june[1].OccurredOn)
		}

		all, err := repo.ListTransactions(ctx, 1, 0, 0)
		if err != nil {
			t.Fatalf("ListTransactions all: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("all has %d transactions, want 4", len(all))
		}
	})
}

func TestMonthReportTotals(t *testing.T) {
	withRepositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		food, err := repo.CreateCategory(ctx, 1, "Food", core.Expense)
		if err != nil {
			t.Fatalf("CreateCategory: %v", err)
		}

		seed := []TransactionRecord{
			{OwnerID: 1, Amount: core.Money{Cents: 12050}, OccurredOn: "2024-06-01"},
			{OwnerID: 1, CategoryID: &food.ID, Amount: core.Money{Cents: -5025}, OccurredOn: "2024-06-15"},
			{OwnerID: 1, CategoryID: &food.ID, Amount: core.Money{Cents: -1000}, OccurredOn: "2024-06-20"},
			// Outside the period, must not count
			{OwnerID: 1, Amount: core.Money{Cents: -99999}, OccurredOn: "2024-07-01"},
			// Different owner, must not count
			{OwnerID: 2, Amount: core.Money{Cents: 500}, OccurredOn: "2024-06-10"},
		}
		for _, record := range seed {
			if _, err := repo.CreateTransaction(ctx, record); err != nil {
				t.Fatalf("CreateTransaction: %v", err)
			}
		}

		report, err := repo.MonthReport(ctx, 1, 2024, 6)
		if err != nil {
			t.Fatalf("MonthReport: %v", err)
		}

		if report.Income.Cents != 12050 {
			t.Errorf("income = %d cents, want 12050", report.Income.Cents)
		}
		if report.Expense.Cents != -6025 {
			t.Errorf("expense = %d cents, want -6025", report.Expense.Cents)
		}
		if report.Balance.Cents != 6025 {
			t.Errorf("balance = %d cents, want 6025", report.Balance.Cents)
		}

		if len(report.ByCategory) != 2 {
			t.Fatalf("byCategory rows = %d, want 2", len(report.ByCategory))
		}
		// Alphabetical: Food before Uncategorized
		if report.ByCategory[0].Label != "Food" || report.ByCategory[0].Total.Cents != -6025 {
			t.Errorf("row 0 = %+v, want Food -6025", report.ByCategory[0])
		}
		if report.ByCategory[1].Label != "Uncategorized" || report.ByCategory[1].Total.Cents != 12050 {
			t.Errorf("row 1 = %+v, want Uncategorized 12050", report.ByCategory[1])
		}
	})
}
