// Package storage persists users, categories and transactions and
// computes the month aggregates the API serves.
package storage

import (
	"context"
	"errors"
	"time"

	"dru/internal/core"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
)

type (
	// User is an account row. PasswordHash is a bcrypt hash.
	User struct {
		ID           int64
		Email        string
		PasswordHash string
		FullName     string
	}

	// TransactionRecord is a stored transaction. Amounts are exact cents.
	TransactionRecord struct {
		ID         int64
		Amount     core.Money
		OccurredOn string
		Note       string
		CategoryID *int64
		OwnerID    int64
	}

	// CategoryTotal is one aggregated breakdown row.
	CategoryTotal struct {
		Label string
		Total core.Money
	}

	// MonthReport holds the aggregates for one user and period.
	// Expense is signed (negative); Balance = Income + Expense.
	MonthReport struct {
		Income     core.Money
		Expense    core.Money
		Balance    core.Money
		ByCategory []CategoryTotal
	}
)

// Repository is the persistence port the HTTP server depends on.
type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)

	CreateCategory(ctx context.Context, ownerID int64, name string, kind core.CategoryKind) (core.Category, error)
	ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error)

	CreateTransaction(ctx context.Context, record TransactionRecord) (TransactionRecord, error)
	ListTransactions(ctx context.Context, ownerID int64, year, month int) ([]TransactionRecord, error)

	MonthReport(ctx context.Context, ownerID int64, year, month int) (MonthReport, error)

	Close() error
}

// monthRange returns the first and last calendar day of a month in wire
// format, suitable for BETWEEN filters on occurred_on.
func monthRange(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(core.DateLayout), last.Format(core.DateLayout)
}
