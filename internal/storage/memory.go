package storage

import (
	"context"
	"sort"
	"sync"

	"dru/internal/core"
)

// MemoryRepository is an in-memory Repository used by tests and for
// running the server without a database file.
type MemoryRepository struct {
	mu           sync.Mutex
	users        []User
	categories   []core.Category
	transactions []TransactionRecord
	nextUser     int64
	nextCategory int64
	nextTx       int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextUser: 1, nextCategory: 1, nextTx: 1}
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) CreateUser(_ context.Context, email, passwordHash, fullName string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return User{}, ErrDuplicateEmail
		}
	}
	user := User{ID: r.nextUser, Email: email, PasswordHash: passwordHash, FullName: fullName}
	r.nextUser++
	r.users = append(r.users, user)
	return user, nil
}

func (r *MemoryRepository) UserByEmail(_ context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *MemoryRepository) CreateCategory(_ context.Context, ownerID int64, name string, kind core.CategoryKind) (core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category := core.Category{ID: r.nextCategory, Name: name, Kind: kind, OwnerID: ownerID}
	r.nextCategory++
	r.categories = append(r.categories, category)
	return category, nil
}

func (r *MemoryRepository) ListCategories(_ context.Context, ownerID int64) ([]core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Category, 0)
	for _, c := range r.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateTransaction(_ context.Context, record TransactionRecord) (TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.nextTx
	r.nextTx++
	r.transactions = append(r.transactions, record)
	return record, nil
}

func (r *MemoryRepository) ListTransactions(_ context.Context, ownerID int64, year, month int) ([]TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first, last string
	filtered := year != 0 && month != 0
	if filtered {
		first, last = monthRange(year, month)
	}
	out := make([]TransactionRecord, 0)
	for _, t := range r.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if filtered && (t.OccurredOn < first || t.OccurredOn > last) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OccurredOn != out[j].OccurredOn {
			return out[i].OccurredOn < out[j].OccurredOn
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) MonthReport(_ context.Context, ownerID int64, year, month int) (MonthReport, error) {
	records, err := r.ListTransactions(context.Background(), ownerID, year, month)
	if err != nil {
		return MonthReport{}, err
	}

	r.mu.Lock()
	labels := make(map[int64]string, len(r.categories))
	for _, c := range r.categories {
		labels[c.ID] = c.Name
	}
	r.mu.Unlock()

	var income, expense int64
	totals := make(map[string]int64)
	for _, t := range records {
		if t.Amount.Cents > 0 {
			income += t.Amount.Cents
		} else {
			expense += t.Amount.Cents
		}
		label := "Uncategorized"
		if t.CategoryID != nil {
			if name, ok := labels[*t.CategoryID]; ok {
				label = name
			}
		}
		totals[label] += t.Amount.Cents
	}

	byCategory := make([]CategoryTotal, 0, len(totals))
	for label, cents := range totals {
		byCategory = append(byCategory, CategoryTotal{Label: label, Total: core.Money{Cents: cents}})
	}
	sort.Slice(byCategory, func(i, j int) bool { return byCategory[i].Label < byCategory[j].Label })

	return MonthReport{
		Income:     core.Money{Cents: income},
		Expense:    core.Money{Cents: expense},
		Balance:    core.Money{Cents: income + expense},
		ByCategory: byCategory,
	}, nil
}
