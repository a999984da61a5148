package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dru/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Repository on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, email, passwordHash, fullName string) (User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, full_name) VALUES (?, ?, ?)`,
		email, passwordHash, fullName)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "email", email)
	return User{ID: id, Email: email, PasswordHash: passwordHash, FullName: fullName}, nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, full_name FROM users WHERE email = ?`,
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName)
	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, ownerID int64, name string, kind core.CategoryKind) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (owner_id, name, kind) VALUES (?, ?, ?)`,
		ownerID, name, string(kind))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return core.Category{ID: id, Name: name, Kind: kind, OwnerID: ownerID}, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, kind, owner_id FROM categories WHERE owner_id = ? ORDER BY id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		var kind string
		if err := rows.Scan(&c.ID, &c.Name, &kind, &c.OwnerID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.CategoryKind(kind)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, record TransactionRecord) (TransactionRecord, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (owner_id, category_id, amount_cents, occurred_on, note)
		 VALUES (?, ?, ?, ?, ?)`,
		record.OwnerID, record.CategoryID, record.Amount.Cents, record.OccurredOn, record.Note)
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("transaction id: %w", err)
	}
	record.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"owner_id", record.OwnerID,
		"amount", record.Amount.String(),
		"occurred_on", record.OccurredOn)
	return record, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID int64, year, month int) ([]TransactionRecord, error) {
	query := `SELECT id, owner_id, category_id, amount_cents, occurred_on, note
		FROM transactions WHERE owner_id = ?`
	args := []any{ownerID}
	if year != 0 && month != 0 {
		first, last := monthRange(year, month)
		query += ` AND occurred_on BETWEEN ? AND ?`
		args = append(args, first, last)
	}
	query += ` ORDER BY occurred_on, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	records := make([]TransactionRecord, 0)
	for rows.Next() {
		var rec TransactionRecord
		var categoryID sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &categoryID, &rec.Amount.Cents, &rec.OccurredOn, &rec.Note); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if categoryID.Valid {
			id := categoryID.Int64
			rec.CategoryID = &id
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteRepository) MonthReport(ctx context.Context, ownerID int64, year, month int) (MonthReport, error) {
	first, last := monthRange(year, month)

	var income, expense int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN amount_cents > 0 THEN amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN amount_cents < 0 THEN amount_cents ELSE 0 END), 0)
		 FROM transactions
		 WHERE owner_id = ? AND occurred_on BETWEEN ? AND ?`,
		ownerID, first, last).Scan(&income, &expense)
	if err != nil {
		return MonthReport{}, fmt.Errorf("month totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(c.name, 'Uncategorized'), SUM(t.amount_cents)
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.owner_id = ? AND t.occurred_on BETWEEN ? AND ?
		 GROUP BY COALESCE(c.name, 'Uncategorized')
		 ORDER BY COALESCE(c.name, 'Uncategorized')`,
		ownerID, first, last)
	if err != nil {
		return MonthReport{}, fmt.Errorf("month breakdown: %w", err)
	}
	defer rows.Close()

	byCategory := make([]CategoryTotal, 0)
	for rows.Next() {
		var row CategoryTotal
		if err := rows.Scan(&row.Label, &row.Total.Cents); err != nil {
			return MonthReport{}, fmt.Errorf("scan breakdown row: %w", err)
		}
		byCategory = append(byCategory, row)
	}
	if err := rows.Err(); err != nil {
		return MonthReport{}, err
	}

	return MonthReport{
		Income:     core.Money{Cents: income},
		Expense:    core.Money{Cents: expense},
		Balance:    core.Money{Cents: income + expense},
		ByCategory: byCategory,
	}, nil
}
