package api

import (
	"context"

	"dru/internal/core"
)

// BudgetsService groups the category, transaction and report endpoints.
// Responses pass through the normalization layer before callers see them,
// so amounts are always definite numbers on this side of the wire.
type BudgetsService struct {
	client *Client
}

func NewBudgetsService(client *Client) *BudgetsService {
	return &BudgetsService{client: client}
}

// Categories returns the user's categories sorted by name.
func (s *BudgetsService) Categories(ctx context.Context) ([]core.Category, error) {
	var categories []core.Category
	if err := s.client.Get(ctx, "/budgets/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return core.SortCategories(categories), nil
}

// CreateCategory creates a category and returns the server's copy.
func (s *BudgetsService) CreateCategory(ctx context.Context, payload core.CategoryPayload) (core.Category, error) {
	var created core.Category
	if err := s.client.Post(ctx, "/budgets/categories", payload, &created); err != nil {
		return core.Category{}, err
	}
	return created, nil
}

// Transactions lists transactions, optionally restricted to one period.
func (s *BudgetsService) Transactions(ctx context.Context, filter *core.PeriodFilter) ([]core.Transaction, error) {
	var params Params
	if filter != nil {
		params = Params{"year": filter.Year, "month": filter.Month}
	}
	var dtos []core.TransactionDTO
	if err := s.client.Get(ctx, "/budgets/transactions", params, nil, &dtos); err != nil {
		return nil, err
	}
	return core.NormalizeTransactions(dtos), nil
}

// CreateTransaction records a transaction and returns the normalized copy.
func (s *BudgetsService) CreateTransaction(ctx context.Context, payload core.TransactionPayload) (core.Transaction, error) {
	var dto core.TransactionDTO
	if err := s.client.Post(ctx, "/budgets/transactions", payload, &dto); err != nil {
		return core.Transaction{}, err
	}
	return core.NormalizeTransaction(dto), nil
}

// MonthReport fetches the server-computed summary for one period.
func (s *BudgetsService) MonthReport(ctx context.Context, year, month int) (core.MonthSummary, error) {
	params := Params{"year": year, "month": month}
	var dto core.MonthSummaryDTO
	if err := s.client.Get(ctx, "/budgets/reports/month", params, nil, &dto); err != nil {
		return core.MonthSummary{}, err
	}
	return core.NormalizeMonthSummary(dto), nil
}
