package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dru/internal/core"
	"dru/internal/storage"
)

// Amounts go over the wire as decimal strings so no precision is lost
// between storage cents and the client.
type transactionResponse struct {
	ID         int64  `json:"id"`
	Amount     string `json:"amount"`
	OccurredOn string `json:"occurred_on"`
	Note       string `json:"note"`
	CategoryID *int64 `json:"category_id"`
	OwnerID    int64  `json:"owner_id"`
}

type categoryTotalResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

type monthReportResponse struct {
	Income     string                  `json:"income"`
	Expense    string                  `json:"expense"`
	Balance    string                  `json:"balance"`
	ByCategory []categoryTotalResponse `json:"byCategory"`
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type createTransactionRequest struct {
	Amount     any    `json:"amount"`
	OccurredOn string `json:"occurred_on"`
	Note       string `json:"note"`
	CategoryID *int64 `json:"category_id"`
}

func toTransactionResponse(record storage.TransactionRecord) transactionResponse {
	return transactionResponse{
		ID:         record.ID,
		Amount:     record.Amount.String(),
		OccurredOn: record.OccurredOn,
		Note:       record.Note,
		CategoryID: record.CategoryID,
		OwnerID:    record.OwnerID,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	categories, err := s.repo.ListCategories(r.Context(), claims.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = sanitizeInput(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "category name is required")
		return
	}
	kind := core.CategoryKind(req.Kind)
	if !kind.IsValid() {
		writeError(w, http.StatusBadRequest, "kind must be income or expense")
		return
	}

	category, err := s.repo.CreateCategory(r.Context(), claims.UserID, req.Name, kind)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	year, month := parseYearMonth(r)

	records, err := s.repo.ListTransactions(r.Context(), claims.UserID, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	out := make([]transactionResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toTransactionResponse(record))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := parseWireAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if amount.Cents == 0 {
		writeError(w, http.StatusBadRequest, "amount must not be zero")
		return
	}
	if _, err := time.Parse(core.DateLayout, req.OccurredOn); err != nil {
		writeError(w, http.StatusBadRequest, "occurred_on must be YYYY-MM-DD")
		return
	}
	if req.CategoryID != nil && !s.ownsCategory(r, claims.UserID, *req.CategoryID) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	saved, err := s.transactions.CreateTransaction(r.Context(), storage.TransactionRecord{
		OwnerID:    claims.UserID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		OccurredOn: req.OccurredOn,
		Note:       sanitizeInput(req.Note),
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	// Stored reports for this user are stale now
	s.reportCache.DeletePrefix(reportKeyPrefix(claims.UserID))

	writeJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	// Unlike the transaction list, a report is always for one month;
	// missing params mean the current one.
	year, month := parseYearMonth(r)
	if year == 0 || month == 0 {
		period := core.CurrentPeriod(time.Now())
		year, month = period.Year, period.Month
	}
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	key := reportKey(claims.UserID, year, month)
	report, hit := s.reportCache.Get(key)
	if !hit {
		var err error
		report, err = s.repo.MonthReport(r.Context(), claims.UserID, year, month)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to build month report", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build report")
			return
		}
		s.reportCache.Set(key, report)
	}

	out := monthReportResponse{
		Income:     report.Income.String(),
		Expense:    report.Expense.String(),
		Balance:    report.Balance.String(),
		ByCategory: make([]categoryTotalResponse, 0, len(report.ByCategory)),
	}
	for _, row := range report.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryTotalResponse{
			Category: row.Label,
			Total:    row.Total.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ownsCategory reports whether the category exists and belongs to the user.
func (s *Server) ownsCategory(r *http.Request, userID, categoryID int64) bool {
	categories, err := s.repo.ListCategories(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to check category ownership", "error", err)
		return false
	}
	for _, c := range categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}

// parseWireAmount accepts the amount as either a JSON number or a
// decimal string.
func parseWireAmount(v any) (core.Money, error) {
	switch value := v.(type) {
	case string:
		money, err := core.ParseMoney(value)
		if err != nil {
			return core.Money{}, fmt.Errorf("invalid amount %q", value)
		}
		return money, nil
	case float64:
		money, err := core.ParseMoney(fmt.Sprintf("%.2f", value))
		if err != nil {
			return core.Money{}, fmt.Errorf("invalid amount %v", value)
		}
		return money, nil
	default:
		return core.Money{}, fmt.Errorf("amount is required")
	}
}

func reportKey(userID int64, year, month int) string {
	return fmt.Sprintf("%sreport:%d-%d", reportKeyPrefix(userID), year, month)
}

func reportKeyPrefix(userID int64) string {
	return fmt.Sprintf("user:%d:", userID)
}
