package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dru/internal/auth"
	"dru/internal/services"
	"dru/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	authManager := auth.NewManager("test-secret", time.Hour)
	txService := services.NewTransactionService(repo, nil)

	s := NewServer(":0", repo, authManager, txService, 10, time.Minute)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, ts
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func registerAndLogin(t *testing.T, baseURL, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, baseURL+"/auth/register", "", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, baseURL+"/auth/login", "", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, body %v", resp.StatusCode, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("login returned no access_token: %v", body)
	}
	if body["token_type"] != "bearer" {
		t.Fatalf("token_type = %v, want bearer", body["token_type"])
	}
	return token
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, ts := newTestServer(t)
	registerAndLogin(t, ts.URL, "dup@example.com")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{
		"email":    "dup@example.com",
		"password": "hunter2hunter2",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["detail"] != "email already registered" {
		t.Fatalf("detail = %v", body["detail"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, ts := newTestServer(t)
	registerAndLogin(t, ts.URL, "user@example.com")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if body["detail"] != "invalid credentials" {
		t.Fatalf("detail = %v", body["detail"])
	}
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/budgets/categories", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/budgets/categories", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", resp.StatusCode)
	}
}

func TestHabitsWelcomeIsPublic(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/habits/", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status without token = %d, want 200", resp.StatusCode)
	}
	if body["message"] == "" {
		t.Fatalf("expected a welcome message, got %v", body)
	}
}

func TestListTransactionsNoParamsReturnsAll(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "unfiltered@example.com")

	for _, date := range []string{"2023-01-15", "2024-06-15"} {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/budgets/transactions", token, map[string]any{
			"amount":      "-5.00",
			"occurred_on": date,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create transaction status = %d, body %v", resp.StatusCode, body)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/budgets/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()

	var list []any
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("no-params list returned %d rows, want all 2", len(list))
	}
}

func TestBudgetsFlow(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "flow@example.com")

	// Create categories
	resp, food := doJSON(t, http.MethodPost, ts.URL+"/budgets/categories", token, map[string]string{
		"name": "Food",
		"kind": "expense",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category status = %d, body %v", resp.StatusCode, food)
	}
	foodID := int64(food["id"].(float64))

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/budgets/categories", token, map[string]string{
		"name": "Salary",
		"kind": "income",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category status = %d", resp.StatusCode)
	}

	// Record transactions: amount accepted as string or number
	resp, tx := doJSON(t, http.MethodPost, ts.URL+"/budgets/transactions", token, map[string]any{
		"amount":      "-50.25",
		"occurred_on": "2024-06-15",
		"note":        "groceries",
		"category_id": foodID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create transaction status = %d, body %v", resp.StatusCode, tx)
	}
	if tx["amount"] != "-50.25" {
		t.Fatalf("transaction amount = %v, want string -50.25", tx["amount"])
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/budgets/transactions", token, map[string]any{
		"amount":      120.5,
		"occurred_on": "2024-06-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create numeric-amount transaction status = %d", resp.StatusCode)
	}

	// List for the period
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/budgets/transactions?year=2024&month=6", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list transactions status = %d", resp.StatusCode)
	}

	// Month report with string amounts, signed expense and Uncategorized bucket
	resp, report := doJSON(t, http.MethodGet, ts.URL+"/budgets/reports/month?year=2024&month=6", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("month report status = %d, body %v", resp.StatusCode, report)
	}
	if report["income"] != "120.50" {
		t.Errorf("income = %v, want 120.50", report["income"])
	}
	if report["expense"] != "-50.25" {
		t.Errorf("expense = %v, want -50.25", report["expense"])
	}
	if report["balance"] != "70.25" {
		t.Errorf("balance = %v, want 70.25", report["balance"])
	}

	rows, _ := report["byCategory"].([]any)
	labels := make(map[string]string, len(rows))
	for _, raw := range rows {
		row := raw.(map[string]any)
		labels[row["category"].(string)] = row["total"].(string)
	}
	if labels["Food"] != "-50.25" {
		t.Errorf("Food total = %q, want -50.25", labels["Food"])
	}
	if labels["Uncategorized"] != "120.50" {
		t.Errorf("Uncategorized total = %q, want 120.50", labels["Uncategorized"])
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "validate@example.com")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing amount", map[string]any{"occurred_on": "2024-06-01"}},
		{"zero amount", map[string]any{"amount": "0", "occurred_on": "2024-06-01"}},
		{"bad amount", map[string]any{"amount": "abc", "occurred_on": "2024-06-01"}},
		{"bad date", map[string]any{"amount": "10", "occurred_on": "June 1st"}},
		{"unknown category", map[string]any{"amount": "10", "occurred_on": "2024-06-01", "category_id": 999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/budgets/transactions", token, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %v)", resp.StatusCode, body)
			}
			if _, ok := body["detail"]; !ok {
				t.Fatalf("error body missing detail: %v", body)
			}
		})
	}
}

func TestReportCacheInvalidatedOnWrite(t *testing.T) {
	s, ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "cache@example.com")

	url := ts.URL + "/budgets/reports/month?year=2024&month=6"
	if resp, _ := doJSON(t, http.MethodGet, url, token, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("first report fetch failed")
	}
	if s.reportCache.Size() != 1 {
		t.Fatalf("cache size = %d, want 1", s.reportCache.Size())
	}

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/budgets/transactions", token, map[string]any{
		"amount":      "99.99",
		"occurred_on": "2024-06-10",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create transaction status = %d", resp.StatusCode)
	}
	if s.reportCache.Size() != 0 {
		t.Fatalf("cache size after write = %d, want 0", s.reportCache.Size())
	}

	resp, report := doJSON(t, http.MethodGet, url, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second report fetch failed")
	}
	if report["income"] != "99.99" {
		t.Errorf("income after write = %v, want 99.99", report["income"])
	}
}

func TestUsersAreIsolated(t *testing.T) {
	_, ts := newTestServer(t)
	alice := registerAndLogin(t, ts.URL, "alice@example.com")
	bob := registerAndLogin(t, ts.URL, "bob@example.com")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/budgets/transactions", alice, map[string]any{
		"amount":      "10.00",
		"occurred_on": "2024-06-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("alice create status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/budgets/transactions?year=2024&month=6", nil)
	req.Header.Set("Authorization", "Bearer "+bob)
	rawResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("bob list: %v", err)
	}
	defer rawResp.Body.Close()

	var list []any
	if err := json.NewDecoder(rawResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("bob sees %d of alice's transactions", len(list))
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
