package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/storage/memory"
)

func newTestRouter(t *testing.T, seed ...core.Expense) http.Handler {
	t.Helper()
	now := time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)
	svc := services.NewExpenseService(memory.NewWithExpenses(seed...),
		services.WithClock(func() time.Time { return now }))
	return NewRouter(svc, RouterConfig{CORSOrigins: []string{"http://localhost:8080"}})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func seedExpense(t *testing.T, title, amount, date string, cat core.Category) core.Expense {
	t.Helper()
	m, err := core.ParseAmount(amount)
	require.NoError(t, err)
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	return core.Expense{Title: title, Amount: m, Category: cat, Date: d}
}

func TestCreateExpense(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/expenses",
		`{"title":"Coffee","amount":4.5,"category":"food","date":"2024-01-15","description":""}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Expense added successfully", resp.Message)

	rec = do(t, h, http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []core.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Coffee", list[0].Title)
	assert.Equal(t, "$4.50", list[0].Amount.Format())
}

func TestCreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing amount", `{"title":"Coffee","category":"food","date":"2024-01-15"}`, msgMissingFields},
		{"missing date", `{"title":"Coffee","amount":1,"category":"food"}`, msgMissingFields},
		{"null title", `{"title":null,"amount":1,"category":"food","date":"2024-01-15"}`, msgMissingFields},
		{"malformed json", `{"title":`, msgInvalidBody},
		{"blank title", `{"title":"  ","amount":1,"category":"food","date":"2024-01-15"}`, core.ErrEmptyTitle.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(t), http.MethodPost, "/api/expenses", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestListExpenses_EmptyIsArray(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListExpenses_NewestFirst(t *testing.T) {
	h := newTestRouter(t,
		seedExpense(t, "Old", "1", "2024-01-01", core.CategoryFood),
		seedExpense(t, "New", "2", "2024-01-10", core.CategoryFood),
	)
	rec := do(t, h, http.MethodGet, "/api/expenses", "")
	var list []core.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "New", list[0].Title)
}

func TestUpdateExpense(t *testing.T) {
	h := newTestRouter(t, seedExpense(t, "Coffee", "4.50", "2024-01-15", core.CategoryFood))

	rec := do(t, h, http.MethodPut, "/api/expenses/1",
		`{"title":"Tea","amount":"3.00","category":"food","date":"2024-01-15"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/expenses", "")
	var list []core.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Tea", list[0].Title)

	rec = do(t, h, http.MethodPut, "/api/expenses/99",
		`{"title":"Tea","amount":3,"category":"food","date":"2024-01-15"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/expenses/abc",
		`{"title":"Tea","amount":3,"category":"food","date":"2024-01-15"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteExpense(t *testing.T) {
	h := newTestRouter(t, seedExpense(t, "Coffee", "4.50", "2024-01-15", core.CategoryFood))

	rec := do(t, h, http.MethodDelete, "/api/expenses/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Expense deleted successfully")

	rec = do(t, h, http.MethodDelete, "/api/expenses/1", "")
	assert.Equal(t, http.StatusOK, rec.Code, "deleting a missing expense succeeds")

	rec = do(t, h, http.MethodGet, "/api/expenses", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSummary(t *testing.T) {
	h := newTestRouter(t,
		seedExpense(t, "Coffee", "4.50", "2024-01-15", core.CategoryFood),
		seedExpense(t, "Bus", "2.25", "2024-01-03", core.CategoryTransport),
		seedExpense(t, "Gift", "30", "2023-12-24", core.CategoryShopping),
	)

	rec := do(t, h, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var s core.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "$36.75", s.Total.Format())
	assert.Equal(t, "$6.75", s.Monthly.Format())
	assert.Len(t, s.ByCategory, 3)
}

func TestSummary_Empty(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"monthly":0,"by_category":[]}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
		req.Header.Set("Origin", "http://localhost:8080")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		mw := CORSMiddleware([]string{"*"})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://anything.example")
		mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

type failingService struct {
	ExpenseService
}

func (failingService) ListExpenses(context.Context) ([]core.Expense, error) {
	return nil, errors.New("disk on fire")
}

func (failingService) Ping(context.Context) error { return errors.New("disk on fire") }

func TestStorageFailure(t *testing.T) {
	h := NewRouter(failingService{}, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/expenses", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHealthUnderAPIPrefix(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
