package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gagyebu/internal/budget"
	"gagyebu/internal/domain"
	"gagyebu/internal/ledger"
	"gagyebu/internal/service"
	"gagyebu/internal/testutil"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newLedgerHandler() (*LedgerHandler, *testutil.MockExpenseRepository, *ledger.Store) {
	store := ledger.NewStore(budget.DefaultBudget)
	repo := testutil.NewMockExpenseRepository(store)
	svc := service.NewLedgerService(repo, store)
	return NewLedgerHandler(svc), repo, store
}

func TestGetLedger_Empty(t *testing.T) {
	e := echo.New()
	handler, _, _ := newLedgerHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetLedger(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response LedgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Budget != "500000" {
		t.Errorf("Expected budget '500000', got %s", response.Budget)
	}
	if response.Remaining != "500000" {
		t.Errorf("Expected remaining '500000', got %s", response.Remaining)
	}
	if response.BudgetDisplay != "₩500,000" {
		t.Errorf("Expected budget display '₩500,000', got %s", response.BudgetDisplay)
	}
	if len(response.Expenses) != 0 {
		t.Errorf("Expected no expenses, got %d", len(response.Expenses))
	}
	if response.OverBudget {
		t.Error("Expected overBudget to be false")
	}
}

func TestGetLedger_NotLoaded(t *testing.T) {
	e := echo.New()
	store := ledger.NewStore(budget.DefaultBudget)
	repo := &testutil.MockExpenseRepository{Store: store}
	svc := service.NewLedgerService(repo, store)
	handler := NewLedgerHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetLedger(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
}

func TestGetLedger_WithExpenses(t *testing.T) {
	e := echo.New()
	handler, repo, _ := newLedgerHandler()

	repo.AddExpense(&domain.Expense{
		ID:          "mock-1",
		Amount:      decimal.NewFromInt(12500),
		Description: "점심",
		Date:        time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Now(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetLedger(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response LedgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.TotalSpent != "12500" {
		t.Errorf("Expected total spent '12500', got %s", response.TotalSpent)
	}
	if response.Remaining != "487500" {
		t.Errorf("Expected remaining '487500', got %s", response.Remaining)
	}
	if len(response.Expenses) != 1 {
		t.Fatalf("Expected 1 expense, got %d", len(response.Expenses))
	}
	if response.Expenses[0].AmountDisplay != "₩12,500" {
		t.Errorf("Expected amount display '₩12,500', got %s", response.Expenses[0].AmountDisplay)
	}
	if response.Expenses[0].DateDisplay != "3/5" {
		t.Errorf("Expected date display '3/5', got %s", response.Expenses[0].DateDisplay)
	}
}

func TestAddExpense_Success(t *testing.T) {
	e := echo.New()
	handler, repo, store := newLedgerHandler()

	reqBody := `{"amount": "35000", "description": "장보기", "date": "2026-03-10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.AddExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", rec.Code)
	}

	snap, _ := store.Snapshot()
	if len(snap.Records) != 1 {
		t.Fatalf("Expected 1 record in store, got %d", len(snap.Records))
	}
	if snap.Records[0].Description != "장보기" {
		t.Errorf("Expected description '장보기', got %s", snap.Records[0].Description)
	}
	if len(repo.IDs()) != 1 {
		t.Errorf("Expected 1 record in repository, got %d", len(repo.IDs()))
	}
}

func TestAddExpense_DefaultDescription(t *testing.T) {
	e := echo.New()
	handler, _, store := newLedgerHandler()

	reqBody := `{"amount": "5000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.AddExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", rec.Code)
	}

	snap, _ := store.Snapshot()
	if len(snap.Records) != 1 {
		t.Fatalf("Expected 1 record in store, got %d", len(snap.Records))
	}
	if snap.Records[0].Description != domain.DefaultDescription {
		t.Errorf("Expected default description, got %s", snap.Records[0].Description)
	}
}

func TestAddExpense_InvalidAmount(t *testing.T) {
	e := echo.New()
	handler, _, _ := newLedgerHandler()

	for _, body := range []string{
		`{"amount": "abc"}`,
		`{"amount": "0"}`,
		`{"amount": "-100"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler.AddExpense(c); err != nil {
			t.Fatalf("Expected no error for %s, got %v", body, err)
		}

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", body, rec.Code)
		}
	}
}

func TestAddExpense_InvalidDate(t *testing.T) {
	e := echo.New()
	handler, _, _ := newLedgerHandler()

	reqBody := `{"amount": "1000", "date": "03/10/2026"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.AddExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestAddExpense_BudgetExceeded(t *testing.T) {
	e := echo.New()
	handler, repo, _ := newLedgerHandler()

	repo.AddExpense(&domain.Expense{
		ID:     "mock-1",
		Amount: decimal.NewFromInt(490000),
		Date:   time.Now(),
	})

	reqBody := `{"amount": "10001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.AddExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Type != ErrorTypeBudgetExceeded {
		t.Errorf("Expected type %s, got %s", ErrorTypeBudgetExceeded, problem.Type)
	}
}

func TestAddExpense_BoundaryAccepted(t *testing.T) {
	e := echo.New()
	handler, repo, _ := newLedgerHandler()

	repo.AddExpense(&domain.Expense{
		ID:     "mock-1",
		Amount: decimal.NewFromInt(490000),
		Date:   time.Now(),
	})

	// Exactly the remaining amount is admissible
	reqBody := `{"amount": "10000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.AddExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", rec.Code)
	}
}

func TestAddExpense_StoreFailure(t *testing.T) {
	e := echo.New()
	handler, repo, _ := newLedgerHandler()

	repo.AddFn = func(ctx context.Context, expense *domain.Expense) error {
		return errors.New("connection refused")
	}

	reqBody := `{"amount": "1000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.AddExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rec.Code)
	}
}

func TestDeleteExpense_Success(t *testing.T) {
	e := echo.New()
	handler, repo, store := newLedgerHandler()

	repo.AddExpense(&domain.Expense{
		ID:     "mock-1",
		Amount: decimal.NewFromInt(3000),
		Date:   time.Now(),
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/expenses/mock-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("mock-1")

	if err := handler.DeleteExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	snap, _ := store.Snapshot()
	if len(snap.Records) != 0 {
		t.Errorf("Expected empty store, got %d records", len(snap.Records))
	}
}

func TestDeleteExpense_NotFound(t *testing.T) {
	e := echo.New()
	handler, _, _ := newLedgerHandler()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/expenses/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := handler.DeleteExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestReset_RequiresConfirmation(t *testing.T) {
	e := echo.New()
	handler, _, _ := newLedgerHandler()

	for _, body := range []string{`{}`, `{"confirm": false}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/reset", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler.Reset(c); err != nil {
			t.Fatalf("Expected no error for %s, got %v", body, err)
		}

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", body, rec.Code)
		}
	}
}

func TestReset_Success(t *testing.T) {
	e := echo.New()
	handler, repo, store := newLedgerHandler()

	for i := 0; i < 3; i++ {
		repo.AddExpense(&domain.Expense{
			Amount: decimal.NewFromInt(1000),
			Date:   time.Now(),
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/reset", strings.NewReader(`{"confirm": true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Reset(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	snap, _ := store.Snapshot()
	if len(snap.Records) != 0 {
		t.Errorf("Expected empty store, got %d records", len(snap.Records))
	}
}

func TestReset_PartialFailure(t *testing.T) {
	e := echo.New()
	handler, repo, store := newLedgerHandler()

	for i := 0; i < 3; i++ {
		repo.AddExpense(&domain.Expense{
			Amount: decimal.NewFromInt(1000),
			Date:   time.Now(),
		})
	}
	stuck := repo.IDs()[1]

	repo.RemoveFn = func(ctx context.Context, id string) error {
		if id == stuck {
			return errors.New("connection reset")
		}
		return nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/reset", strings.NewReader(`{"confirm": true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Reset(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Title != "Reset Incomplete" {
		t.Errorf("Expected title 'Reset Incomplete', got %s", problem.Title)
	}
	if !strings.Contains(problem.Detail, stuck) {
		t.Errorf("Expected detail to name %s, got %s", stuck, problem.Detail)
	}

	snap, _ := store.Snapshot()
	if len(snap.Records) != 1 {
		t.Errorf("Expected 1 surviving record, got %d", len(snap.Records))
	}
}
