package handler

import (
	"errors"
	"net/http"
	"time"

	"gagyebu/internal/domain"
	"gagyebu/internal/format"
	"gagyebu/internal/ledger"
	"gagyebu/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles ledger-related HTTP requests
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// AddExpenseRequest represents the add expense request body
type AddExpenseRequest struct {
	Amount      string  `json:"amount"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
}

// ResetRequest represents the reset request body. Confirmation is a caller
// concern; the flag makes the consent explicit on the wire.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// ExpenseResponse represents an expense record in API responses
type ExpenseResponse struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	AmountDisplay string `json:"amountDisplay"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	DateDisplay   string `json:"dateDisplay"`
	CreatedAt     string `json:"createdAt"`
}

// LedgerResponse represents the full ledger snapshot in API responses
type LedgerResponse struct {
	Budget            string            `json:"budget"`
	BudgetDisplay     string            `json:"budgetDisplay"`
	TotalSpent        string            `json:"totalSpent"`
	TotalSpentDisplay string            `json:"totalSpentDisplay"`
	Remaining         string            `json:"remaining"`
	RemainingDisplay  string            `json:"remainingDisplay"`
	OverBudget        bool              `json:"overBudget"`
	Expenses          []ExpenseResponse `json:"expenses"`
}

// GetLedger returns the current snapshot with derived totals
func (h *LedgerHandler) GetLedger(c echo.Context) error {
	snap, loaded := h.ledgerService.Snapshot()
	if !loaded {
		return NewNotLoadedError(c)
	}
	return c.JSON(http.StatusOK, SnapshotResponse(snap))
}

// AddExpense admits and persists a new expense. On acceptance the write is
// acknowledged with 202: the record itself arrives through the next snapshot
// push, since the backing store assigns the identifier and ordering.
func (h *LedgerHandler) AddExpense(c echo.Context) error {
	var req AddExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = &parsed
	}

	input := service.AddExpenseInput{
		Amount: amount,
		Date:   date,
	}
	if req.Description != nil {
		input.Description = *req.Description
	}

	if err := h.ledgerService.AddExpense(c.Request().Context(), input); err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		if errors.Is(err, domain.ErrBudgetExceeded) {
			return NewBudgetExceededError(c, "Expense exceeds the remaining budget")
		}
		if errors.Is(err, domain.ErrNotLoaded) {
			return NewNotLoadedError(c)
		}
		log.Error().Err(err).Msg("Failed to add expense")
		return NewStoreError(c, "Could not save the expense")
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}

// DeleteExpense removes one expense by ID
func (h *LedgerHandler) DeleteExpense(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError(c, "Expense ID is required", nil)
	}

	if err := h.ledgerService.DeleteExpense(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Str("expense_id", id).Msg("Failed to delete expense")
		return NewStoreError(c, "Could not delete the expense")
	}

	return c.NoContent(http.StatusNoContent)
}

// Reset clears every expense after explicit confirmation
func (h *LedgerHandler) Reset(c echo.Context) error {
	var req ResetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if !req.Confirm {
		return NewValidationError(c, "Reset requires confirmation", []ValidationError{
			{Field: "confirm", Message: "Must be true"},
		})
	}

	if err := h.ledgerService.ResetAll(c.Request().Context()); err != nil {
		if errors.Is(err, domain.ErrNotLoaded) {
			return NewNotLoadedError(c)
		}

		var resetErr *domain.ResetError
		if errors.As(err, &resetErr) {
			// Partial clear: report exactly which records survived so the
			// caller can retry selectively.
			log.Warn().Strs("failed_ids", resetErr.FailedIDs).Msg("Reset incomplete")
			return c.JSON(http.StatusBadGateway, ProblemDetails{
				Type:     ErrorTypeStore,
				Title:    "Reset Incomplete",
				Status:   http.StatusBadGateway,
				Detail:   resetErr.Error(),
				Instance: c.Request().URL.Path,
			})
		}

		log.Error().Err(err).Msg("Failed to reset ledger")
		return NewStoreError(c, "Could not reset the ledger")
	}

	return c.NoContent(http.StatusNoContent)
}

// SnapshotResponse converts a ledger snapshot into its API representation.
// The WebSocket push path uses the same conversion so both surfaces agree.
func SnapshotResponse(snap ledger.Snapshot) LedgerResponse {
	expenses := make([]ExpenseResponse, 0, len(snap.Records))
	for _, e := range snap.Records {
		expenses = append(expenses, ExpenseResponse{
			ID:            e.ID,
			Amount:        e.Amount.String(),
			AmountDisplay: format.Amount(e.Amount),
			Description:   e.Description,
			Date:          format.ISODate(e.Date),
			DateDisplay:   format.ShortDate(e.Date),
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return LedgerResponse{
		Budget:            snap.Budget.String(),
		BudgetDisplay:     format.Amount(snap.Budget),
		TotalSpent:        snap.TotalSpent.String(),
		TotalSpentDisplay: format.Amount(snap.TotalSpent),
		Remaining:         snap.Remaining.String(),
		RemainingDisplay:  format.Amount(snap.Remaining),
		OverBudget:        snap.OverBudget,
		Expenses:          expenses,
	}
}
