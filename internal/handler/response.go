package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation     = "https://gagyebu.app/errors/validation"
	ErrorTypeBudgetExceeded = "https://gagyebu.app/errors/budget-exceeded"
	ErrorTypeNotFound       = "https://gagyebu.app/errors/not-found"
	ErrorTypeNotLoaded      = "https://gagyebu.app/errors/not-loaded"
	ErrorTypeStore          = "https://gagyebu.app/errors/store"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewBudgetExceededError creates a budget exceeded rejection response
func NewBudgetExceededError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnprocessableEntity, ProblemDetails{
		Type:     ErrorTypeBudgetExceeded,
		Title:    "Budget Exceeded",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewNotLoadedError signals that the first snapshot has not arrived yet; this
// is a transient state, not a failure, so callers should simply retry.
func NewNotLoadedError(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeNotLoaded,
		Title:    "Ledger Loading",
		Status:   http.StatusServiceUnavailable,
		Detail:   "The ledger has not finished loading; retry shortly",
		Instance: c.Request().URL.Path,
	})
}

// NewStoreError creates a persistence failure response. The session stays
// usable; the failure is a notice, never a crash.
func NewStoreError(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadGateway, ProblemDetails{
		Type:     ErrorTypeStore,
		Title:    "Store Error",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}
